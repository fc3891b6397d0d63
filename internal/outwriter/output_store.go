package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
	"github.com/olekukonko/tablewriter"
)

// PrintScheduleStatus outputs schedule store status information.
func PrintScheduleStatus(s schema.ScheduleStoreStatus, cfg *contract.Config) error {
	if handled, err := writeStructured(cfg, s); handled {
		return err
	}
	if cfg.Output == schema.CSVOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"backend", "location", "connected", "total_entries", "oldest_key", "newest_key", "size_bytes"}, func(cw *csv.Writer) error {
				return cw.Write([]string{
					s.Backend, s.Location, strconv.FormatBool(s.Connected), strconv.Itoa(s.TotalEntries),
					s.OldestKey, s.NewestKey, strconv.FormatInt(s.SizeBytes, 10),
				})
			})
		}, "Wrote CSV")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeScheduleStatusText(w, s)
	}, "Wrote text")
}

func writeScheduleStatusText(w io.Writer, s schema.ScheduleStoreStatus) error {
	if _, err := fmt.Fprintf(w, "Schedule Backend: %s\nLocation: %s\nConnected: %t\n", s.Backend, s.Location, s.Connected); err != nil {
		return err
	}
	if !s.Connected {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Total Entries: %d\n", s.TotalEntries); err != nil {
		return err
	}
	if s.TotalEntries > 0 {
		if _, err := fmt.Fprintf(w, "Oldest Entry: %s\nNewest Entry: %s\n", s.OldestKey, s.NewestKey); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Size: %d bytes\n", s.SizeBytes)
	return err
}

// PrintHistoryStatus outputs history store status information.
func PrintHistoryStatus(s schema.HistoryStatus, cfg *contract.Config) error {
	if handled, err := writeStructured(cfg, s); handled {
		return err
	}
	if cfg.Output == schema.CSVOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"outcome", "runs"}, func(cw *csv.Writer) error {
				for _, k := range slices.Sorted(maps.Keys(s.OutcomeCounts)) {
					if err := cw.Write([]string{k, strconv.Itoa(s.OutcomeCounts[k])}); err != nil {
						return fmt.Errorf("failed to write CSV record: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeHistoryStatusText(w, s)
	}, "Wrote text")
}

func writeHistoryStatusText(w io.Writer, s schema.HistoryStatus) error {
	if _, err := fmt.Fprintf(w, "History Backend: %s\nConnected: %t\n", s.Backend, s.Connected); err != nil {
		return err
	}
	if !s.Connected {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Total Runs: %d\n", s.TotalRuns); err != nil {
		return err
	}
	if s.TotalRuns == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Last Run ID: %s\nLast Run: %s\nOldest Run: %s\nOutcomes:\n",
		s.LastRunID, formatTime(s.LastRunTime), formatTime(s.OldestRunTime)); err != nil {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(s.OutcomeCounts)) {
		if _, err := fmt.Fprintf(w, "  %s: %d\n", k, s.OutcomeCounts[k]); err != nil {
			return err
		}
	}
	return nil
}

// PrintHistory outputs recorded runs, most recent first.
func PrintHistory(runs []schema.RunRecord, cfg *contract.Config) error {
	if handled, err := writeStructured(cfg, runs); handled {
		return err
	}
	if cfg.Output == schema.CSVOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryCSV(w, runs)
		}, "Wrote CSV")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeHistoryTable(w, runs, getMaxTableTextWidth(cfg))
	}, "Wrote table")
}

func writeHistoryCSV(w io.Writer, runs []schema.RunRecord) error {
	header := []string{"run_id", "started_at", "finished_at", "duration_ms", "schedule_date", "outcome", "slot_matched", "total", "streak", "blog_title", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range runs {
			finished, duration := "", ""
			if r.FinishedAt != nil {
				finished = r.FinishedAt.UTC().Format(time.RFC3339)
			}
			if r.DurationMs != nil {
				duration = strconv.FormatInt(*r.DurationMs, 10)
			}
			row := []string{
				r.RunID,
				r.StartedAt.UTC().Format(time.RFC3339),
				finished,
				duration,
				r.ScheduleDate,
				optString(r.Outcome),
				optInt32(r.SlotMatched),
				optInt32(r.Total),
				optInt32(r.Streak),
				optString(r.BlogTitle),
				optString(r.ErrorMessage),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func writeHistoryTable(w io.Writer, runs []schema.RunRecord, textWidth int) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Started", "Outcome", "Date", "Slot", "Total", "Streak", "Duration", "Note"})

	data := make([][]string, 0, len(runs))
	for _, r := range runs {
		outcome := "Running"
		if r.Outcome != nil {
			outcome = contract.GetColorLabel(schema.RunOutcome(*r.Outcome))
		}
		slot := "-"
		if r.SlotMatched != nil {
			slot = schema.FormatOffset(int(*r.SlotMatched))
		}
		duration := ""
		if r.DurationMs != nil {
			duration = (time.Duration(*r.DurationMs) * time.Millisecond).String()
		}
		note := optString(r.ErrorMessage)
		if note == "" {
			note = optString(r.BlogTitle)
		}
		data = append(data, []string{
			formatTime(r.StartedAt),
			outcome,
			r.ScheduleDate,
			slot,
			optInt32(r.Total),
			optInt32(r.Streak),
			duration,
			contract.TruncateText(note, textWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d runs\n", len(runs))
	return err
}
