package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintSchedule outputs a daily schedule, dispatching based on the output format configured.
func PrintSchedule(s schema.DailySchedule, cfg *contract.Config) error {
	if handled, err := writeStructured(cfg, s); handled {
		return err
	}
	if cfg.Output == schema.CSVOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScheduleCSV(w, s)
		}, "Wrote CSV")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeScheduleTable(w, s)
	}, "Wrote table")
}

func writeScheduleCSV(w io.Writer, s schema.DailySchedule) error {
	return writeCSVWithHeader(w, []string{"date", "index", "slot", "minute", "total_runs", "interval_minutes"}, func(cw *csv.Writer) error {
		for i, slot := range s.RunSlots {
			row := []string{
				s.Date,
				strconv.Itoa(i + 1),
				schema.FormatOffset(slot),
				strconv.Itoa(slot),
				strconv.Itoa(s.TotalRuns),
				strconv.Itoa(s.IntervalMinutes),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func writeScheduleTable(w io.Writer, s schema.DailySchedule) error {
	if _, err := fmt.Fprintf(w, "📅 Schedule for %s: %d slots of %d drawn runs (interval %d min)\n",
		s.Date, len(s.RunSlots), s.TotalRuns, s.IntervalMinutes); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Slot (UTC)", "Minute"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(s.RunSlots))
	for i, slot := range s.RunSlots {
		data = append(data, []string{strconv.Itoa(i + 1), schema.FormatOffset(slot), strconv.Itoa(slot)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// PrintDecision outputs a gate decision, dispatching based on the output format configured.
func PrintDecision(d schema.ScheduleDecision, cfg *contract.Config) error {
	if handled, err := writeStructured(cfg, d); handled {
		return err
	}
	if cfg.Output == schema.CSVOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"date", "offset", "tolerance", "should_run", "matched_slot", "next_slot", "created"}, func(cw *csv.Writer) error {
				return cw.Write([]string{
					d.Schedule.Date,
					schema.FormatOffset(d.Offset),
					strconv.Itoa(d.Tolerance),
					strconv.FormatBool(d.ShouldRun),
					optSlot(d.MatchedSlot),
					optSlot(d.NextSlot),
					strconv.FormatBool(d.Created),
				})
			})
		}, "Wrote CSV")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeDecisionText(w, d)
	}, "Wrote text")
}

func writeDecisionText(w io.Writer, d schema.ScheduleDecision) error {
	var b strings.Builder
	if d.Created {
		fmt.Fprintf(&b, "📅 Generated new schedule for %s\n", d.Schedule.Date)
	}
	fmt.Fprintf(&b, "⏰ Current time: %s UTC\n", schema.FormatOffset(d.Offset))
	fmt.Fprintf(&b, "📋 Today's schedule: %s\n", strings.Join(schema.FormatSlots(d.Schedule.RunSlots), ", "))
	if d.ShouldRun {
		fmt.Fprintf(&b, "🤔 Should run now: yes (slot %s, ±%d min)\n", optSlot(d.MatchedSlot), d.Tolerance)
	} else {
		fmt.Fprintf(&b, "🤔 Should run now: no (±%d min)\n", d.Tolerance)
	}
	if d.NextSlot != nil {
		fmt.Fprintf(&b, "⏭️  Next slot: %s UTC\n", optSlot(d.NextSlot))
	} else {
		b.WriteString("⏭️  Next slot: none left today\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
