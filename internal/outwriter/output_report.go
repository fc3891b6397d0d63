package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// recentDays is how many calendar days the streak table shows.
const recentDays = 14

// PrintStreak outputs a streak report, dispatching based on the output format configured.
func PrintStreak(r schema.StreakReport, cfg *contract.Config) error {
	if handled, err := writeStructured(cfg, r); handled {
		return err
	}
	if cfg.Output == schema.CSVOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"date", "count"}, func(cw *csv.Writer) error {
				for _, d := range r.Days {
					if err := cw.Write([]string{d.Date, strconv.Itoa(d.Count)}); err != nil {
						return fmt.Errorf("failed to write CSV record: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeStreakTable(w, r)
	}, "Wrote table")
}

func writeStreakTable(w io.Writer, r schema.StreakReport) error {
	if _, err := fmt.Fprintf(w, "🔥 Streak: %d days (as of %s)\n🧮 %d contributions over %d active days\n",
		r.Streak, r.Today, r.Total, r.DaysActive); err != nil {
		return err
	}
	if len(r.Days) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Count"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	days := r.Days[max(0, len(r.Days)-recentDays):]
	data := make([][]string, 0, len(days))
	for i := len(days) - 1; i >= 0; i-- {
		data = append(data, []string{days[i].Date, strconv.Itoa(days[i].Count)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// PrintUpdate outputs the result of one update run.
func PrintUpdate(r schema.UpdateResult, cfg *contract.Config) error {
	if handled, err := writeStructured(cfg, r); handled {
		return err
	}
	if cfg.Output == schema.CSVOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"run_id", "outcome", "date", "offset", "matched_slot", "total", "streak"}, func(cw *csv.Writer) error {
				total, streak := "", ""
				if r.Snapshot != nil {
					total = strconv.Itoa(r.Snapshot.Total)
					streak = strconv.Itoa(r.Snapshot.Streak)
				}
				return cw.Write([]string{
					r.RunID,
					string(r.Outcome),
					r.Decision.Schedule.Date,
					schema.FormatOffset(r.Decision.Offset),
					optSlot(r.Decision.MatchedSlot),
					total,
					streak,
				})
			})
		}, "Wrote CSV")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeUpdateText(w, r)
	}, "Wrote text")
}

func writeUpdateText(w io.Writer, r schema.UpdateResult) error {
	if err := writeDecisionText(w, r.Decision); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Outcome: %s\n", contract.GetColorLabel(r.Outcome)); err != nil {
		return err
	}
	if r.Block != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", r.Block); err != nil {
			return err
		}
	}
	if r.Snapshot != nil && r.Snapshot.BlogEnabled {
		if _, err := fmt.Fprintf(w, "\n📝 Latest blog post: %s -> %s\n", r.Snapshot.Blog.Title, r.Snapshot.Blog.URL); err != nil {
			return err
		}
	}
	return nil
}
