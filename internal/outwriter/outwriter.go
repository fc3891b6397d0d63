// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSchedule prints a daily schedule using the configured output format.
func (ow *OutWriter) WriteSchedule(s schema.DailySchedule, cfg *contract.Config) error {
	return PrintSchedule(s, cfg)
}

// WriteDecision prints a gate decision using the configured output format.
func (ow *OutWriter) WriteDecision(d schema.ScheduleDecision, cfg *contract.Config) error {
	return PrintDecision(d, cfg)
}

// WriteStreak prints a streak report using the configured output format.
func (ow *OutWriter) WriteStreak(r schema.StreakReport, cfg *contract.Config) error {
	return PrintStreak(r, cfg)
}

// WriteUpdate prints the result of an update run using the configured output format.
func (ow *OutWriter) WriteUpdate(r schema.UpdateResult, cfg *contract.Config) error {
	return PrintUpdate(r, cfg)
}

// WriteScheduleStatus prints schedule store status using the configured output format.
func (ow *OutWriter) WriteScheduleStatus(s schema.ScheduleStoreStatus, cfg *contract.Config) error {
	return PrintScheduleStatus(s, cfg)
}

// WriteHistoryStatus prints history store status using the configured output format.
func (ow *OutWriter) WriteHistoryStatus(s schema.HistoryStatus, cfg *contract.Config) error {
	return PrintHistoryStatus(s, cfg)
}

// WriteHistory prints recorded runs using the configured output format.
func (ow *OutWriter) WriteHistory(runs []schema.RunRecord, cfg *contract.Config) error {
	return PrintHistory(runs, cfg)
}

// getMaxTableTextWidth returns how wide the free-text column of the history
// table may be, based on terminal width and the fixed columns around it.
func getMaxTableTextWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Started + Outcome + Date + Slot + Total + Streak + Duration, borders included
	baseWidth := 95

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
