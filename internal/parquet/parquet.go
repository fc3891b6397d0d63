// Package parquet exports pulse run history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/8ria/pulse/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single invocation of the updater.
// This struct maps to the pulse_runs database table.
type Run struct {
	// RunID is the UUID of the run
	RunID string `parquet:"run_id,snappy"`

	// StartedAt is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartedAt time.Time `parquet:"started_at,snappy"`

	// FinishedAt is when the run completed (nullable while a run is in flight)
	FinishedAt *time.Time `parquet:"finished_at,optional,snappy"`

	// DurationMs is the wall time of the run in milliseconds (nullable)
	DurationMs *int64 `parquet:"duration_ms,optional,snappy"`

	// ScheduleDate is the UTC date whose schedule was evaluated
	ScheduleDate string `parquet:"schedule_date,snappy"`

	// Outcome is skipped, updated, unchanged, dry_run or failed (nullable)
	Outcome *string `parquet:"outcome,optional,snappy"`

	SlotMatched        *int32  `parquet:"slot_matched,optional,snappy"`
	TotalContributions *int32  `parquet:"total_contributions,optional,snappy"`
	Streak             *int32  `parquet:"streak,optional,snappy"`
	BlogTitle          *string `parquet:"blog_title,optional,snappy"`
	ErrorMessage       *string `parquet:"error_message,optional,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the Run struct tags
	writer := parquet.NewGenericWriter[Run](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to flush parquet file: %w", err)
	}
	return file.Close()
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, r := range records {
		result[i] = Run{
			RunID:              r.RunID,
			StartedAt:          r.StartedAt,
			FinishedAt:         r.FinishedAt,
			DurationMs:         r.DurationMs,
			ScheduleDate:       r.ScheduleDate,
			Outcome:            r.Outcome,
			SlotMatched:        r.SlotMatched,
			TotalContributions: r.Total,
			Streak:             r.Streak,
			BlogTitle:          r.BlogTitle,
			ErrorMessage:       r.ErrorMessage,
		}
	}
	return result
}
