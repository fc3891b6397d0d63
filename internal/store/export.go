package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/internal/parquet"
)

// ExecuteHistoryExport writes every recorded run to <outputFile>.runs.parquet.
func ExecuteHistoryExport(ctx context.Context, hs contract.HistoryStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if hs == nil {
		return errors.New("history store is not initialized")
	}

	status, err := hs.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)

	records, err := hs.ListRuns(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(records), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(records), runsFile)
	return nil
}
