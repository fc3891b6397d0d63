package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/8ria/pulse/core"
	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/internal/store"
	"github.com/8ria/pulse/schema"
	"github.com/spf13/cobra"
)

// historyMigrateSetup validates config without opening the history store,
// so migrations can run against a fresh database.
func historyMigrateSetup(cmd *cobra.Command, args []string) error {
	if err := sharedSetup(rootCtx, cmd, args); err != nil {
		return err
	}
	if cfg.HistoryBackend == schema.NoneBackend {
		return errors.New("history is disabled. Set --history-backend to sqlite, mysql or postgresql")
	}
	if cfg.HistoryBackend == schema.SQLiteBackend && cfg.HistoryDBConnect == "" {
		cfg.HistoryDBConnect = contract.GetHistoryDBFilePath()
	}
	return nil
}

// historyCmd focused on run history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the optional run history and its exports",
	Long: `Manage the audit trail of pulse invocations.

When a history backend is configured, every 'pulse run' stores:
- Run id, start and finish time
- Outcome (skipped, updated, unchanged, dry_run, failed)
- Matched slot, contribution total, streak and blog title
- The error message of failed runs

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history statistics
  list    - Show recent runs
  export  - Export runs to Parquet
  clear   - Remove all history
  migrate - Run database schema migrations`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the history backend, the number of recorded runs and their outcomes.

Examples:
  pulse history status --history-backend sqlite`,
	PreRunE: storeSetup(false, true),
	Run: func(_ *cobra.Command, _ []string) {
		status, err := core.ExecuteHistoryStatus(rootCtx, store.Manager.GetHistoryStore())
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		if err := ow.WriteHistoryStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write output", err)
		}
	},
}

// historyListCmd prints recent runs.
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent runs",
	Long: `Print recorded runs, most recent first.

Examples:
  pulse history list --limit 50
  pulse history list --output csv --output-file runs.csv`,
	PreRunE: storeSetup(false, true),
	Run: func(cmd *cobra.Command, _ []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := core.ExecuteHistoryList(rootCtx, store.Manager.GetHistoryStore(), limit)
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		if err := ow.WriteHistory(runs, cfg); err != nil {
			contract.LogFatal("Failed to write output", err)
		}
	},
}

// historyExportCmd exports run history to Parquet.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all recorded runs to <output-file>.runs.parquet.

Requires: --output-file parameter

Examples:
  pulse history export --output-file pulse
  duckdb -c "SELECT outcome, count(*) FROM read_parquet('pulse.runs.parquet') GROUP BY 1"`,
	PreRunE: storeSetup(false, true),
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.ExecuteHistoryExport(rootCtx, store.Manager.GetHistoryStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run history",
	Long: `Delete every recorded run.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  pulse history export --output-file backup
  pulse history clear`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.ClearHistory(rootCtx, cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  pulse history migrate --history-backend sqlite

  # Rollback to initial state
  pulse history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		targetVersion, _ := cmd.Flags().GetInt("target-version")
		if err := store.MigrateHistory(rootCtx, cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
