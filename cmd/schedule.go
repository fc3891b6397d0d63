package cmd

import (
	"fmt"

	"github.com/8ria/pulse/core"
	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/internal/store"
	"github.com/8ria/pulse/schema"
	"github.com/spf13/cobra"
)

// scheduleCmd focused on the per-day run schedule.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect and manage the daily run schedules",
	Long: `Inspect and manage the randomly drawn daily run schedules.

Each UTC day gets between 1 and 30 run slots, spread evenly over the day with
up to 15 minutes of jitter. The schedule is drawn once, on the first run of the
day, and stored so every later invocation sees the same slots.

Subcommands:
  show   - Print a stored schedule (never draws a new one)
  check  - Evaluate the gate now, or at --at HH:MM
  status - Show schedule store statistics
  clear  - Remove all stored schedules`,
}

// scheduleShowCmd prints a stored schedule.
var scheduleShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored schedule of a day",
	Long: `Print the run slots stored for a day (today by default).

This never generates a schedule, so it is safe to call before the first run of the day.

Examples:
  pulse schedule show
  pulse schedule show --date 2025-06-15 --output json`,
	PreRunE: storeSetup(true, false),
	Run: func(cmd *cobra.Command, _ []string) {
		day, _ := cmd.Flags().GetString("date")
		s, err := core.GetSchedule(rootCtx, cfg, baseDeps(), day)
		if err != nil {
			contract.LogFatal("Failed to show schedule", err)
		}
		if err := ow.WriteSchedule(s, cfg); err != nil {
			contract.LogFatal("Failed to write output", err)
		}
	},
}

// scheduleCheckCmd evaluates the gate.
var scheduleCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate whether now (or --at) is a scheduled slot",
	Long: `Run the schedule gate exactly as 'pulse run' would, without fetching or writing anything.

Today's schedule is generated if it does not exist yet.

Examples:
  pulse schedule check
  pulse schedule check --at 14:30`,
	PreRunE: storeSetup(true, false),
	Run: func(cmd *cobra.Command, _ []string) {
		var at *int
		if s, _ := cmd.Flags().GetString("at"); s != "" {
			offset, err := schema.ParseOffset(s)
			if err != nil {
				contract.LogFatal("Invalid --at value", err)
			}
			at = &offset
		}
		d, err := core.ExecuteScheduleCheck(rootCtx, cfg, baseDeps(), at)
		if err != nil {
			contract.LogFatal("Failed to check schedule", err)
		}
		if err := ow.WriteDecision(d, cfg); err != nil {
			contract.LogFatal("Failed to write output", err)
		}
	},
}

// scheduleStatusCmd shows schedule store status.
var scheduleStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display schedule store statistics and connection details",
	Long: `Show the schedule backend, its location, and how many days are stored.

Examples:
  pulse schedule status
  pulse schedule status --schedule-backend redis --schedule-db-connect redis://localhost:6379/0`,
	PreRunE: storeSetup(true, false),
	Run: func(_ *cobra.Command, _ []string) {
		status, err := core.ExecuteScheduleStatus(rootCtx, store.Manager.GetScheduleStore())
		if err != nil {
			contract.LogFatal("Failed to get schedule status", err)
		}
		if err := ow.WriteScheduleStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write output", err)
		}
	},
}

// scheduleClearCmd removes every stored schedule.
var scheduleClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored schedules",
	Long: `Delete every stored schedule. The next run draws a fresh schedule for its day.

WARNING: clearing mid-day gives the day a second random draw.`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		n, err := store.ClearSchedules(rootCtx, cfg.ScheduleBackend, cfg.ScheduleDir, cfg.ScheduleDBConnect)
		if err != nil {
			contract.LogFatal("Failed to clear schedules", err)
		}
		if n > 0 {
			fmt.Printf("Removed %d schedules.\n", n)
		}
		fmt.Println("Schedules cleared successfully.")
	},
}
