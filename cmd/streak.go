package cmd

import (
	"github.com/8ria/pulse/core"
	"github.com/8ria/pulse/internal/contract"
	"github.com/spf13/cobra"
)

// streakCmd prints the current contribution streak.
var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Fetch the contribution calendar and print the current streak",
	Long: `Fetch the contribution calendar of the configured window and print the streak.

The streak counts consecutive days with at least one contribution ending today.
If today has none yet, a run ending yesterday still counts (grace day).

Requires G_TOKEN. Ignores the schedule.

Examples:
  pulse streak
  pulse streak --window "90 days" --output csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		client, err := newContributionClient()
		if err != nil {
			contract.LogFatal("Missing configuration", err)
		}
		report, err := core.ExecuteStreak(rootCtx, cfg, client, contract.SystemClock{})
		if err != nil {
			contract.LogFatal("Failed to compute streak", err)
		}
		if err := ow.WriteStreak(report, cfg); err != nil {
			contract.LogFatal("Failed to write output", err)
		}
	},
}
