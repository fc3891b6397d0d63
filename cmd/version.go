package cmd

import (
	"fmt"
	"io"
	"maps"
	"runtime"
	"slices"

	"github.com/8ria/pulse/schema"
	"github.com/spf13/cobra"
)

// versionCmd prints build details and the compiled-in scheduling limits.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pulse.",
	Long: `Print the pulse build and the limits it was compiled with.

Besides the release, commit and build date this lists the range of daily run
counts the schedule generator draws from and the storage backends accepted by
--schedule-backend and --history-backend. Include this output when reporting a
stats block that was not refreshed.`,
	Run: func(cmd *cobra.Command, _ []string) {
		writeVersion(cmd.OutOrStdout())
	},
}

func writeVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "pulse %s (%s, built %s, %s)\n", version, commit, date, runtime.Version())
	_, _ = fmt.Fprintf(w, "  runs per day:      %d-%d\n", schema.MinRunsPerDay, schema.MaxRunsPerDay)
	_, _ = fmt.Fprintf(w, "  schedule backends: %v\n", backendNames(schema.ValidScheduleBackends))
	_, _ = fmt.Fprintf(w, "  history backends:  %v\n", backendNames(schema.ValidHistoryBackends))
}

func backendNames(set map[schema.DatabaseBackend]struct{}) []schema.DatabaseBackend {
	return slices.Sorted(maps.Keys(set))
}
