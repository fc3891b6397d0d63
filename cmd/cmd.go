// Package cmd defines the command-line interface for pulse.
package cmd

import (
	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the schedule subcommands to the parent schedule command
	scheduleCmd.AddCommand(scheduleShowCmd)
	scheduleCmd.AddCommand(scheduleCheckCmd)
	scheduleCmd.AddCommand(scheduleStatusCmd)
	scheduleCmd.AddCommand(scheduleClearCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)
	historyCmd.AddCommand(historyClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("username", contract.DefaultUsername, "GitHub login whose contributions are counted")
	rootCmd.PersistentFlags().String("readme", contract.DefaultReadme, "Path to the markdown file holding the stats markers")
	rootCmd.PersistentFlags().String("window", contract.DefaultWindow, "Rolling window for totals (e.g., '30 days', '4 weeks')")
	rootCmd.PersistentFlags().String("since", "", "Fixed start date (YYYY-MM-DD); overrides --window")
	rootCmd.PersistentFlags().String("blog", "yes", "Include the latest blog post (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("blog-url", contract.DefaultBlogURL, "Blog homepage to scrape for the latest post")
	rootCmd.PersistentFlags().String("blog-base-url", contract.DefaultBlogBaseURL, "Site base used to resolve relative post links")
	rootCmd.PersistentFlags().String("template-file", "", "Optional text/template file for the stats block")
	rootCmd.PersistentFlags().String("schedule-backend", string(schema.FileBackend), "Schedule backend: file or sqlite or mysql or postgresql or redis or memory")
	rootCmd.PersistentFlags().String("schedule-dir", ".", "Directory for the file schedule backend")
	rootCmd.PersistentFlags().String("schedule-db-connect", "", "Connection string for the schedule backend (e.g., redis://host:6379/0)")
	rootCmd.PersistentFlags().Int("tolerance", schema.DefaultTolerance, "Minutes on either side of a slot that still count as on schedule")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Connection string for run history (must differ from schedule-db-connect)")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write prometheus textfile metrics to this path after each run")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: trace, debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().String("graphql-url", contract.DefaultGraphQLURL, "GitHub GraphQL endpoint")
	rootCmd.PersistentFlags().String("http-timeout", contract.DefaultHTTPTimeout.String(), "Timeout for each HTTP request (0 disables)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runCmd to Viper
	runCmd.Flags().Bool("force", false, "Update even when now is not a scheduled slot")
	runCmd.Flags().Bool("dry-run", false, "Render the block without writing the README")
	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		contract.LogFatal("Error binding run flags", err)
	}

	// Flags read directly by their commands
	scheduleShowCmd.Flags().String("date", "", "Day to show (YYYY-MM-DD, default today)")
	scheduleCheckCmd.Flags().String("at", "", "Time of day to check instead of now (HH:MM, UTC)")
	historyListCmd.Flags().Int("limit", 20, "Number of runs to show (0 = all)")
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
}
