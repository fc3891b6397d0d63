package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/internal/logging"
	"github.com/8ria/pulse/internal/outwriter"
	"github.com/8ria/pulse/internal/store"
	"github.com/8ria/pulse/schema"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// logger is rebuilt from the configured level once the config is validated.
var logger = zerolog.Nop()

// ow renders every command result.
var ow = outwriter.NewOutWriter()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Keep a README stats block fresh on a randomized daily schedule.",
	Long: `Pulse rewrites the stats block of a README with contribution totals,
the current activity streak and the latest blog post.

It is meant to be invoked often (e.g. every few minutes from cron or CI) and only
does real work when the current time is within tolerance of one of the day's
randomly drawn run slots.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".pulse") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("PULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Set defaults in Viper
	viper.SetDefault("username", contract.DefaultUsername)
	viper.SetDefault("readme", contract.DefaultReadme)
	viper.SetDefault("window", contract.DefaultWindow)
	viper.SetDefault("blog", "yes")
	viper.SetDefault("blog-url", contract.DefaultBlogURL)
	viper.SetDefault("blog-base-url", contract.DefaultBlogBaseURL)
	viper.SetDefault("schedule-backend", schema.FileBackend)
	viper.SetDefault("schedule-dir", ".")
	viper.SetDefault("tolerance", schema.DefaultTolerance)
	viper.SetDefault("history-backend", schema.NoneBackend)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("graphql-url", contract.DefaultGraphQLURL)
	viper.SetDefault("http-timeout", contract.DefaultHTTPTimeout.String())
}

// sharedSetup unmarshals config, runs validation and builds the logger.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	color.NoColor = color.NoColor || !cfg.UseColors
	logger = logging.New(cfg.LogLevel, os.Stderr)
	return nil
}

// storeSetup runs sharedSetup and opens the stores a command needs.
func storeSetup(withSchedule, withHistory bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		opts := store.Options{HistoryBackend: schema.NoneBackend}
		if withSchedule {
			opts.ScheduleBackend = cfg.ScheduleBackend
			opts.ScheduleDir = cfg.ScheduleDir
			opts.ScheduleConnStr = cfg.ScheduleDBConnect
		}
		if withHistory {
			opts.HistoryBackend = cfg.HistoryBackend
			opts.HistoryConnStr = cfg.HistoryDBConnect
		}
		if err := store.InitStores(rootCtx, opts); err != nil {
			return fmt.Errorf("failed to initialize persistence: %w", err)
		}
		return nil
	}
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
