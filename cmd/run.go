package cmd

import (
	"github.com/8ria/pulse/core"
	"github.com/8ria/pulse/internal/blog"
	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/internal/github"
	"github.com/8ria/pulse/internal/metrics"
	"github.com/8ria/pulse/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// baseDeps wires the stores and the logger. Remote clients are added by the callers that need them.
func baseDeps() core.Deps {
	return depsFrom(store.Manager, logger)
}

func depsFrom(mgr contract.StoreManager, log zerolog.Logger) core.Deps {
	return core.Deps{
		Clock:     contract.SystemClock{},
		Schedules: mgr.GetScheduleStore(),
		History:   mgr.GetHistoryStore(),
		Log:       log,
	}
}

// newContributionClient loads the token and builds the GraphQL client.
func newContributionClient() (*github.Client, error) {
	creds, err := contract.LoadCredentials()
	if err != nil {
		return nil, err
	}
	return github.NewClient(creds.Token,
		github.WithEndpoint(cfg.GraphQLURL),
		github.WithTimeout(cfg.HTTPTimeout),
	)
}

// runCmd executes the gated update pipeline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Update the README stats block if now is a scheduled slot",
	Long: `Run one pass of the updater.

Steps:
- Load today's schedule (generating and storing it on the first call of the day)
- Exit quietly when now is not within tolerance of a slot (unless --force)
- Fetch contributions from the GitHub GraphQL API (requires G_TOKEN)
- Scrape the latest blog post
- Compute the streak, render the block and rewrite the README

The README is written only after every step succeeded and only if the block changed.

Examples:
  # Typical cron entry, every 5 minutes
  pulse run

  # Preview the block without touching the README
  pulse run --force --dry-run`,
	PreRunE: storeSetup(true, true),
	Run: func(_ *cobra.Command, _ []string) {
		client, err := newContributionClient()
		if err != nil {
			contract.LogFatal("Missing configuration", err)
		}

		deps := baseDeps()
		deps.Contributions = client
		deps.Metrics = metrics.NewRunMetrics()
		if cfg.BlogEnabled {
			deps.Posts = blog.NewScraper(cfg.BlogURL, cfg.BlogBaseURL,
				blog.WithTimeout(cfg.HTTPTimeout),
				blog.WithLogger(logger),
			)
		}

		result, err := core.ExecuteUpdate(rootCtx, cfg, deps)
		if err != nil {
			contract.LogFatal("Update failed", err)
		}
		if err := ow.WriteUpdate(result, cfg); err != nil {
			contract.LogFatal("Failed to write output", err)
		}
	},
}
