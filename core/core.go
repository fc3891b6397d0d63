// Package core has core logic for gating, stats and the README update pipeline.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/8ria/pulse/core/schedule"
	"github.com/8ria/pulse/core/streak"
	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/internal/metrics"
	"github.com/8ria/pulse/internal/readme"
	"github.com/8ria/pulse/schema"
	"github.com/rs/zerolog"
)

// Deps holds the collaborators of the pipeline. Posts, History and Metrics are optional.
type Deps struct {
	Clock         contract.Clock
	Rand          schedule.RandSource
	Schedules     contract.ScheduleStore
	History       contract.HistoryStore
	Contributions contract.ContributionSource
	Posts         contract.PostSource
	Metrics       *metrics.RunMetrics
	Log           zerolog.Logger
}

func (d Deps) clock() contract.Clock {
	if d.Clock == nil {
		return contract.SystemClock{}
	}
	return d.Clock
}

// NewGate builds the schedule gate for cfg on top of the deps' store and clock.
func NewGate(cfg *contract.Config, deps Deps) *schedule.Gate {
	opts := []schedule.Option{
		schedule.WithClock(deps.clock()),
		schedule.WithTolerance(cfg.Tolerance),
		schedule.WithLogger(deps.Log),
	}
	if deps.Rand != nil {
		opts = append(opts, schedule.WithRand(deps.Rand))
	}
	return schedule.NewGate(deps.Schedules, opts...)
}

// ExecuteUpdate runs one pass of the pipeline: gate, fetch, render, write.
// The README is only touched after every remote call and the render succeeded.
// On failure the returned result still carries the outcome and whatever was computed.
func ExecuteUpdate(ctx context.Context, cfg *contract.Config, deps Deps) (schema.UpdateResult, error) {
	clock := deps.clock()
	started := clock.Now()
	log := deps.Log.With().Str("date", schema.DateOf(started)).Logger()

	result := schema.UpdateResult{}
	if deps.History != nil {
		runID, err := deps.History.BeginRun(ctx, started, schema.DateOf(started))
		if err != nil {
			log.Warn().Err(err).Msg("failed to record run start")
		}
		result.RunID = runID
	}

	err := runPipeline(ctx, cfg, deps, &result)
	if err != nil {
		result.Outcome = schema.OutcomeFailed
	}
	finish(ctx, cfg, deps, result, started, clock.Now(), err)

	if err != nil {
		log.Error().Err(err).Msg("update failed")
		return result, err
	}
	log.Info().Str("outcome", string(result.Outcome)).Msg("update finished")
	return result, nil
}

func runPipeline(ctx context.Context, cfg *contract.Config, deps Deps, result *schema.UpdateResult) error {
	gate := NewGate(cfg, deps)
	decision, err := gate.Evaluate(ctx)
	if err != nil {
		return err
	}
	result.Decision = decision

	if !decision.ShouldRun && !cfg.Force {
		deps.Log.Info().
			Str("offset", schema.FormatOffset(decision.Offset)).
			Strs("slots", schema.FormatSlots(decision.Schedule.RunSlots)).
			Msg("not a scheduled run time, skipping")
		result.Outcome = schema.OutcomeSkipped
		return nil
	}
	if !decision.ShouldRun {
		deps.Log.Info().Msg("forcing update outside of the schedule")
	}

	now := gate.Now()
	summary, err := FetchWindow(ctx, cfg, deps.Contributions, now)
	if err != nil {
		return err
	}

	var post schema.BlogPost
	if cfg.BlogEnabled && deps.Posts != nil {
		post, err = deps.Posts.Latest(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch latest blog post: %w", err)
		}
	}

	streakDays, err := StreakCalendar(ctx, cfg, deps.Contributions, summary, now)
	if err != nil {
		return err
	}

	snap := BuildSnapshot(cfg, summary, post, now)
	snap.Streak = streak.Calculate(streakDays, now)
	result.Snapshot = &snap

	block, err := readme.Render(cfg.Template, snap)
	if err != nil {
		return err
	}
	result.Block = block

	if cfg.DryRun {
		result.Outcome = schema.OutcomeDryRun
		return nil
	}

	changed, err := readme.UpdateFile(cfg.ReadmePath, block)
	if err != nil {
		return err
	}
	if changed {
		result.Outcome = schema.OutcomeUpdated
		deps.Log.Info().Str("path", cfg.ReadmePath).Int("total", snap.Total).Int("streak", snap.Streak).Msg("README updated")
	} else {
		result.Outcome = schema.OutcomeUnchanged
	}
	return nil
}

// finish records history and metrics. Both are best effort.
func finish(ctx context.Context, cfg *contract.Config, deps Deps, result schema.UpdateResult, started, finished time.Time, runErr error) {
	if deps.History != nil && result.RunID != "" {
		rr := schema.RunResult{
			FinishedAt:  finished,
			Outcome:     result.Outcome,
			SlotMatched: result.Decision.MatchedSlot,
		}
		if result.Snapshot != nil {
			rr.Total = result.Snapshot.Total
			rr.Streak = result.Snapshot.Streak
			if result.Snapshot.BlogEnabled {
				rr.BlogTitle = result.Snapshot.Blog.Title
			}
		}
		if runErr != nil {
			rr.Error = runErr.Error()
		}
		if err := deps.History.EndRun(ctx, result.RunID, rr); err != nil {
			deps.Log.Warn().Err(err).Str("run_id", result.RunID).Msg("failed to record run end")
		}
	}

	if deps.Metrics != nil {
		deps.Metrics.Observe(result.Outcome, started, finished, result.Decision, result.Snapshot)
		if cfg.MetricsFile != "" {
			if err := deps.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
				deps.Log.Warn().Err(err).Msg("failed to export metrics")
			}
		}
	}
}

// ExecuteStreak fetches the calendar of the configured window and computes the streak
// over the last StreakLookbackDays days.
func ExecuteStreak(ctx context.Context, cfg *contract.Config, src contract.ContributionSource, clock contract.Clock) (schema.StreakReport, error) {
	if src == nil {
		return schema.StreakReport{}, errors.New("contribution source is not configured")
	}
	if clock == nil {
		clock = contract.SystemClock{}
	}
	now := clock.Now()
	summary, err := FetchWindow(ctx, cfg, src, now)
	if err != nil {
		return schema.StreakReport{}, err
	}
	streakDays, err := StreakCalendar(ctx, cfg, src, summary, now)
	if err != nil {
		return schema.StreakReport{}, err
	}
	report := BuildStreakReport(summary.Days, now)
	report.Streak = streak.Calculate(streakDays, now)
	return report, nil
}

// BuildStreakReport summarizes a calendar as of now.
func BuildStreakReport(days []schema.ContributionDay, now time.Time) schema.StreakReport {
	total := 0
	for _, d := range days {
		total += d.Count
	}
	if days == nil {
		days = []schema.ContributionDay{}
	}
	return schema.StreakReport{
		Today:      schema.DateOf(now),
		Streak:     streak.Calculate(days, now),
		Total:      total,
		DaysActive: streak.ActiveDays(days),
		Days:       days,
	}
}
