package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/8ria/pulse/core/streak"
	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
)

const (
	// MaxQuerySpan is the longest range a single contributionsCollection query accepts.
	MaxQuerySpan = 365 * 24 * time.Hour

	// StreakLookbackDays is how far back the streak walk can reach.
	StreakLookbackDays = 365
)

// WindowBounds returns the query range and the number of days averaged over.
// A configured Since date wins over the rolling window.
func WindowBounds(cfg *contract.Config, now time.Time) (from, to time.Time, days int) {
	to = now.UTC()
	if !cfg.Since.IsZero() {
		from = cfg.Since.UTC()
		days = int(to.Sub(from) / (24 * time.Hour))
		return from, to, max(days, 1)
	}
	days = max(cfg.WindowDays, 1)
	return to.AddDate(0, 0, -days), to, days
}

// FetchWindow queries the contribution calendar for the configured window.
func FetchWindow(ctx context.Context, cfg *contract.Config, src contract.ContributionSource, now time.Time) (schema.ContributionSummary, error) {
	if src == nil {
		return schema.ContributionSummary{}, errors.New("contribution source is not configured")
	}
	from, to, _ := WindowBounds(cfg, now)
	summary, err := FetchRange(ctx, src, cfg.Username, from, to)
	if err != nil {
		return schema.ContributionSummary{}, fmt.Errorf("failed to fetch contributions for %s: %w", cfg.Username, err)
	}
	return summary, nil
}

// FetchRange queries [from, to] in spans of at most MaxQuerySpan, oldest first.
// Days are concatenated and a date returned by two adjacent spans keeps its first entry;
// its count is taken out of the summed total once.
func FetchRange(ctx context.Context, src contract.ContributionSource, login string, from, to time.Time) (schema.ContributionSummary, error) {
	merged := schema.ContributionSummary{Login: login, From: from, To: to}
	seen := make(map[string]bool)
	for start := from; ; {
		end := start.Add(MaxQuerySpan)
		if end.After(to) {
			end = to
		}
		part, err := src.FetchContributions(ctx, login, start, end)
		if err != nil {
			return schema.ContributionSummary{}, err
		}
		merged.Total += part.Total
		for _, d := range part.Days {
			if seen[d.Date] {
				merged.Total -= d.Count
				continue
			}
			seen[d.Date] = true
			merged.Days = append(merged.Days, d)
		}
		if !end.Before(to) {
			return merged, nil
		}
		start = end
	}
}

// StreakCalendar returns a calendar reaching StreakLookbackDays back from now.
// The window calendar is reused when it already reaches that far.
func StreakCalendar(ctx context.Context, cfg *contract.Config, src contract.ContributionSource, window schema.ContributionSummary, now time.Time) ([]schema.ContributionDay, error) {
	to := now.UTC()
	from := to.AddDate(0, 0, -StreakLookbackDays)
	if !window.From.IsZero() && !window.From.After(from) {
		return window.Days, nil
	}
	summary, err := FetchRange(ctx, src, cfg.Username, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch streak calendar for %s: %w", cfg.Username, err)
	}
	return summary.Days, nil
}

// BuildSnapshot derives every value rendered into the block.
func BuildSnapshot(cfg *contract.Config, summary schema.ContributionSummary, post schema.BlogPost, now time.Time) schema.StatsSnapshot {
	_, _, days := WindowBounds(cfg, now)
	snap := schema.StatsSnapshot{
		GeneratedAt: now.UTC(),
		Timestamp:   now.UTC().Format(schema.TimestampLayout),
		WindowDays:  days,
		Total:       summary.Total,
		Average:     Average(summary.Total, days),
		DaysActive:  streak.ActiveDays(summary.Days),
		Streak:      streak.Calculate(summary.Days, now),
		BlogEnabled: cfg.BlogEnabled,
		Blog:        post,
	}
	if !cfg.Since.IsZero() {
		snap.Since = cfg.Since.UTC().Format(schema.DateLayout)
	}
	return snap
}

// Average is total per day rounded to two decimals.
func Average(total, days int) float64 {
	if days <= 0 {
		return 0
	}
	return math.Round(float64(total)/float64(days)*100) / 100
}
