package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
	"github.com/rs/zerolog"
)

// Gate decides whether "now" falls on one of today's run slots.
type Gate struct {
	store     contract.ScheduleStore
	clock     contract.Clock
	rng       RandSource
	tolerance int
	log       zerolog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock sets the source of the current instant.
func WithClock(c contract.Clock) Option {
	return func(g *Gate) { g.clock = c }
}

// WithRand sets the randomness used for new schedules.
func WithRand(r RandSource) Option {
	return func(g *Gate) { g.rng = r }
}

// WithTolerance sets the match window in minutes, inclusive on both sides.
func WithTolerance(minutes int) Option {
	return func(g *Gate) { g.tolerance = max(minutes, 0) }
}

// WithLogger sets the logger for schedule events.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gate) { g.log = l }
}

// NewGate creates a gate over store. Defaults: UTC wall clock, process-wide
// random source, 10 minute tolerance, no logging.
func NewGate(store contract.ScheduleStore, opts ...Option) *Gate {
	g := &Gate{
		store:     store,
		clock:     contract.SystemClock{},
		rng:       DefaultRand(),
		tolerance: schema.DefaultTolerance,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Tolerance returns the configured match window in minutes.
func (g *Gate) Tolerance() int { return g.tolerance }

// Now returns the gate's current instant.
func (g *Gate) Now() time.Time { return g.clock.Now() }

// LoadOrCreate returns the schedule stored for date, generating and storing one
// when none exists. The boolean reports whether this call created it.
// A stored schedule that fails validation is returned as ErrMalformedSchedule.
func (g *Gate) LoadOrCreate(ctx context.Context, date string) (schema.DailySchedule, bool, error) {
	s, err := g.Peek(ctx, date)
	if err == nil {
		return s, false, nil
	}
	if !errors.Is(err, contract.ErrNotFound) {
		return schema.DailySchedule{}, false, err
	}

	s = GenerateSchedule(date, g.rng)
	data, err := Encode(s)
	if err != nil {
		return schema.DailySchedule{}, false, fmt.Errorf("failed to encode schedule for %s: %w", date, err)
	}

	created, err := g.store.PutIfAbsent(ctx, date, data)
	if err != nil {
		return schema.DailySchedule{}, false, fmt.Errorf("failed to store schedule for %s: %w", date, err)
	}
	if !created {
		// Another invocation stored the day's schedule first; that one is authoritative.
		g.log.Debug().Str("date", date).Msg("schedule created concurrently, reloading")
		s, err = g.Peek(ctx, date)
		return s, false, err
	}

	g.log.Info().
		Str("date", date).
		Int("total_runs", s.TotalRuns).
		Strs("slots", schema.FormatSlots(s.RunSlots)).
		Msg("generated new daily schedule")
	return s, true, nil
}

// Peek reads the schedule stored for date without ever creating one.
// It returns an error wrapping contract.ErrNotFound when the date has none.
func (g *Gate) Peek(ctx context.Context, date string) (schema.DailySchedule, error) {
	data, err := g.store.Get(ctx, date)
	if err != nil {
		if errors.Is(err, contract.ErrNotFound) {
			return schema.DailySchedule{}, fmt.Errorf("no schedule for %s: %w", date, err)
		}
		return schema.DailySchedule{}, fmt.Errorf("failed to load schedule for %s: %w", date, err)
	}
	s, err := Decode(data, date)
	if err != nil {
		return schema.DailySchedule{}, fmt.Errorf("schedule for %s: %w", date, err)
	}
	return s, nil
}

// Evaluate loads (or creates) today's schedule and checks the current offset against it.
func (g *Gate) Evaluate(ctx context.Context) (schema.ScheduleDecision, error) {
	now := g.clock.Now()
	date := schema.DateOf(now)
	offset := schema.MinuteOfDay(now)

	s, created, err := g.LoadOrCreate(ctx, date)
	if err != nil {
		return schema.ScheduleDecision{}, err
	}

	d := Decide(s, offset, g.tolerance)
	d.Created = created
	g.log.Debug().
		Str("date", date).
		Str("offset", schema.FormatOffset(offset)).
		Bool("should_run", d.ShouldRun).
		Msg("evaluated schedule")
	return d, nil
}

// ShouldRunNow reports whether the current instant is within tolerance of a slot.
func (g *Gate) ShouldRunNow(ctx context.Context) (bool, error) {
	d, err := g.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	return d.ShouldRun, nil
}
