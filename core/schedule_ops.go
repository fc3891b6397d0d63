package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/8ria/pulse/core/schedule"
	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
)

// ErrNoSchedule is returned when a date has no stored schedule yet.
var ErrNoSchedule = errors.New("no schedule stored for date")

// GetSchedule reads the stored schedule of date (today when empty) without creating one.
func GetSchedule(ctx context.Context, cfg *contract.Config, deps Deps, date string) (schema.DailySchedule, error) {
	if date == "" {
		date = schema.DateOf(deps.clock().Now())
	} else if _, err := time.Parse(schema.DateLayout, date); err != nil {
		return schema.DailySchedule{}, fmt.Errorf("invalid date %q. expected YYYY-MM-DD", date)
	}

	s, err := NewGate(cfg, deps).Peek(ctx, date)
	if errors.Is(err, contract.ErrNotFound) {
		return schema.DailySchedule{}, fmt.Errorf("%w: %s", ErrNoSchedule, date)
	}
	return s, err
}

// CheckSlot evaluates offset against the stored schedule of date without creating one.
func CheckSlot(ctx context.Context, cfg *contract.Config, deps Deps, date string, offset int) (schema.ScheduleDecision, error) {
	if offset < 0 || offset >= schema.MinutesPerDay {
		return schema.ScheduleDecision{}, fmt.Errorf("offset %d out of range [0,%d]", offset, schema.MinutesPerDay-1)
	}
	s, err := GetSchedule(ctx, cfg, deps, date)
	if err != nil {
		return schema.ScheduleDecision{}, err
	}
	return schedule.Decide(s, offset, NewGate(cfg, deps).Tolerance()), nil
}

// ExecuteScheduleCheck runs the gate exactly as an update would, creating
// today's schedule when missing. A non-nil at replaces the time of day.
func ExecuteScheduleCheck(ctx context.Context, cfg *contract.Config, deps Deps, at *int) (schema.ScheduleDecision, error) {
	if at != nil {
		now := deps.clock().Now().UTC()
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		deps.Clock = contract.FixedClock{T: day.Add(time.Duration(*at) * time.Minute)}
	}
	return NewGate(cfg, deps).Evaluate(ctx)
}

// ExecuteScheduleStatus reports on the schedule store.
func ExecuteScheduleStatus(ctx context.Context, store contract.ScheduleStore) (schema.ScheduleStoreStatus, error) {
	if store == nil {
		return schema.ScheduleStoreStatus{}, errors.New("schedule store is not initialized")
	}
	status, err := store.GetStatus(ctx)
	if err != nil {
		return schema.ScheduleStoreStatus{}, fmt.Errorf("failed to get schedule store status: %w", err)
	}
	return status, nil
}

// ExecuteHistoryStatus reports on the run history store.
func ExecuteHistoryStatus(ctx context.Context, store contract.HistoryStore) (schema.HistoryStatus, error) {
	if store == nil {
		return schema.HistoryStatus{}, errors.New("history store is not initialized")
	}
	status, err := store.GetStatus(ctx)
	if err != nil {
		return schema.HistoryStatus{}, fmt.Errorf("failed to get history status: %w", err)
	}
	return status, nil
}

// ExecuteHistoryList returns the most recent runs first.
func ExecuteHistoryList(ctx context.Context, store contract.HistoryStore, limit int) ([]schema.RunRecord, error) {
	if store == nil {
		return nil, errors.New("history store is not initialized")
	}
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
