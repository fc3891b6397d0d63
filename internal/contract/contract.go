// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/8ria/pulse/schema"
)

// ErrNotFound is returned by stores when a key has no value.
var ErrNotFound = errors.New("not found")

// ScheduleStore is a key-value store for daily schedules, keyed by YYYY-MM-DD.
// This allows the gate to be tested against an in-memory map.
type ScheduleStore interface {
	// Get returns the raw value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// PutIfAbsent stores value under key unless a value already exists.
	// It reports whether this call created the entry.
	PutIfAbsent(ctx context.Context, key string, value []byte) (bool, error)

	// Keys returns all stored keys in ascending order.
	Keys(ctx context.Context) ([]string, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.ScheduleStoreStatus, error)

	// Close releases the underlying connection or handle.
	Close() error
}

// HistoryStore records every invocation of the updater.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(ctx context.Context, startedAt time.Time, scheduleDate string) (string, error)

	// EndRun updates the run with completion data
	EndRun(ctx context.Context, runID string, result schema.RunResult) error

	// ListRuns returns the most recent runs first; limit <= 0 returns all of them
	ListRuns(ctx context.Context, limit int) ([]schema.RunRecord, error)

	// GetStatus returns status information about the history store
	GetStatus(ctx context.Context) (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}

// StoreManager hands out the configured stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetScheduleStore() ScheduleStore
	GetHistoryStore() HistoryStore
}

// ContributionSource fetches contribution totals and calendars.
type ContributionSource interface {
	FetchContributions(ctx context.Context, login string, from, to time.Time) (schema.ContributionSummary, error)
}

// PostSource finds the newest blog post.
type PostSource interface {
	Latest(ctx context.Context) (schema.BlogPost, error)
}

// Clock is the single source of "now" for the gate and the pipeline.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

var _ Clock = SystemClock{} // Compile-time check

// Now implements the Clock interface.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant. Useful for tests and for --at overrides.
type FixedClock struct {
	T time.Time
}

var _ Clock = FixedClock{} // Compile-time check

// Now implements the Clock interface.
func (c FixedClock) Now() time.Time {
	return c.T.UTC()
}
