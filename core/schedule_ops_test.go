package core

import (
	"context"
	"errors"
	"testing"

	"github.com/8ria/pulse/internal/store"
	"github.com/8ria/pulse/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetSchedule(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig("README.md")
	deps := Deps{Clock: clockAt(9, 0), Schedules: seededStore(t, 300, 900), Log: zerolog.Nop()}

	s, err := GetSchedule(ctx, cfg, deps, "")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", s.Date)
	assert.Equal(t, []int{300, 900}, s.RunSlots)

	_, err = GetSchedule(ctx, cfg, deps, "2025-06-16")
	require.ErrorIs(t, err, ErrNoSchedule)
	keys, err := deps.Schedules.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-15"}, keys, "reading never creates")

	_, err = GetSchedule(ctx, cfg, deps, "June 16")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected YYYY-MM-DD")
}

func TestCheckSlot(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig("README.md")
	deps := Deps{Clock: clockAt(9, 0), Schedules: seededStore(t, 300, 900), Log: zerolog.Nop()}

	tests := []struct {
		name    string
		offset  int
		wantRun bool
		next    *int
	}{
		{"inside window", 905, true, nil},
		{"edge of window", 290, true, ptr(300)},
		{"between slots", 600, false, ptr(900)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := CheckSlot(ctx, cfg, deps, "2025-06-15", tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRun, d.ShouldRun)
			assert.Equal(t, tt.next, d.NextSlot)
			assert.False(t, d.Created)
		})
	}

	_, err := CheckSlot(ctx, cfg, deps, "2025-06-15", 1440)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	_, err = CheckSlot(ctx, cfg, deps, "2025-06-14", 300)
	require.ErrorIs(t, err, ErrNoSchedule)
}

func TestExecuteScheduleCheck(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig("README.md")
	deps := Deps{
		Clock:     clockAt(23, 59),
		Schedules: store.NewMemoryScheduleStore(),
		Rand:      &scriptedRand{draws: []int{0, 15}},
		Log:       zerolog.Nop(),
	}

	at := 715
	d, err := ExecuteScheduleCheck(ctx, cfg, deps, &at)
	require.NoError(t, err)
	assert.True(t, d.Created)
	assert.Equal(t, 715, d.Offset)
	assert.True(t, d.ShouldRun)
	assert.Equal(t, "2025-06-15", d.Schedule.Date)

	d, err = ExecuteScheduleCheck(ctx, cfg, deps, nil)
	require.NoError(t, err)
	assert.False(t, d.Created)
	assert.Equal(t, 1439, d.Offset)
	assert.False(t, d.ShouldRun)
}

func TestExecuteStatus(t *testing.T) {
	ctx := context.Background()

	_, err := ExecuteScheduleStatus(ctx, nil)
	require.Error(t, err)
	_, err = ExecuteHistoryStatus(ctx, nil)
	require.Error(t, err)
	_, err = ExecuteHistoryList(ctx, nil, 10)
	require.Error(t, err)

	status, err := ExecuteScheduleStatus(ctx, seededStore(t, 300))
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalEntries)

	history := &store.MockHistoryStore{}
	history.On("GetStatus", mock.Anything).Return(schema.HistoryStatus{Backend: "sqlite", Connected: true, TotalRuns: 4}, nil)
	history.On("ListRuns", mock.Anything, 2).Return(nil, errors.New("locked"))

	hs, err := ExecuteHistoryStatus(ctx, history)
	require.NoError(t, err)
	assert.Equal(t, 4, hs.TotalRuns)

	_, err = ExecuteHistoryList(ctx, history, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list runs: locked")
	history.AssertExpectations(t)
}

func ptr[T any](v T) *T { return &v }
