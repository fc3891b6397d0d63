package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/internal/store"
	"github.com/8ria/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// at returns a clock fixed to 2025-06-15 at hh:mm UTC.
func at(hh, mm int) contract.FixedClock {
	return contract.FixedClock{T: time.Date(2025, time.June, 15, hh, mm, 30, 0, time.UTC)}
}

// seeded stores a schedule for 2025-06-15 with the given slots.
func seeded(t *testing.T, slots ...int) *store.MemoryScheduleStore {
	t.Helper()
	s := store.NewMemoryScheduleStore()
	data, err := Encode(schema.DailySchedule{
		Date: "2025-06-15", RunSlots: slots, TotalRuns: len(slots), IntervalMinutes: schema.MinutesPerDay / len(slots),
	})
	require.NoError(t, err)
	_, err = s.PutIfAbsent(context.Background(), "2025-06-15", data)
	require.NoError(t, err)
	return s
}

func TestGate_LoadOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryScheduleStore()
	g := NewGate(s, WithClock(at(8, 0)), WithRand(&scriptedRand{draws: []int{3, 0, 30, 15, 5}}))

	first, created, err := g.LoadOrCreate(ctx, "2025-06-15")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []int{165, 555, 900, 1250}, first.RunSlots)

	// A different random source must not matter once the day is stored
	g = NewGate(s, WithRand(&scriptedRand{draws: []int{0, 15}}))
	for range 3 {
		again, created, err := g.LoadOrCreate(ctx, "2025-06-15")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first, again)
	}

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-15"}, keys)
}

func TestGate_NewDayGetsNewSchedule(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryScheduleStore()
	g := NewGate(s, WithRand(&scriptedRand{draws: []int{0, 15}}))

	_, _, err := g.LoadOrCreate(ctx, "2025-06-15")
	require.NoError(t, err)
	next, created, err := g.LoadOrCreate(ctx, "2025-06-16")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "2025-06-16", next.Date)
}

func TestGate_ShouldRunNow(t *testing.T) {
	tests := []struct {
		name  string
		slots []int
		clock contract.FixedClock
		want  bool
	}{
		{"exact slot", []int{480, 1000}, at(8, 0), true},
		{"nine minutes after", []int{480, 1000}, at(8, 9), true},
		{"ten minutes after is inclusive", []int{480, 1000}, at(8, 10), true},
		{"eleven minutes after", []int{480, 1000}, at(8, 11), false},
		{"ten minutes before", []int{480, 1000}, at(7, 50), true},
		{"eleven minutes before", []int{480, 1000}, at(7, 49), false},
		{"second slot", []int{480, 1000}, at(16, 45), true},
		{"between slots", []int{480, 1000}, at(12, 0), false},
		{"midnight edge", []int{5}, at(0, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(seeded(t, tt.slots...), WithClock(tt.clock))
			got, err := g.ShouldRunNow(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGate_ToleranceOption(t *testing.T) {
	s := seeded(t, 480)

	got, err := NewGate(s, WithClock(at(8, 3)), WithTolerance(2)).ShouldRunNow(context.Background())
	require.NoError(t, err)
	assert.False(t, got)

	g := NewGate(s, WithClock(at(8, 0)), WithTolerance(-4))
	assert.Equal(t, 0, g.Tolerance())
	got, err = g.ShouldRunNow(context.Background())
	require.NoError(t, err)
	assert.True(t, got)

	assert.Equal(t, schema.DefaultTolerance, NewGate(s).Tolerance())
}

func TestGate_Evaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("matched with next slot", func(t *testing.T) {
		g := NewGate(seeded(t, 480, 1000), WithClock(at(8, 4)))
		d, err := g.Evaluate(ctx)
		require.NoError(t, err)
		assert.True(t, d.ShouldRun)
		assert.False(t, d.Created)
		assert.Equal(t, 484, d.Offset)
		assert.Equal(t, schema.DefaultTolerance, d.Tolerance)
		require.NotNil(t, d.MatchedSlot)
		assert.Equal(t, 480, *d.MatchedSlot)
		require.NotNil(t, d.NextSlot)
		assert.Equal(t, 1000, *d.NextSlot)
	})

	t.Run("after last slot", func(t *testing.T) {
		g := NewGate(seeded(t, 480, 1000), WithClock(at(23, 0)))
		d, err := g.Evaluate(ctx)
		require.NoError(t, err)
		assert.False(t, d.ShouldRun)
		assert.Nil(t, d.MatchedSlot)
		assert.Nil(t, d.NextSlot)
	})

	t.Run("creates on first call", func(t *testing.T) {
		g := NewGate(store.NewMemoryScheduleStore(), WithClock(at(12, 0)), WithRand(&scriptedRand{draws: []int{0, 15}}))
		d, err := g.Evaluate(ctx)
		require.NoError(t, err)
		assert.True(t, d.Created)
		assert.True(t, d.ShouldRun, "single slot at 12:00")
		assert.Equal(t, "2025-06-15", d.Schedule.Date)
	})
}

func TestGate_MalformedScheduleIsNotRegenerated(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryScheduleStore()
	corrupt := []byte(`{"date":"2025-06-15","run_slots":[900,100],"total_runs":2,"interval_minutes":720}`)
	s.Set("2025-06-15", corrupt)

	g := NewGate(s, WithClock(at(8, 0)), WithRand(&scriptedRand{draws: []int{0, 15}}))
	_, err := g.ShouldRunNow(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedSchedule)

	stored, err := s.Get(ctx, "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, corrupt, stored, "the stored record is left untouched")
}

func TestGate_PeekNeverCreates(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryScheduleStore()
	g := NewGate(s)

	_, err := g.Peek(ctx, "2025-06-15")
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrNotFound)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestGate_StoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()

	t.Run("get fails", func(t *testing.T) {
		m := &store.MockScheduleStore{}
		m.On("Get", mock.Anything, "2025-06-15").Return(nil, errors.New("disk on fire"))

		_, err := NewGate(m, WithClock(at(8, 0))).ShouldRunNow(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk on fire")
		m.AssertNotCalled(t, "PutIfAbsent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("put fails", func(t *testing.T) {
		m := &store.MockScheduleStore{}
		m.On("Get", mock.Anything, "2025-06-15").Return(nil, contract.ErrNotFound)
		m.On("PutIfAbsent", mock.Anything, "2025-06-15", mock.Anything).Return(false, errors.New("read-only"))

		_, err := NewGate(m, WithClock(at(8, 0)), WithRand(&scriptedRand{draws: []int{0, 15}})).ShouldRunNow(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to store schedule")
		m.AssertExpectations(t)
	})
}

func TestGate_LosingCreateRaceReadsWinner(t *testing.T) {
	ctx := context.Background()
	winner, err := Encode(schema.DailySchedule{Date: "2025-06-15", RunSlots: []int{300}, TotalRuns: 1, IntervalMinutes: 1440})
	require.NoError(t, err)

	m := &store.MockScheduleStore{}
	m.On("Get", mock.Anything, "2025-06-15").Return(nil, contract.ErrNotFound).Once()
	m.On("PutIfAbsent", mock.Anything, "2025-06-15", mock.Anything).Return(false, nil).Once()
	m.On("Get", mock.Anything, "2025-06-15").Return(winner, nil).Once()

	g := NewGate(m, WithRand(&scriptedRand{draws: []int{0, 15}}))
	s, created, err := g.LoadOrCreate(ctx, "2025-06-15")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, []int{300}, s.RunSlots, "the stored schedule wins over the locally generated one")
	m.AssertExpectations(t)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name      string
		slots     []int
		offset    int
		tolerance int
		want      int
		ok        bool
	}{
		{"no slots", nil, 100, 10, 0, false},
		{"exact", []int{100}, 100, 10, 100, true},
		{"closest wins", []int{100, 115}, 112, 10, 115, true},
		{"tie goes to earlier", []int{100, 120}, 110, 10, 100, true},
		{"outside window", []int{100}, 111, 10, 0, false},
		{"zero tolerance", []int{100}, 100, 0, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(tt.slots, tt.offset, tt.tolerance)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextSlot(t *testing.T) {
	slot, ok := NextSlot([]int{100, 500}, 100)
	assert.True(t, ok)
	assert.Equal(t, 500, slot)

	slot, ok = NextSlot([]int{100, 500}, 0)
	assert.True(t, ok)
	assert.Equal(t, 100, slot)

	_, ok = NextSlot([]int{100, 500}, 500)
	assert.False(t, ok)
}

func TestDecide(t *testing.T) {
	s := schema.DailySchedule{Date: "2025-06-15", RunSlots: []int{100, 500}, TotalRuns: 2, IntervalMinutes: 720}

	d := Decide(s, 95, 10)
	assert.True(t, d.ShouldRun)
	require.NotNil(t, d.MatchedSlot)
	assert.Equal(t, 100, *d.MatchedSlot)
	require.NotNil(t, d.NextSlot)
	assert.Equal(t, 100, *d.NextSlot)
	assert.Equal(t, s, d.Schedule)

	d = Decide(s, 300, 10)
	assert.False(t, d.ShouldRun)
	assert.Nil(t, d.MatchedSlot)
	require.NotNil(t, d.NextSlot)
	assert.Equal(t, 500, *d.NextSlot)
}
