package schedule

import (
	"math/rand/v2"
	"testing"

	"github.com/8ria/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand replays fixed draws so schedules are exact.
type scriptedRand struct {
	draws []int
	i     int
}

func (r *scriptedRand) IntN(n int) int {
	v := r.draws[r.i%len(r.draws)]
	r.i++
	if v >= n {
		panic("scripted draw out of range")
	}
	return v
}

func TestGenerateSchedule_Exact(t *testing.T) {
	tests := []struct {
		name     string
		draws    []int
		expected schema.DailySchedule
	}{
		{
			name:  "single run without jitter",
			draws: []int{0, 15}, // total 1, jitter 0
			expected: schema.DailySchedule{
				Date: "2025-06-15", RunSlots: []int{720}, TotalRuns: 1, IntervalMinutes: 1440,
			},
		},
		{
			name:  "four runs with mixed jitter",
			draws: []int{3, 0, 30, 15, 5}, // total 4, jitter -15 +15 0 -10
			expected: schema.DailySchedule{
				Date: "2025-06-15", RunSlots: []int{165, 555, 900, 1250}, TotalRuns: 4, IntervalMinutes: 360,
			},
		},
		{
			name:  "thirty runs at extreme jitter",
			draws: append([]int{29, 0}, repeat(15, 28, 30)...), // first slot 24-15, last slot 1416+15
			expected: func() schema.DailySchedule {
				slots := []int{9}
				for i := 1; i < 29; i++ {
					slots = append(slots, i*48+24)
				}
				slots = append(slots, 1431)
				return schema.DailySchedule{Date: "2025-06-15", RunSlots: slots, TotalRuns: 30, IntervalMinutes: 48}
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateSchedule("2025-06-15", &scriptedRand{draws: tt.draws})
			assert.Equal(t, tt.expected, got)
		})
	}
}

// repeat returns v n times followed by tail.
func repeat(v, n int, tail ...int) []int {
	out := make([]int, 0, n+len(tail))
	for range n {
		out = append(out, v)
	}
	return append(out, tail...)
}

func TestGenerateSchedule_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	seenTotals := map[int]bool{}

	for range 5000 {
		s := GenerateSchedule("2025-06-15", rng)
		seenTotals[s.TotalRuns] = true

		require.GreaterOrEqual(t, s.TotalRuns, schema.MinRunsPerDay)
		require.LessOrEqual(t, s.TotalRuns, schema.MaxRunsPerDay)
		require.Equal(t, schema.MinutesPerDay/s.TotalRuns, s.IntervalMinutes)
		require.NotEmpty(t, s.RunSlots)
		require.LessOrEqual(t, len(s.RunSlots), s.TotalRuns)

		for i, slot := range s.RunSlots {
			require.GreaterOrEqual(t, slot, 0)
			require.Less(t, slot, schema.MinutesPerDay)
			if i > 0 {
				require.Greater(t, slot, s.RunSlots[i-1], "sorted and duplicate-free")
			}
		}
		require.NoError(t, Validate(s, "2025-06-15"), "generated schedules always pass validation")
	}

	assert.Len(t, seenTotals, 30, "every run count in [1,30] is reachable")
}

func TestGenerateSchedule_SpreadsAcrossDay(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		s := GenerateSchedule("2025-06-15", rng)
		if len(s.RunSlots) != s.TotalRuns {
			continue
		}
		for i, slot := range s.RunSlots {
			base := i*s.IntervalMinutes + s.IntervalMinutes/2
			assert.InDelta(t, base, slot, schema.JitterMinutes, "slot %d of %d", i, s.TotalRuns)
		}
	}
}

func TestClampMinute(t *testing.T) {
	assert.Equal(t, 0, clampMinute(-12))
	assert.Equal(t, 0, clampMinute(0))
	assert.Equal(t, 700, clampMinute(700))
	assert.Equal(t, 1439, clampMinute(1439))
	assert.Equal(t, 1439, clampMinute(1454))
}

func TestDefaultRand(t *testing.T) {
	r := DefaultRand()
	for range 100 {
		v := r.IntN(5)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 5)
	}
}
