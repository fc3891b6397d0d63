// Package schedule decides whether the updater should run at a given instant.
//
// Each calendar day (UTC) gets one randomly generated set of run slots. The set is
// persisted the first time the day is seen and read back unchanged for the rest of
// the day, so the random draw happens at most once per date and store.
package schedule

import (
	"math/rand/v2"
	"slices"

	"github.com/8ria/pulse/schema"
)

// RandSource is the randomness used to draw a schedule.
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

// globalRand draws from the auto-seeded math/rand/v2 top-level source.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand returns the process-wide random source.
func DefaultRand() RandSource {
	return globalRand{}
}

// GenerateSchedule draws the run slots for date.
//
// TotalRuns is uniform in [1, 30]. Slot i is placed in the middle of the i-th
// interval of 1440/TotalRuns minutes, moved by an independent jitter in [-15, +15],
// clamped to [0, 1439], then the slots are sorted and duplicates collapsed.
// TotalRuns keeps the drawn value even when collapsing leaves fewer slots.
func GenerateSchedule(date string, rng RandSource) schema.DailySchedule {
	total := schema.MinRunsPerDay + rng.IntN(schema.MaxRunsPerDay-schema.MinRunsPerDay+1)
	interval := schema.MinutesPerDay / total

	slots := make([]int, 0, total)
	for i := range total {
		base := i*interval + interval/2
		jitter := rng.IntN(2*schema.JitterMinutes+1) - schema.JitterMinutes
		slots = append(slots, clampMinute(base+jitter))
	}
	slices.Sort(slots)
	slots = slices.Compact(slots)

	return schema.DailySchedule{
		Date:            date,
		RunSlots:        slots,
		TotalRuns:       total,
		IntervalMinutes: interval,
	}
}

func clampMinute(m int) int {
	return min(max(m, 0), schema.MinutesPerDay-1)
}
