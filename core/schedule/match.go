package schedule

import "github.com/8ria/pulse/schema"

// Match returns the slot closest to offset if it lies within tolerance, inclusive.
// On a tie the earlier slot wins.
func Match(slots []int, offset, tolerance int) (int, bool) {
	best, found := 0, false
	for _, slot := range slots {
		dist := abs(slot - offset)
		if dist > tolerance {
			continue
		}
		if !found || dist < abs(best-offset) {
			best, found = slot, true
		}
	}
	return best, found
}

// NextSlot returns the first slot strictly after offset, if there is one today.
func NextSlot(slots []int, offset int) (int, bool) {
	for _, slot := range slots {
		if slot > offset {
			return slot, true
		}
	}
	return 0, false
}

// Decide evaluates offset against an already loaded schedule.
func Decide(s schema.DailySchedule, offset, tolerance int) schema.ScheduleDecision {
	d := schema.ScheduleDecision{
		Schedule:  s,
		Offset:    offset,
		Tolerance: tolerance,
	}
	if slot, ok := Match(s.RunSlots, offset, tolerance); ok {
		d.ShouldRun = true
		d.MatchedSlot = &slot
	}
	if slot, ok := NextSlot(s.RunSlots, offset); ok {
		d.NextSlot = &slot
	}
	return d
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
