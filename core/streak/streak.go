// Package streak derives the current activity streak from a contribution calendar.
package streak

import (
	"time"

	"github.com/8ria/pulse/schema"
)

// Calculate returns the number of consecutive active days ending at today.
// When today has no recorded activity yet, the run ending yesterday still counts.
//
// Entries with unparsable dates are ignored. When a date appears more than once,
// the first occurrence in the input wins. The walk never goes past the earliest
// supplied date, so the result is bounded by the calendar that was passed in.
func Calculate(days []schema.ContributionDay, today time.Time) int {
	counts, earliest, ok := index(days)
	if !ok {
		return 0
	}

	day := truncateDay(today)
	if n := walk(counts, day, earliest); n > 0 {
		return n
	}

	// Grace day: today's data may not have been recorded yet.
	return walk(counts, day.AddDate(0, 0, -1), earliest)
}

// ActiveDays returns how many distinct days in the calendar have activity.
func ActiveDays(days []schema.ContributionDay) int {
	counts, _, ok := index(days)
	if !ok {
		return 0
	}
	active := 0
	for _, c := range counts {
		if c > 0 {
			active++
		}
	}
	return active
}

// walk counts active days backwards from start, stopping at the first gap or at earliest.
func walk(counts map[time.Time]int, start, earliest time.Time) int {
	n := 0
	for d := start; !d.Before(earliest); d = d.AddDate(0, 0, -1) {
		if counts[d] <= 0 {
			break
		}
		n++
	}
	return n
}

// index builds a date to count lookup and finds the earliest valid date.
func index(days []schema.ContributionDay) (map[time.Time]int, time.Time, bool) {
	counts := make(map[time.Time]int, len(days))
	var earliest time.Time
	found := false
	for _, d := range days {
		t, err := time.Parse(schema.DateLayout, d.Date)
		if err != nil {
			continue
		}
		if _, seen := counts[t]; seen {
			continue
		}
		counts[t] = d.Count
		if !found || t.Before(earliest) {
			earliest = t
			found = true
		}
	}
	return counts, earliest, found
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
