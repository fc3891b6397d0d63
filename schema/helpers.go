package schema

import (
	"fmt"
	"time"
)

// DateOf returns the UTC calendar date of t as a store key.
func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// MinuteOfDay returns the UTC minutes since midnight of t.
func MinuteOfDay(t time.Time) int {
	u := t.UTC()
	return u.Hour()*60 + u.Minute()
}

// FormatOffset renders minutes since midnight as HH:MM.
func FormatOffset(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseOffset parses HH:MM into minutes since midnight.
func ParseOffset(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q (expected HH:MM): %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatSlots renders all slots as HH:MM strings.
func FormatSlots(slots []int) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = FormatOffset(s)
	}
	return out
}
