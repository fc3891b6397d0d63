package streak

import (
	"testing"
	"time"

	"github.com/8ria/pulse/schema"
	"github.com/stretchr/testify/assert"
)

var fixedToday = time.Date(2025, time.June, 15, 14, 30, 0, 0, time.UTC)

// ago builds a contribution day n days before fixedToday.
func ago(n, count int) schema.ContributionDay {
	return schema.ContributionDay{Date: fixedToday.AddDate(0, 0, -n).Format(schema.DateLayout), Count: count}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name     string
		days     []schema.ContributionDay
		expected int
	}{
		{
			name:     "today active breaks at zero",
			days:     []schema.ContributionDay{ago(0, 5), ago(1, 3), ago(2, 0)},
			expected: 2,
		},
		{
			name:     "grace day uses yesterday's run",
			days:     []schema.ContributionDay{ago(0, 0), ago(1, 4), ago(2, 2)},
			expected: 2,
		},
		{
			name:     "today absent counts as inactive",
			days:     []schema.ContributionDay{ago(1, 1), ago(2, 1), ago(3, 1), ago(4, 0)},
			expected: 3,
		},
		{
			name:     "all zero",
			days:     []schema.ContributionDay{ago(0, 0), ago(1, 0), ago(2, 0)},
			expected: 0,
		},
		{
			name:     "grace window exceeded",
			days:     []schema.ContributionDay{ago(0, 0), ago(1, 0), ago(2, 0), ago(3, 0), ago(4, 0), ago(5, 7)},
			expected: 0,
		},
		{
			name:     "empty input",
			days:     nil,
			expected: 0,
		},
		{
			name:     "unbroken run stops at earliest supplied date",
			days:     []schema.ContributionDay{ago(0, 1), ago(1, 1), ago(2, 1)},
			expected: 3,
		},
		{
			name:     "gap in calendar breaks the run",
			days:     []schema.ContributionDay{ago(0, 2), ago(1, 2), ago(3, 2)},
			expected: 2,
		},
		{
			name:     "unsorted input",
			days:     []schema.ContributionDay{ago(2, 9), ago(0, 1), ago(1, 1), ago(3, 0)},
			expected: 3,
		},
		{
			name:     "first duplicate wins",
			days:     []schema.ContributionDay{ago(0, 3), ago(1, 0), ago(1, 8), ago(2, 8)},
			expected: 1,
		},
		{
			name:     "malformed dates are ignored",
			days:     []schema.ContributionDay{ago(0, 2), {Date: "yesterday", Count: 5}, ago(1, 1)},
			expected: 2,
		},
		{
			name:     "negative counts are inactive",
			days:     []schema.ContributionDay{ago(0, -1), ago(1, -3)},
			expected: 0,
		},
		{
			name:     "future days do not contribute",
			days:     []schema.ContributionDay{{Date: fixedToday.AddDate(0, 0, 1).Format(schema.DateLayout), Count: 4}, ago(0, 1)},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Calculate(tt.days, fixedToday))
		})
	}
}

func TestCalculateIgnoresTimeOfDayAndZone(t *testing.T) {
	days := []schema.ContributionDay{ago(0, 1), ago(1, 1)}
	late := time.Date(2025, time.June, 15, 23, 59, 59, 0, time.UTC)
	// 01:00 in UTC+2 on the 16th is still the 15th in UTC.
	zoned := time.Date(2025, time.June, 16, 1, 0, 0, 0, time.FixedZone("UTC+2", 2*3600))

	assert.Equal(t, 2, Calculate(days, late))
	assert.Equal(t, 2, Calculate(days, zoned))
}

func TestActiveDays(t *testing.T) {
	days := []schema.ContributionDay{ago(0, 1), ago(1, 0), ago(2, 3), ago(2, 0), {Date: "bad", Count: 9}}
	assert.Equal(t, 2, ActiveDays(days))
	assert.Equal(t, 0, ActiveDays(nil))
}
