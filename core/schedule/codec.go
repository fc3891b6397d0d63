package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/8ria/pulse/schema"
)

// ErrMalformedSchedule is returned when a stored schedule cannot be trusted.
// The gate never regenerates over such a record.
var ErrMalformedSchedule = errors.New("malformed schedule")

// wireSchedule uses pointers so that missing keys can be told apart from zero values.
type wireSchedule struct {
	Date            *string `json:"date"`
	RunSlots        *[]int  `json:"run_slots"`
	TotalRuns       *int    `json:"total_runs"`
	IntervalMinutes *int    `json:"interval_minutes"`
}

// Encode serializes a schedule into its stored JSON form.
func Encode(s schema.DailySchedule) ([]byte, error) {
	if s.RunSlots == nil {
		s.RunSlots = []int{}
	}
	return json.MarshalIndent(s, "", "  ")
}

// Decode parses a stored schedule and checks its shape and invariants.
// Unknown keys are ignored and the generation limits are not re-checked, so a day
// stored by another version of the generator stays authoritative.
// expectedDate is the key it was stored under; an empty value skips the date check.
func Decode(data []byte, expectedDate string) (schema.DailySchedule, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var w wireSchedule
	if err := dec.Decode(&w); err != nil {
		return schema.DailySchedule{}, fmt.Errorf("%w: %v", ErrMalformedSchedule, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return schema.DailySchedule{}, fmt.Errorf("%w: trailing data after schedule object", ErrMalformedSchedule)
	}

	switch {
	case w.Date == nil:
		return schema.DailySchedule{}, missingField("date")
	case w.RunSlots == nil:
		return schema.DailySchedule{}, missingField("run_slots")
	case w.TotalRuns == nil:
		return schema.DailySchedule{}, missingField("total_runs")
	case w.IntervalMinutes == nil:
		return schema.DailySchedule{}, missingField("interval_minutes")
	}

	s := schema.DailySchedule{
		Date:            *w.Date,
		RunSlots:        *w.RunSlots,
		TotalRuns:       *w.TotalRuns,
		IntervalMinutes: *w.IntervalMinutes,
	}
	if err := Validate(s, expectedDate); err != nil {
		return schema.DailySchedule{}, err
	}
	return s, nil
}

// Validate checks the invariants every persisted schedule must satisfy.
// interval_minutes is informational and only has to be non-negative.
func Validate(s schema.DailySchedule, expectedDate string) error {
	if _, err := time.Parse(schema.DateLayout, s.Date); err != nil {
		return fmt.Errorf("%w: invalid date %q", ErrMalformedSchedule, s.Date)
	}
	if expectedDate != "" && s.Date != expectedDate {
		return fmt.Errorf("%w: stored under %s but dated %s", ErrMalformedSchedule, expectedDate, s.Date)
	}
	if s.TotalRuns < 1 {
		return fmt.Errorf("%w: total_runs %d is not positive", ErrMalformedSchedule, s.TotalRuns)
	}
	if s.IntervalMinutes < 0 {
		return fmt.Errorf("%w: interval_minutes %d is negative", ErrMalformedSchedule, s.IntervalMinutes)
	}
	if len(s.RunSlots) == 0 {
		return fmt.Errorf("%w: run_slots is empty", ErrMalformedSchedule)
	}
	if len(s.RunSlots) > s.TotalRuns {
		return fmt.Errorf("%w: %d slots exceed total_runs %d", ErrMalformedSchedule, len(s.RunSlots), s.TotalRuns)
	}
	for i, slot := range s.RunSlots {
		if slot < 0 || slot >= schema.MinutesPerDay {
			return fmt.Errorf("%w: slot %d out of range", ErrMalformedSchedule, slot)
		}
		if i > 0 && slot <= s.RunSlots[i-1] {
			return fmt.Errorf("%w: slots not strictly ascending at index %d", ErrMalformedSchedule, i)
		}
	}
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing field %q", ErrMalformedSchedule, name)
}
