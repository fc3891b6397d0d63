// Package schema has models and constants shared by all parts of pulse.
package schema

import "time"

// DailySchedule is the set of run slots chosen for one calendar day.
// It is generated once per date and never modified afterwards.
type DailySchedule struct {
	Date            string `json:"date" yaml:"date"`                         // YYYY-MM-DD, also the store key
	RunSlots        []int  `json:"run_slots" yaml:"run_slots"`               // Minutes since midnight, sorted and unique
	TotalRuns       int    `json:"total_runs" yaml:"total_runs"`             // Drawn run count, may exceed len(RunSlots) after dedup
	IntervalMinutes int    `json:"interval_minutes" yaml:"interval_minutes"` // 1440 / TotalRuns
}

// ContributionDay is the activity count of a single calendar day.
type ContributionDay struct {
	Date  string `json:"date" yaml:"date"`
	Count int    `json:"count" yaml:"count"`
}

// ContributionSummary is what the contribution API returns for a window.
type ContributionSummary struct {
	Login string            `json:"login" yaml:"login"`
	From  time.Time         `json:"from" yaml:"from"`
	To    time.Time         `json:"to" yaml:"to"`
	Total int               `json:"total" yaml:"total"`
	Days  []ContributionDay `json:"days,omitempty" yaml:"days,omitempty"`
}

// BlogPost is the newest post scraped from the blog homepage.
type BlogPost struct {
	Title    string `json:"title" yaml:"title"`
	URL      string `json:"url" yaml:"url"`
	Fallback bool   `json:"fallback" yaml:"fallback"` // True when the placeholder was used
}

// StatsSnapshot holds every value rendered into the README block.
type StatsSnapshot struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Timestamp   string    `json:"timestamp" yaml:"timestamp"`
	WindowDays  int       `json:"window_days" yaml:"window_days"`
	Since       string    `json:"since,omitempty" yaml:"since,omitempty"`
	Total       int       `json:"total" yaml:"total"`
	Average     float64   `json:"average" yaml:"average"`
	DaysActive  int       `json:"days_active" yaml:"days_active"`
	Streak      int       `json:"streak" yaml:"streak"`
	BlogEnabled bool      `json:"blog_enabled" yaml:"blog_enabled"`
	Blog        BlogPost  `json:"blog" yaml:"blog"`
}

// ScheduleDecision explains the outcome of a single gate evaluation.
type ScheduleDecision struct {
	Schedule    DailySchedule `json:"schedule" yaml:"schedule"`
	Offset      int           `json:"offset" yaml:"offset"`
	Tolerance   int           `json:"tolerance" yaml:"tolerance"`
	Created     bool          `json:"created" yaml:"created"`
	ShouldRun   bool          `json:"should_run" yaml:"should_run"`
	MatchedSlot *int          `json:"matched_slot,omitempty" yaml:"matched_slot,omitempty"`
	NextSlot    *int          `json:"next_slot,omitempty" yaml:"next_slot,omitempty"`
}

// StreakReport is the output of the streak command.
type StreakReport struct {
	Today      string            `json:"today" yaml:"today"`
	Streak     int               `json:"streak" yaml:"streak"`
	Total      int               `json:"total" yaml:"total"`
	DaysActive int               `json:"days_active" yaml:"days_active"`
	Days       []ContributionDay `json:"days" yaml:"days"`
}

// UpdateResult summarizes one pass of the update pipeline.
type UpdateResult struct {
	RunID    string           `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Outcome  RunOutcome       `json:"outcome" yaml:"outcome"`
	Decision ScheduleDecision `json:"decision" yaml:"decision"`
	Snapshot *StatsSnapshot   `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	Block    string           `json:"block,omitempty" yaml:"block,omitempty"`
}
