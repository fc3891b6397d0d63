package schema

import "time"

// RunResult carries the completion data of a run into the history store.
type RunResult struct {
	FinishedAt  time.Time
	Outcome     RunOutcome
	SlotMatched *int
	Total       int
	Streak      int
	BlogTitle   string
	Error       string
}

// RunRecord represents a row from the pulse_runs table.
type RunRecord struct {
	RunID        string     `json:"run_id" yaml:"run_id"`
	StartedAt    time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	DurationMs   *int64     `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	ScheduleDate string     `json:"schedule_date" yaml:"schedule_date"`
	Outcome      *string    `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	SlotMatched  *int32     `json:"slot_matched,omitempty" yaml:"slot_matched,omitempty"`
	Total        *int32     `json:"total,omitempty" yaml:"total,omitempty"`
	Streak       *int32     `json:"streak,omitempty" yaml:"streak,omitempty"`
	BlogTitle    *string    `json:"blog_title,omitempty" yaml:"blog_title,omitempty"`
	ErrorMessage *string    `json:"error,omitempty" yaml:"error,omitempty"`
}
