package schema

import "time"

// ScheduleStoreStatus represents the status of the schedule store.
type ScheduleStoreStatus struct {
	Backend      string `json:"backend" yaml:"backend"`
	Location     string `json:"location" yaml:"location"`
	Connected    bool   `json:"connected" yaml:"connected"`
	TotalEntries int    `json:"total_entries" yaml:"total_entries"`
	OldestKey    string `json:"oldest_key,omitempty" yaml:"oldest_key,omitempty"`
	NewestKey    string `json:"newest_key,omitempty" yaml:"newest_key,omitempty"`
	SizeBytes    int64  `json:"size_bytes" yaml:"size_bytes"`
}

// HistoryStatus represents the status of the run history store.
type HistoryStatus struct {
	Backend       string         `json:"backend" yaml:"backend"`
	Connected     bool           `json:"connected" yaml:"connected"`
	TotalRuns     int            `json:"total_runs" yaml:"total_runs"`
	LastRunID     string         `json:"last_run_id,omitempty" yaml:"last_run_id,omitempty"`
	LastRunTime   time.Time      `json:"last_run_time" yaml:"last_run_time"`
	OldestRunTime time.Time      `json:"oldest_run_time" yaml:"oldest_run_time"`
	OutcomeCounts map[string]int `json:"outcome_counts" yaml:"outcome_counts"`
}
