package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/8ria/pulse/schema"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gauge returns the value of the named gauge, matching label outcome when set.
func gauge(t *testing.T, m *RunMetrics, name, outcome string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if outcome == "" || hasLabel(metric, "outcome", outcome) {
				return metric.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("metric %s{outcome=%q} not found", name, outcome)
	return 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, l := range m.GetLabel() {
		if l.GetName() == name && l.GetValue() == value {
			return true
		}
	}
	return false
}

func TestRunMetrics_Observe(t *testing.T) {
	m := NewRunMetrics()
	started := time.Date(2025, time.June, 15, 8, 0, 0, 0, time.UTC)
	decision := schema.ScheduleDecision{Schedule: schema.DailySchedule{RunSlots: []int{100, 480, 900}, TotalRuns: 4}}
	snap := &schema.StatsSnapshot{Total: 142, Streak: 6}

	m.Observe(schema.OutcomeUpdated, started, started.Add(1500*time.Millisecond), decision, snap)

	assert.Equal(t, float64(started.Unix()+1), gauge(t, m, "pulse_last_run_timestamp_seconds", ""))
	assert.Equal(t, 1.5, gauge(t, m, "pulse_last_run_duration_seconds", ""))
	assert.Equal(t, 1.0, gauge(t, m, "pulse_run_outcome", "updated"))
	assert.Equal(t, 0.0, gauge(t, m, "pulse_run_outcome", "skipped"))
	assert.Equal(t, 142.0, gauge(t, m, "pulse_contributions_total", ""))
	assert.Equal(t, 6.0, gauge(t, m, "pulse_streak_days", ""))
	assert.Equal(t, 3.0, gauge(t, m, "pulse_schedule_slots", ""))
	assert.Equal(t, 4.0, gauge(t, m, "pulse_schedule_total_runs", ""))
}

func TestRunMetrics_EveryOutcomeIsExported(t *testing.T) {
	m := NewRunMetrics()
	now := time.Now()
	m.Observe(schema.OutcomeSkipped, now, now, schema.ScheduleDecision{}, nil)

	for _, o := range schema.AllRunOutcomes {
		want := 0.0
		if o == schema.OutcomeSkipped {
			want = 1
		}
		assert.Equal(t, want, gauge(t, m, "pulse_run_outcome", string(o)), string(o))
	}
	assert.Equal(t, 0.0, gauge(t, m, "pulse_contributions_total", ""))
}

func TestRunMetrics_WriteTextfile(t *testing.T) {
	m := NewRunMetrics()
	now := time.Now()
	m.Observe(schema.OutcomeFailed, now, now, schema.ScheduleDecision{}, nil)

	path := filepath.Join(t.TempDir(), "pulse.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# TYPE pulse_run_outcome gauge")
	assert.Contains(t, text, `pulse_run_outcome{outcome="failed"} 1`)
	assert.Contains(t, text, "pulse_last_run_timestamp_seconds")

	err = m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "pulse.prom"))
	assert.ErrorContains(t, err, "failed to write metrics")
}

func TestRunMetrics_WriteTextfileKeepsStatsWithoutSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulse.prom")
	now := time.Date(2025, time.June, 15, 9, 15, 0, 0, time.UTC)
	decision := schema.ScheduleDecision{Schedule: schema.DailySchedule{RunSlots: []int{555}, TotalRuns: 1}}

	updated := NewRunMetrics()
	updated.Observe(schema.OutcomeUpdated, now, now, decision, &schema.StatsSnapshot{Total: 123, Streak: 7})
	require.NoError(t, updated.WriteTextfile(path))

	skipped := NewRunMetrics()
	later := now.Add(5 * time.Minute)
	skipped.Observe(schema.OutcomeSkipped, later, later, decision, nil)
	require.NoError(t, skipped.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "pulse_contributions_total 123")
	assert.Contains(t, text, "pulse_streak_days 7")
	assert.Contains(t, text, `pulse_run_outcome{outcome="skipped"} 1`)
	assert.Equal(t, float64(later.Unix()), gauge(t, skipped, "pulse_last_run_timestamp_seconds", ""))
}

func TestRunMetrics_WriteTextfileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulse.prom")
	require.NoError(t, os.WriteFile(path, []byte("pulse_streak_days {{{\n"), 0o644))

	m := NewRunMetrics()
	now := time.Now()
	m.Observe(schema.OutcomeSkipped, now, now, schema.ScheduleDecision{}, nil)
	assert.ErrorContains(t, m.WriteTextfile(path), "failed to parse previous metrics")
}
