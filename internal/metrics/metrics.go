// Package metrics exports the outcome of a run as a prometheus textfile.
package metrics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/8ria/pulse/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

const (
	contributionsMetric = "pulse_contributions_total"
	streakMetric        = "pulse_streak_days"
)

// RunMetrics holds the gauges describing one invocation.
type RunMetrics struct {
	registry *prometheus.Registry

	lastRun       prometheus.Gauge
	duration      prometheus.Gauge
	outcome       *prometheus.GaugeVec
	contributions prometheus.Gauge
	streak        prometheus.Gauge
	slots         prometheus.Gauge
	totalRuns     prometheus.Gauge

	// hasSnapshot is false when the last observed run computed no stats.
	hasSnapshot bool
}

// NewRunMetrics creates the gauges on a private registry.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_last_run_timestamp_seconds",
			Help: "Unix time at which the last run finished",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_last_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		outcome: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pulse_run_outcome",
			Help: "1 for the outcome of the last run, 0 otherwise",
		}, []string{"outcome"}),
		contributions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: contributionsMetric,
			Help: "Contributions counted in the stats window",
		}),
		streak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: streakMetric,
			Help: "Current contribution streak in days",
		}),
		slots: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_schedule_slots",
			Help: "Distinct run slots in today's schedule",
		}),
		totalRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_schedule_total_runs",
			Help: "Run count drawn for today's schedule",
		}),
	}
	m.registry.MustRegister(m.lastRun, m.duration, m.outcome, m.contributions, m.streak, m.slots, m.totalRuns)
	return m
}

// Observe records a finished run. snap may be nil when the pipeline did not get that far.
func (m *RunMetrics) Observe(outcome schema.RunOutcome, started, finished time.Time, decision schema.ScheduleDecision, snap *schema.StatsSnapshot) {
	m.lastRun.Set(float64(finished.Unix()))
	m.duration.Set(finished.Sub(started).Seconds())
	for _, o := range schema.AllRunOutcomes {
		v := 0.0
		if o == outcome {
			v = 1
		}
		m.outcome.WithLabelValues(string(o)).Set(v)
	}
	m.slots.Set(float64(len(decision.Schedule.RunSlots)))
	m.totalRuns.Set(float64(decision.Schedule.TotalRuns))
	m.hasSnapshot = snap != nil
	if snap != nil {
		m.contributions.Set(float64(snap.Total))
		m.streak.Set(float64(snap.Streak))
	}
}

// Registry exposes the underlying gatherer.
func (m *RunMetrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the gauges in the node_exporter textfile format.
// Runs without a snapshot keep the contribution and streak values of the previous file.
func (m *RunMetrics) WriteTextfile(path string) error {
	if !m.hasSnapshot {
		if err := m.carryOver(path); err != nil {
			return err
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// carryOver loads the stats gauges from an existing textfile. A missing file is not an error.
func (m *RunMetrics) carryOver(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read previous metrics from %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(f)
	if err != nil {
		return fmt.Errorf("failed to parse previous metrics in %s: %w", path, err)
	}
	for name, g := range map[string]prometheus.Gauge{contributionsMetric: m.contributions, streakMetric: m.streak} {
		fam, ok := families[name]
		if !ok || len(fam.GetMetric()) == 0 {
			continue
		}
		g.Set(fam.GetMetric()[0].GetGauge().GetValue())
	}
	return nil
}
