// Package telemetry records export run metrics in the Prometheus textfile
// format, for node_exporter's textfile collector on cron-driven hosts.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunStats is the outcome of one export run.
type RunStats struct {
	Found    int
	Copied   int
	Missing  int
	Duration time.Duration
	Finished time.Time
	Success  bool
}

// Recorder owns a private registry so repeated runs in one process never
// collide with the default registry.
type Recorder struct {
	registry *prometheus.Registry

	found    prometheus.Gauge
	copied   prometheus.Gauge
	missing  prometheus.Gauge
	duration prometheus.Gauge
	lastRun  prometheus.Gauge
	success  prometheus.Gauge
}

// NewRecorder registers the run gauges.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		found:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "chataudio_attachments_found", Help: "Audio attachments matched by the last run"}),
		copied:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "chataudio_attachments_copied", Help: "Attachments copied by the last run"}),
		missing:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "chataudio_attachments_missing", Help: "Attachments whose source file was missing in the last run"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{Name: "chataudio_run_duration_seconds", Help: "Wall time of the last run"}),
		lastRun:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "chataudio_last_run_timestamp_seconds", Help: "Unix time the last run finished"}),
		success:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "chataudio_last_run_success", Help: "1 if the last run succeeded, 0 otherwise"}),
	}
	r.registry.MustRegister(r.found, r.copied, r.missing, r.duration, r.lastRun, r.success)
	return r
}

// Observe sets every gauge from stats.
func (r *Recorder) Observe(stats RunStats) {
	r.found.Set(float64(stats.Found))
	r.copied.Set(float64(stats.Copied))
	r.missing.Set(float64(stats.Missing))
	r.duration.Set(stats.Duration.Seconds())
	finished := stats.Finished
	if finished.IsZero() {
		finished = time.Now()
	}
	r.lastRun.Set(float64(finished.Unix()))
	if stats.Success {
		r.success.Set(1)
	} else {
		r.success.Set(0)
	}
}

// WriteTextfile writes the current gauges to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Gatherer exposes the registry for callers that serve or inspect metrics.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}
