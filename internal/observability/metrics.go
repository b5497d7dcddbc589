// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package observability collects shoplist metrics for a single CLI run and
// writes them in the node_exporter textfile format.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/holomush/shoplist/internal/auth"
	"github.com/holomush/shoplist/internal/item"
)

// Recorder owns the metrics registry of one process.
type Recorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.GaugeVec
	lastRun  *prometheus.GaugeVec
}

// NewRecorder creates a registry holding the command metrics and the auth
// and item package metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shoplist_command_runs_total",
				Help: "Total number of CLI command runs by command and status",
			},
			[]string{"command", "status"},
		),
		duration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shoplist_command_duration_seconds",
				Help: "Duration of the last run of each command",
			},
			[]string{"command"},
		),
		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shoplist_command_last_run_timestamp_seconds",
				Help: "Unix time the command last finished",
			},
			[]string{"command"},
		),
	}

	r.registry.MustRegister(r.runs, r.duration, r.lastRun)
	auth.RegisterMetrics(r.registry)
	item.RegisterMetrics(r.registry)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveCommand records the end of a command run.
func (r *Recorder) ObserveCommand(command string, started, finished time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.runs.WithLabelValues(command, status).Inc()
	r.duration.WithLabelValues(command).Set(finished.Sub(started).Seconds())
	r.lastRun.WithLabelValues(command).Set(float64(finished.Unix()))
}

// WriteTextfile writes every gathered metric to path. An empty path is a no-op.
// The file is replaced atomically so a collector never reads a partial file.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return oops.Code("METRICS_WRITE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
