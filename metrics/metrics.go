// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus collectors shared by the pooled and
// ephemeral backends. Every Metrics owns its registry, so several instances
// (one per test, say) never collide on registration.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "parmatrix"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	TasksDispatched *prometheus.CounterVec   // by backend, op
	TasksFailed     *prometheus.CounterVec   // by backend, op
	TaskLatency     *prometheus.HistogramVec // by backend
	WorkersAlive    *prometheus.GaugeVec     // by backend
	WorkersBusy     *prometheus.GaugeVec     // by backend
	WorkerDeaths    prometheus.Counter
	WorkerEvictions prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		TasksDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tasks_dispatched_total",
			Help:      "Task units handed to an executor.",
		}, []string{"backend", "op"}),
		TasksFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tasks_failed_total",
			Help:      "Task units that produced no usable reply.",
		}, []string{"backend", "op"}),
		TaskLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "task_latency_seconds",
			Help:      "Round trip of one task unit, dispatch to reply.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"backend"}),
		WorkersAlive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "workers_alive",
			Help:      "Executors currently alive.",
		}, []string{"backend"}),
		WorkersBusy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "workers_busy",
			Help:      "Executors currently holding a task unit.",
		}, []string{"backend"}),
		WorkerDeaths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "worker_deaths_total",
			Help:      "Pool workers whose loop ended unexpectedly.",
		}),
		WorkerEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "worker_evictions_total",
			Help:      "Pool workers retired by idle age-out.",
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.TasksDispatched,
		m.TasksFailed,
		m.TaskLatency,
		m.WorkersAlive,
		m.WorkersBusy,
		m.WorkerDeaths,
		m.WorkerEvictions,
	)

	return m
}

// Registry exposes the underlying registry, e.g. for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTask records one completed round trip.
func (m *Metrics) ObserveTask(backend, op string, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.TasksDispatched.WithLabelValues(backend, op).Inc()
	m.TaskLatency.WithLabelValues(backend).Observe(d.Seconds())
	if failed {
		m.TasksFailed.WithLabelValues(backend, op).Inc()
	}
}

// SetWorkers publishes the current alive and busy counts for a backend.
func (m *Metrics) SetWorkers(backend string, alive, busy int) {
	if m == nil {
		return
	}
	m.WorkersAlive.WithLabelValues(backend).Set(float64(alive))
	m.WorkersBusy.WithLabelValues(backend).Set(float64(busy))
}

// WorkerDied counts one unexpected executor termination.
func (m *Metrics) WorkerDied() {
	if m == nil {
		return
	}
	m.WorkerDeaths.Inc()
}

// WorkersEvicted counts n idle evictions.
func (m *Metrics) WorkersEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.WorkerEvictions.Add(float64(n))
}
