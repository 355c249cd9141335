// Package metrics provides Prometheus metrics collection for catalogctl.
package metrics

import (
	"strconv"
	"time"

	"github.com/artpar/catalogctl/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalogctl"

// Collector holds all Prometheus metrics for catalogctl.
type Collector struct {
	// Client metrics
	ClientRequests *prometheus.CounterVec
	ClientDuration *prometheus.HistogramVec
	ClientErrors   *prometheus.CounterVec

	// Scenario metrics
	LifecycleOps *prometheus.CounterVec
	UISteps      *prometheus.CounterVec

	// Stub server metrics
	StubRequests   *prometheus.CounterVec
	StubDuration   *prometheus.HistogramVec
	StubEntities   *prometheus.GaugeVec
	StubAuthDenied prometheus.Counter

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return build(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return build(promauto.With(reg))
}

func build(factory promauto.Factory) *Collector {
	return &Collector{
		ClientRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_requests_total",
				Help:      "Total catalog API requests by operation and status",
			},
			[]string{"op", "status"},
		),
		ClientDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "client_request_duration_seconds",
				Help:      "Catalog API request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"op"},
		),
		ClientErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_errors_total",
				Help:      "Catalog API requests that failed before a response was read",
			},
			[]string{"op"},
		),
		LifecycleOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_operations_total",
				Help:      "Entity lifecycle operations by kind, operation and outcome",
			},
			[]string{"kind", "op", "outcome"},
		),
		UISteps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ui_steps_total",
				Help:      "UI workflow steps by workflow, step and outcome",
			},
			[]string{"workflow", "step", "outcome"},
		),
		StubRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stub_requests_total",
				Help:      "Requests served by the stub catalog",
			},
			[]string{"method", "route", "status"},
		),
		StubDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stub_request_duration_seconds",
				Help:      "Stub catalog request duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"method", "route"},
		),
		StubEntities: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stub_resources",
				Help:      "Resources currently held by the stub catalog",
			},
			[]string{"type"},
		),
		StubAuthDenied: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stub_auth_denied_total",
				Help:      "Stub requests rejected for missing or invalid tokens",
			},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// ObserveClient records one catalog API call. A nil collector is a no-op.
func (c *Collector) ObserveClient(op string, status int, took time.Duration, err error) {
	if c == nil {
		return
	}
	c.ClientDuration.WithLabelValues(op).Observe(took.Seconds())
	if status == 0 && err != nil {
		c.ClientErrors.WithLabelValues(op).Inc()
		return
	}
	c.ClientRequests.WithLabelValues(op, strconv.Itoa(status)).Inc()
}

// ObserveLifecycle records one entity lifecycle operation.
func (c *Collector) ObserveLifecycle(kind, op string, err error) {
	if c == nil {
		return
	}
	c.LifecycleOps.WithLabelValues(kind, op, outcome(err)).Inc()
}

// ObserveStep records one UI workflow step.
func (c *Collector) ObserveStep(workflow, step string, err error) {
	if c == nil {
		return
	}
	c.UISteps.WithLabelValues(workflow, step, outcome(err)).Inc()
}

// ConfigReloaded records a config reload attempt.
func (c *Collector) ConfigReloaded(at time.Time, err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.ConfigReloadErrors.Inc()
		return
	}
	c.ConfigReloads.Inc()
	c.ConfigLastReload.Set(float64(at.Unix()))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var _ ports.Recorder = (*Collector)(nil)
