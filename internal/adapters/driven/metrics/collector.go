// Package metrics instruments the status API and notification delivery
// with Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "streamtrack"

// Collector is a prometheus.Collector that collects metrics about stream
// status tracking.
type Collector struct {
	transitions   *prometheus.CounterVec
	publishErrors prometheus.Counter
	apiCalls      *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "run_state_transitions_total",
				Help:      "The number of stream run-state changes published.",
			}, []string{"run_state"},
		),
		publishErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "publish_errors_total",
				Help:      "The number of run-state changes that could not be delivered.",
			},
		),
		apiCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "status_api_calls_total",
				Help:      "The number of stream status API calls.",
			}, []string{"operation", "outcome"},
		),
		apiDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "status_api_call_duration_seconds",
				Help:      "The time taken by stream status API calls.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			}, []string{"operation"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.transitions.Describe(ch)
	c.publishErrors.Describe(ch)
	c.apiCalls.Describe(ch)
	c.apiDuration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.transitions.Collect(ch)
	c.publishErrors.Collect(ch)
	c.apiCalls.Collect(ch)
	c.apiDuration.Collect(ch)
}

// Registry returns a registry holding only this collector.
func (c *Collector) Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	return reg
}

// WriteTextfile writes the current values in the text exposition format,
// for the node exporter's textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.Registry())
}
