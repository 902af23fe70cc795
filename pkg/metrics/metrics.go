// Package metrics holds the Prometheus instruments of the booking server.
// The server owns its own registry, exposed on the admin HTTP surface, so
// tests can create isolated instances.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values.
const (
	LabelOp        = "op"
	LabelOutcome   = "outcome"
	LabelDirection = "direction"

	OutcomeOK     = "ok"
	OutcomeError  = "error"
	OutcomeReplay = "replay"

	DirectionRequest = "request"
	DirectionReply   = "reply"
)

// Metrics provides Prometheus metrics for the booking server.
type Metrics struct {
	RequestsTotal  *prometheus.CounterVec
	RequestSeconds *prometheus.HistogramVec
	DropsTotal     *prometheus.CounterVec
	HistoryHits    prometheus.Counter
	HistoryMisses  prometheus.Counter
	CallbacksTotal prometheus.Counter
	ActiveMonitors prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a metrics set registered on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "facilityd",
				Name:      "requests_total",
				Help:      "Requests processed, by operation and outcome",
			},
			[]string{LabelOp, LabelOutcome},
		),
		RequestSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "facilityd",
				Name:      "request_duration_seconds",
				Help:      "Time spent processing a request",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{LabelOp},
		),
		DropsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "facilityd",
				Name:      "simulated_drops_total",
				Help:      "Datagrams discarded by the loss simulation, by direction",
			},
			[]string{LabelDirection},
		),
		HistoryHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "facilityd",
				Subsystem: "history",
				Name:      "hits_total",
				Help:      "Retransmissions answered from the request-history cache",
			},
		),
		HistoryMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "facilityd",
				Subsystem: "history",
				Name:      "misses_total",
				Help:      "Requests executed because no cached reply existed",
			},
		),
		CallbacksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "facilityd",
				Name:      "monitor_callbacks_sent_total",
				Help:      "Availability callbacks handed to the socket",
			},
		),
		ActiveMonitors: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "facilityd",
				Name:      "active_monitors",
				Help:      "Unexpired monitor registrations",
			},
		),
	}
}

// Registry returns the registry the instruments are registered on, for the
// HTTP exposition handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
