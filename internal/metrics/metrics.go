// Package metrics holds the Prometheus collectors of the service.  A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transition labels for marketplace_request_transitions_total.
const (
	TransitionSubmit  = "submit"
	TransitionAccept  = "accept"
	TransitionDecline = "decline"
	TransitionCancel  = "cancel"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	transitions         *prometheus.CounterVec
	submitConflicts     prometheus.Counter
	handoffFailures     prometheus.Counter
}

// New registers every collector with reg.  Passing a fresh
// prometheus.NewRegistry keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_request_transitions_total",
			Help: "Committed request state transitions.",
		}, []string{"transition"}),
		submitConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_submit_conflicts_total",
			Help: "Submits rejected because the resource was no longer available.",
		}),
		handoffFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_handoff_failures_total",
			Help: "Contact hand-off publishes that failed.",
		}),
	}
	reg.MustRegister(
		m.httpInFlight, m.httpRequestsTotal, m.httpRequestDuration,
		m.transitions, m.submitConflicts, m.handoffFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// HTTPStart marks a request in flight and returns the func that records
// its outcome.
func (m *Metrics) HTTPStart() func(method, route string, status int) {
	if m == nil {
		return func(string, string, int) {}
	}
	m.httpInFlight.Inc()
	start := time.Now()
	return func(method, route string, status int) {
		code := strconv.Itoa(status)
		m.httpRequestDuration.WithLabelValues(method, route, code).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(method, route, code).Inc()
		m.httpInFlight.Dec()
	}
}

// Transition counts a committed state transition.
func (m *Metrics) Transition(name string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(name).Inc()
}

// SubmitConflict counts a submit that lost the race for a resource.
func (m *Metrics) SubmitConflict() {
	if m == nil {
		return
	}
	m.submitConflicts.Inc()
}

// HandoffFailure counts a failed contact hand-off.
func (m *Metrics) HandoffFailure() {
	if m == nil {
		return
	}
	m.handoffFailures.Inc()
}
