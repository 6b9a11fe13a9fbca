// Package metrics exposes the bridge's Prometheus metrics: inbound HTTP
// traffic, action outcomes and session refresh outcomes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "authbridge"

// Registry holds all metrics for the application.
type Registry struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ActionsTotal   *prometheus.CounterVec
	ActionDuration *prometheus.HistogramVec

	SessionRefreshTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric initialized, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{registry: reg}
	f := promauto.With(reg)

	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Inbound HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	r.ActionsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Finished actions by outcome",
		},
		[]string{"action", "outcome"}, // ok, field_error, opaque
	)
	r.ActionDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Action latency including the REST call",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"action"},
	)

	r.SessionRefreshTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_refresh_total",
			Help:      "Access token refresh attempts by outcome",
		},
		[]string{"outcome"}, // refreshed, expired, unavailable
	)

	return r
}

// ObserveAction records one finished action.
func (r *Registry) ObserveAction(action, outcome string, elapsed time.Duration) {
	r.ActionsTotal.WithLabelValues(action, outcome).Inc()
	r.ActionDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// ObserveRefresh records one refresh attempt.
func (r *Registry) ObserveRefresh(outcome string) {
	r.SessionRefreshTotal.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records an inbound request with its duration.
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the exposition format for this registry only.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer returns the underlying registry, for tests and embedding.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
