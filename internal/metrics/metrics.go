// Package metrics provides Prometheus metrics for Atlassian API calls and tool invocations
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Atlassian REST calls
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// Tool surface
	ToolCallsTotal   *prometheus.CounterVec
	ToolCallDuration *prometheus.HistogramVec

	// Search outcomes
	PagesFetchedTotal   prometheus.Counter
	SnippetsFoundTotal  prometheus.Counter
	StrictFilteredTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics on reg.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketctx_api_requests_total",
				Help: "Total number of Atlassian API requests",
			},
			[]string{"service", "endpoint", "status"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticketctx_api_request_duration_seconds",
				Help:    "Duration of Atlassian API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "endpoint"},
		),
		ToolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketctx_tool_calls_total",
				Help: "Total number of tool invocations",
			},
			[]string{"tool", "outcome"},
		),
		ToolCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticketctx_tool_call_duration_seconds",
				Help:    "Duration of tool invocations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		PagesFetchedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ticketctx_pages_fetched_total",
			Help: "Total number of page bodies fetched",
		}),
		SnippetsFoundTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ticketctx_snippets_found_total",
			Help: "Total number of contributor snippets extracted",
		}),
		StrictFilteredTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ticketctx_strict_filtered_total",
			Help: "Search results dropped because the body did not contain the literal ticket id",
		}),
	}
}

// RecordAPIRequest records an Atlassian API call. A nil receiver is a no-op.
func (m *Metrics) RecordAPIRequest(service, endpoint, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.APIRequestsTotal.WithLabelValues(service, endpoint, status).Inc()
	m.APIRequestDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
}

// RecordToolCall records a tool invocation. A nil receiver is a no-op.
func (m *Metrics) RecordToolCall(tool, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
	m.ToolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// AddPagesFetched increments the fetched page counter
func (m *Metrics) AddPagesFetched(n int) {
	if m == nil {
		return
	}
	m.PagesFetchedTotal.Add(float64(n))
}

// AddSnippetsFound increments the snippet counter
func (m *Metrics) AddSnippetsFound(n int) {
	if m == nil {
		return
	}
	m.SnippetsFoundTotal.Add(float64(n))
}

// AddStrictFiltered increments the strict filter drop counter
func (m *Metrics) AddStrictFiltered(n int) {
	if m == nil {
		return
	}
	m.StrictFilteredTotal.Add(float64(n))
}
