package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	apiErrorsTotal      *prometheus.CounterVec
	plansBuiltTotal     *prometheus.CounterVec
	plansCommittedTotal prometheus.Counter
	plansResetTotal     prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peergrade_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "peergrade_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peergrade_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		plansBuiltTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peergrade_plans_built_total",
			Help: "Total number of preview plans built, by pairing mode.",
		}, []string{"mode"})

		plansCommittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peergrade_plans_committed_total",
			Help: "Total number of review plans committed.",
		})

		plansResetTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peergrade_assignments_reset_total",
			Help: "Total number of review assignments reset.",
		})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			plansBuiltTotal, plansCommittedTotal, plansResetTotal)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// PlansBuilt exposes the counter for built preview plans.
func PlansBuilt() *prometheus.CounterVec {
	RegisterMetrics()
	return plansBuiltTotal
}

// PlansCommitted exposes the counter for committed plans.
func PlansCommitted() prometheus.Counter {
	RegisterMetrics()
	return plansCommittedTotal
}

// PlansReset exposes the counter for assignment resets.
func PlansReset() prometheus.Counter {
	RegisterMetrics()
	return plansResetTotal
}
