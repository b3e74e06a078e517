// Package metrics exposes the application's Prometheus collectors on a
// dedicated registry so the default Go collectors don't leak in.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frugal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "frugal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	goalsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "frugal",
			Subsystem: "goals",
			Name:      "expired_total",
			Help:      "Total number of goals deactivated by the expiry sweep.",
		},
	)

	expirySweeps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frugal",
			Subsystem: "goals",
			Name:      "expiry_sweeps_total",
			Help:      "Total number of expiry sweep runs.",
		},
		[]string{"status"},
	)

	expensesSynced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frugal",
			Subsystem: "sync",
			Name:      "expenses_total",
			Help:      "Total number of expense sync attempts against the ledger.",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		goalsExpired,
		expirySweeps,
		expensesSynced,
	)
}

// Handler serves the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveRequest(method, path, status string, seconds float64) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}

func RecordExpirySweep(expired int64, err error) {
	if err != nil {
		expirySweeps.WithLabelValues("error").Inc()
		return
	}
	expirySweeps.WithLabelValues("ok").Inc()
	goalsExpired.Add(float64(expired))
}

func RecordExpenseSync(err error) {
	if err != nil {
		expensesSynced.WithLabelValues("error").Inc()
		return
	}
	expensesSynced.WithLabelValues("ok").Inc()
}
