// Package metrics provides Prometheus instrumentation for the storefront
// client: outgoing API calls, order polling, store operations and
// notifications.
//
// Expose it from a long-running command:
//
//	r.Handle("/metrics", metrics.Handler())
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestDuration tracks backend call latency per endpoint.
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend API calls in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIRequestTotal counts backend calls; status "error" marks transport failures.
	APIRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of backend API calls.",
		},
		[]string{"method", "endpoint", "status"},
	)

	// PollTicks counts order watcher refreshes by outcome.
	PollTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "poll_ticks_total",
			Help:      "Order list refreshes performed by the watcher.",
		},
		[]string{"result"}, // "ok" | "error"
	)

	// WatchersActive is the number of running order watchers.
	WatchersActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Subsystem: "orders",
		Name:      "watchers_active",
		Help:      "Order watchers currently running.",
	})

	// StoreOps counts persistent store operations per driver.
	StoreOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Persistent store operations.",
		},
		[]string{"driver", "op", "result"},
	)

	// Notifications counts toasts shown by type.
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "notify",
			Name:      "shown_total",
			Help:      "Notifications shown, by type.",
		},
		[]string{"type"},
	)

	// CartItems mirrors the header badge count.
	CartItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Subsystem: "cart",
		Name:      "items",
		Help:      "Sum of line item quantities in the cart.",
	})
)

// DefaultRegistry holds the storefront metrics plus Go runtime collectors.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		APIRequestDuration,
		APIRequestTotal,
		PollTicks,
		WatchersActive,
		StoreOps,
		Notifications,
		CartItems,
	)
}

// Register adds a collector to DefaultRegistry.
func Register(c prometheus.Collector) error {
	return DefaultRegistry.Register(c)
}

// Handler serves DefaultRegistry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{})
}

// ObserveStore records one store operation.
func ObserveStore(driver, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOps.WithLabelValues(driver, op, result).Inc()
}
