// Package metrics holds the Prometheus collectors shared by the HTTP layer
// and the storage backends.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts finished requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_http_requests_total",
		Help: "Total number of HTTP requests handled",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration records request latency by method and route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postboard_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// StoreOperationDuration records storage latency by backend and operation.
	StoreOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postboard_store_operation_duration_seconds",
		Help:    "Storage operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"driver", "operation"})

	// StoreErrorsTotal counts failed storage operations, not-found lookups included.
	StoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_store_errors_total",
		Help: "Total number of storage operations that returned an error",
	}, []string{"driver", "operation"})
)

// ObserveStore records one storage operation. Meant to be deferred:
//
//	defer func(start time.Time) { metrics.ObserveStore("json", "create_user", start, err) }(time.Now())
func ObserveStore(driver, operation string, start time.Time, err error) {
	StoreOperationDuration.WithLabelValues(driver, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreErrorsTotal.WithLabelValues(driver, operation).Inc()
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
