package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sakif/postboard/internal/metrics"
)

// Metrics records request count and latency per method and route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrap(w)

		next.ServeHTTP(wrapped, r)

		route := routePattern(r)
		metrics.HTTPRequestsTotal.
			WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).
			Inc()
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, route).
			Observe(time.Since(start).Seconds())
	})
}
