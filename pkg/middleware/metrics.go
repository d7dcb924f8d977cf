package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/JaimeStill/cookbook/pkg/metrics"
)

// Metrics returns middleware that records request counts and durations.
// Requests are labeled by the matched route pattern so ids do not explode cardinality.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}

			metrics.RecordRequest(
				r.Method,
				route,
				strconv.Itoa(rec.status),
				time.Since(start).Seconds(),
			)
		})
	}
}
