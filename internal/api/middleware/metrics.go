package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/pawplates/engine/internal/observability"
)

// User IDs are free-form path segments, so the route label collapses the
// segment after /v1/users/ to keep metric cardinality bounded.
var userSegmentRegex = regexp.MustCompile(`^(/v1/users/)[^/]+`)

// Metrics returns middleware that records HTTP request count and duration via
// EngineMetrics. When metrics is nil, recording is skipped. Put Metrics
// outermost so duration is full request time.
func Metrics(metrics observability.EngineMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			metrics.RecordRequest(r.Context(), r.Method, normalizeRoute(r.URL.Path), statusToClass(rec.status), time.Since(start))
		})
	}
}

// normalizeRoute replaces the user ID path segment with {id}.
func normalizeRoute(path string) string {
	return userSegmentRegex.ReplaceAllString(path, "${1}{id}")
}

// statusToClass maps an HTTP status code to 1xx through 5xx.
func statusToClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	case status >= 100:
		return "1xx"
	default:
		return "unknown"
	}
}
