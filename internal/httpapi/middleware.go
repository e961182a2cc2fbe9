package httpapi

import (
	"net/http"
	"time"

	"github.com/honeylocust/chowdown/pkg/logging"
	"github.com/honeylocust/chowdown/pkg/metrics"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument wraps a handler with request logging and metrics.
func instrument(m *metrics.Manager, log *logging.Logger, endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		elapsed := time.Since(start)
		m.ObserveHTTP(endpoint, rec.status, elapsed)
		log.Debug("request handled",
			"endpoint", endpoint,
			"method", r.Method,
			"status", rec.status,
			"elapsed_ms", elapsed.Milliseconds(),
		)
	}
}
