package middleware

import (
	"net/http"
	"time"

	"github.com/zatekoja/facilities-collector/internal/infrastructure/observability"
)

// statusRecorder captures the status and size of a response
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(data []byte) (int, error) {
	n, err := r.ResponseWriter.Write(data)
	r.bytes += n
	return n, err
}

// Flush keeps the event stream working through the recorder
func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// routeOf returns the matched mux pattern, or the raw path when the mux
// has not resolved one.
func routeOf(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return r.URL.Path
}

// LoggingMiddleware writes one line per request. Server errors are logged
// at warn level and collection triggers carry their idempotency key.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		logger := observability.LoggerFromContext(r.Context())
		event := logger.Info()
		if rec.status >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		if key := r.Header.Get(idempotencyHeader); key != "" {
			event = event.Str("idempotency_key", key)
		}
		event.
			Str("method", r.Method).
			Str("route", routeOf(r)).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
