package middleware

import (
	"net/http"
	"time"

	"github.com/zatekoja/facilities-collector/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ObservabilityMiddleware traces every request and records its duration
// under the matched route, so per-facility paths share one series.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := observability.StartSpan(r.Context(), "HTTP "+r.Method)
			defer span.End()

			req := r.WithContext(ctx)
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, req)

			// The mux fills in the pattern while routing.
			route := routeOf(req)
			span.SetName(r.Method + " " + route)
			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.Int("http.status_code", rec.status),
				attribute.Int("http.response_size", rec.bytes),
			)
			if domain := req.PathValue("domain"); domain != "" {
				observability.SetSpanAttributes(span, attribute.String("collector.domain", domain))
			}
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}

			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rec.status, time.Since(start))
		})
	}
}
