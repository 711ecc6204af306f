package observability

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// InitLogger initializes the global zerolog logger. An unknown level
// falls back to info.
func InitLogger(serviceName, env, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	if env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().
			Str("service", serviceName).
			Logger()
		return
	}

	log.Logger = zerolog.New(os.Stderr).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger()
}

// LoggerFromContext returns a logger with trace context
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	logger := log.With().Logger()

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		logger = logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return &logger
}

// DomainLogger returns a context logger tagged with a collection domain
func DomainLogger(ctx context.Context, domain string) *zerolog.Logger {
	logger := LoggerFromContext(ctx).With().Str("domain", domain).Logger()
	return &logger
}
