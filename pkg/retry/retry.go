package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	MaxTotalTimeout time.Duration
}

// DefaultConfig returns the configuration used for connection establishment
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     10,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 60 * time.Second,
	}
}

// UpstreamConfig returns a short configuration for upstream feed fetches.
// A collection run fails fast, so only a handful of quick attempts are made.
func UpstreamConfig() Config {
	return Config{
		MaxAttempts:   3,
		InitialDelay:  250 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// LogFunc is notified before every wait between two attempts
type LogFunc func(attempt int, err error, nextDelay time.Duration)

// permanentError stops the retry loop immediately
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do executes fn with exponential backoff
func Do(ctx context.Context, cfg Config, fn func() error) error {
	return DoWithLog(ctx, cfg, "", fn, nil)
}

// DoWithLog executes fn with exponential backoff and reports each failed attempt
func DoWithLog(ctx context.Context, cfg Config, name string, fn func() error, logFn LogFunc) error {
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return wrap(name, abortedError(attempt-1, err, lastErr))
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var permanent *permanentError
		if errors.As(err, &permanent) {
			return wrap(name, permanent.err)
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		if logFn != nil {
			logFn(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return wrap(name, abortedError(attempt, ctx.Err(), lastErr))
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return wrap(name, fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr))
}

func abortedError(attempts int, ctxErr, lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("retry aborted after %d attempts: %w (last error: %v)", attempts, ctxErr, lastErr)
	}
	return fmt.Errorf("retry aborted: %w", ctxErr)
}

func wrap(name string, err error) error {
	if name == "" {
		return err
	}
	return fmt.Errorf("%s: %w", name, err)
}
