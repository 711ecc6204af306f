package providers

import (
	"context"
	"time"
)

// CacheProvider is a byte-valued key store with expiry. It backs the
// latest-run record, idempotency claims and the facility read caches.
type CacheProvider interface {
	// Get returns a NotFound AppError when the key is missing.
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX reports whether this call claimed the key.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes every given key; missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
