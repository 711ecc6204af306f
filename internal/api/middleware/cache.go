package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/facilities-collector/internal/domain/providers"
)

const responseCachePrefix = "collector:http:"

// CacheMiddleware caches successful GET responses of selected paths
type CacheMiddleware struct {
	cache providers.CacheProvider
	paths map[string]time.Duration
}

// NewCacheMiddleware caches the facility search endpoint for ttl. Search
// results only change after a collection run, so a short ttl is enough.
func NewCacheMiddleware(cache providers.CacheProvider, ttl time.Duration) *CacheMiddleware {
	return &CacheMiddleware{
		cache: cache,
		paths: map[string]time.Duration{
			"/api/facilities/search": ttl,
		},
	}
}

// Middleware returns the cache middleware handler. A request sent with
// "Cache-Control: no-cache" skips the lookup but still refreshes the entry.
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		ttl, ok := m.paths[r.URL.Path]
		if !ok || ttl <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := responseCacheKey(r)
		if !strings.Contains(r.Header.Get("Cache-Control"), "no-cache") {
			if cached, err := m.cache.Get(r.Context(), key); err == nil && len(cached) > 0 {
				log.Debug().Str("key", key).Msg("response cache hit")
				w.Header().Set("X-Cache", "HIT")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write(cached)
				return
			}
		}

		w.Header().Set("X-Cache", "MISS")
		rec := &bodyRecorder{statusRecorder: newStatusRecorder(w)}
		next.ServeHTTP(rec, r)

		if rec.status != http.StatusOK || rec.body.Len() == 0 {
			return
		}
		if err := m.cache.Set(r.Context(), key, rec.body.Bytes(), ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to cache response")
		}
	})
}

// responseCacheKey hashes the path and the sorted query, so parameter
// order does not split the cache.
func responseCacheKey(r *http.Request) string {
	raw := r.URL.Path
	if query := r.URL.Query(); len(query) > 0 {
		raw += "?" + query.Encode()
	}
	hash := sha256.Sum256([]byte(raw))
	return responseCachePrefix + hex.EncodeToString(hash[:])
}

// bodyRecorder keeps a copy of the body written through it
type bodyRecorder struct {
	*statusRecorder
	body bytes.Buffer
}

func (r *bodyRecorder) Write(data []byte) (int, error) {
	r.body.Write(data)
	return r.statusRecorder.Write(data)
}
