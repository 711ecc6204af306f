package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

const eventStreamPath = "/api/collect/events"

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return gz
	},
}

// Compression gzips responses for clients that accept it. Facility
// listings are large and repetitive JSON. The event stream is never
// compressed, so every event reaches the client when it is flushed.
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !acceptsGzip(r) || isEventStream(r) {
			next.ServeHTTP(w, r)
			return
		}

		gz := gzipWriterPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			gz.Close()
			gzipWriterPool.Put(gz)
		}()

		header := w.Header()
		header.Set("Content-Encoding", "gzip")
		header.Add("Vary", "Accept-Encoding")
		header.Del("Content-Length")

		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, gz: gz}, r)
	})
}

func acceptsGzip(r *http.Request) bool {
	for _, encoding := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(encoding), ";")
		if strings.EqualFold(name, "gzip") {
			return true
		}
	}
	return false
}

func isEventStream(r *http.Request) bool {
	return r.URL.Path == eventStreamPath || strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

type gzipResponseWriter struct {
	http.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.gz.Write(b)
}

func (w *gzipResponseWriter) Flush() {
	w.gz.Flush()
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// cachePolicies maps GET path prefixes to client cache headers, most
// specific first. Stored facilities only change after a collection run.
var cachePolicies = []struct {
	prefix string
	header string
}{
	{prefix: "/api/facilities/search", header: "public, max-age=60, must-revalidate"},
	{prefix: "/api/facilities", header: "public, max-age=300, must-revalidate"},
}

// CacheControl sets client cache headers. Collection triggers and their
// results are never cached by clients.
func CacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cacheControlFor(r))
		next.ServeHTTP(w, r)
	})
}

func cacheControlFor(r *http.Request) string {
	if r.Method != http.MethodGet {
		return "no-store"
	}
	for _, policy := range cachePolicies {
		if strings.HasPrefix(r.URL.Path, policy.prefix) {
			return policy.header
		}
	}
	return "no-cache"
}

// ResponseOptimization combines compression and cache control
func ResponseOptimization(next http.Handler) http.Handler {
	return CacheControl(Compression(next))
}
