package routes

import (
	"net/http"

	"github.com/zatekoja/facilities-collector/internal/api/handlers"
	"github.com/zatekoja/facilities-collector/internal/api/middleware"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	healthHandler    *handlers.HealthHandler
	collectorHandler *handlers.CollectorHandler
	facilityHandler  *handlers.FacilityHandler
	sseHandler       *handlers.SSEHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	allowedOrigins  []string
}

// NewRouter creates a new router. The facility and SSE handlers are
// optional; their routes are only mounted when the backing stores exist.
func NewRouter(
	healthHandler *handlers.HealthHandler,
	collectorHandler *handlers.CollectorHandler,
	facilityHandler *handlers.FacilityHandler,
	sseHandler *handlers.SSEHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		healthHandler:    healthHandler,
		collectorHandler: collectorHandler,
		facilityHandler:  facilityHandler,
		sseHandler:       sseHandler,
		cacheMiddleware:  cacheMiddleware,
		metrics:          metrics,
		allowedOrigins:   allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Collection endpoints
	r.mux.HandleFunc("POST /api/collect", r.collectorHandler.CollectAll)
	r.mux.HandleFunc("POST /api/collect/{domain}", r.collectorHandler.CollectDomain)
	r.mux.HandleFunc("GET /api/collect/latest", r.collectorHandler.Latest)

	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/collect/events", r.sseHandler.StreamCollectionEvents)
	}

	// Facility endpoints
	if r.facilityHandler != nil {
		r.mux.HandleFunc("GET /api/facilities", r.facilityHandler.ListFacilities)
		r.mux.HandleFunc("GET /api/facilities/search", r.facilityHandler.SearchFacilities)
		r.mux.HandleFunc("GET /api/facilities/{id}", r.facilityHandler.GetFacility)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
