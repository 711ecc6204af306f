package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/facilities-collector/internal/api/handlers"
	"github.com/zatekoja/facilities-collector/internal/api/middleware"
	"github.com/zatekoja/facilities-collector/internal/api/routes"
	"github.com/zatekoja/facilities-collector/internal/application/services"
	"github.com/zatekoja/facilities-collector/internal/bootstrap"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/observability"
	"github.com/zatekoja/facilities-collector/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment, cfg.LogLevel)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	components, err := bootstrap.New(ctx, cfg, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize collector")
	}
	defer components.Close()

	// Initialize cache invalidation service
	var cacheInvalidationService *services.CacheInvalidationService
	if components.Cache != nil && components.EventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(components.Cache, components.EventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		}
	}

	// Initialize handlers
	var latest handlers.LatestResultReader
	if components.Publisher != nil {
		latest = components.Publisher
	}
	collectorHandler := handlers.NewCollectorHandler(components.Collection, latest, components.Cache, cfg.Collector.IdempotencyTTL)
	healthHandler := handlers.NewHealthHandler(components.HealthCheck)

	var facilityHandler *handlers.FacilityHandler
	if components.Facilities != nil {
		facilityHandler = handlers.NewFacilityHandler(components.Facilities)
	}

	var sseHandler *handlers.SSEHandler
	var cacheMiddleware *middleware.CacheMiddleware
	if components.EventBus != nil {
		sseHandler = handlers.NewSSEHandler(components.EventBus)
	}
	if components.Cache != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(components.Cache, cfg.Collector.SearchCacheTTL)
	}

	router := routes.NewRouter(healthHandler, collectorHandler, facilityHandler, sseHandler, cacheMiddleware, metrics, cfg.Server.AllowedOrigins)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		// a collection run and the event stream both outlive a short write timeout
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Strs("domains", domainNames(components.Collection)).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Info().Msg("server stopped")
}

func domainNames(collection *services.CollectionService) []string {
	domains := collection.Domains()
	names := make([]string, 0, len(domains))
	for _, d := range domains {
		names = append(names, string(d))
	}
	return names
}
