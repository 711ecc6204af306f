package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/facilities-collector/internal/adapters/cache"
	"github.com/zatekoja/facilities-collector/internal/adapters/database"
	"github.com/zatekoja/facilities-collector/internal/adapters/events"
	"github.com/zatekoja/facilities-collector/internal/adapters/search"
	"github.com/zatekoja/facilities-collector/internal/application/collectors"
	"github.com/zatekoja/facilities-collector/internal/application/services"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/accesstocare"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/arcgis"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/cdw"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/redis"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/statecemetery"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/websites"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/observability"
	"github.com/zatekoja/facilities-collector/pkg/config"
)

// Components holds every client and service shared by the binaries.
// Optional components are nil when disabled or unreachable.
type Components struct {
	Collection  *services.CollectionService
	Publisher   *services.SnapshotPublisher
	Facilities  *services.FacilityService
	HealthCheck *services.HealthCheckService

	Cache     providers.CacheProvider
	EventBus  providers.EventBus
	Snapshots *database.FacilitySnapshotAdapter
	Search    *search.TypesenseAdapter
	Metrics   *observability.Metrics

	closers []func() error
}

// Close releases every opened client
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}

// New connects the configured clients and wires the services. Only a
// collector that cannot be built is fatal; optional sinks that cannot be
// reached are logged and left out.
func New(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*Components, error) {
	c := &Components{
		Metrics:     metrics,
		HealthCheck: services.NewHealthCheckService(cfg.Collector.HealthCheckTTL),
	}

	sources := collectors.Sources{
		ArcGIS: arcgis.NewClient(arcgis.Endpoints{
			Health:     cfg.Upstreams.ArcGISHealthURL,
			Benefits:   cfg.Upstreams.ArcGISBenefitsURL,
			Cemeteries: cfg.Upstreams.ArcGISCemeteriesURL,
		}, cfg.Upstreams.Timeout),
		AccessToCare:    accesstocare.NewClient(cfg.Upstreams.AccessToCareURL, cfg.Upstreams.AccessToPwtURL, cfg.Upstreams.Timeout),
		StateCemeteries: statecemetery.NewClient(cfg.Upstreams.StateCemeteriesURL, cfg.Upstreams.Timeout),
		Websites:        websites.NewFileLoader(cfg.Upstreams.WebsitesCSVPath),
	}

	if needsWarehouse(cfg.Collector.Domains) {
		warehouse, err := postgres.NewClient(ctx, "cdw", &cfg.CDW)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, warehouse.Close)
		cdwClient := cdw.NewClient(warehouse)
		sources.Warehouse = cdwClient
		c.HealthCheck.Register("cdw", cdwClient.Ping)
	}

	registered, err := collectors.Build(sources, cfg.Collector.Domains)
	if err != nil {
		c.Close()
		return nil, err
	}

	if cfg.Collector.PersistSnapshots {
		c.connectSnapshots(ctx, &cfg.Snapshots)
	}
	if cfg.Collector.IndexSearch {
		c.connectSearch(ctx, &cfg.Typesense)
	}
	c.connectRedis(ctx, &cfg.Redis)

	var latestCache providers.CacheProvider
	if cfg.Collector.CacheLatestResult {
		latestCache = c.Cache
	}

	var indexer providers.SearchIndexer
	if c.Search != nil {
		indexer = c.Search
	}

	if c.Snapshots != nil {
		c.Publisher = services.NewSnapshotPublisher(c.Snapshots, indexer, latestCache, cfg.Collector.LatestResultTTL)
		c.Facilities = services.NewFacilityService(c.Snapshots, indexer, c.Cache, cfg.Collector.FacilityCacheTTL)
	} else if indexer != nil || latestCache != nil {
		c.Publisher = services.NewSnapshotPublisher(nil, indexer, latestCache, cfg.Collector.LatestResultTTL)
	}

	c.Collection = services.NewCollectionService(registered, c.Publisher, c.EventBus, metrics)

	log.Info().Int("collectors", len(registered)).Bool("snapshots", c.Snapshots != nil).
		Bool("search", c.Search != nil).Bool("redis", c.Cache != nil).Msg("collector components ready")
	return c, nil
}

func needsWarehouse(names []string) bool {
	if len(names) == 0 {
		return true
	}
	for _, name := range names {
		domain, _ := entities.ParseDomain(name)
		if domain == entities.DomainHealth || domain == entities.DomainVetCenters {
			return true
		}
	}
	return false
}

func (c *Components) connectSnapshots(ctx context.Context, cfg *config.DatabaseConfig) {
	client, err := postgres.NewClient(ctx, "snapshots", cfg)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot store unavailable; snapshots will not be persisted")
		return
	}
	adapter := database.NewFacilitySnapshotAdapter(client)
	if err := adapter.EnsureSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to prepare snapshot table; snapshots will not be persisted")
		client.Close()
		return
	}
	c.closers = append(c.closers, client.Close)
	c.Snapshots = adapter
	c.HealthCheck.Register("snapshots", client.Ping)
}

func (c *Components) connectSearch(ctx context.Context, cfg *config.TypesenseConfig) {
	client, err := typesense.NewClient(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("typesense unavailable; facilities will not be indexed")
		return
	}
	adapter := search.NewTypesenseAdapter(client)
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := adapter.InitSchema(initCtx); err != nil {
		log.Warn().Err(err).Msg("failed to init typesense schema; facilities will not be indexed")
		return
	}
	c.Search = adapter
	c.HealthCheck.Register("typesense", client.Health)
}

func (c *Components) connectRedis(ctx context.Context, cfg *config.RedisConfig) {
	client, err := redis.NewClient(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; running without cache and events")
		return
	}
	c.Cache = cache.NewRedisAdapter(client)
	eventBus := events.NewRedisEventBus(client)
	c.EventBus = eventBus
	c.closers = append(c.closers, client.Close, eventBus.Close)
	c.HealthCheck.Register("redis", client.Ping)
}
