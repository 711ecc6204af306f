package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/facilities-collector/internal/adapters/database"
	"github.com/zatekoja/facilities-collector/internal/adapters/search"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
	"github.com/zatekoja/facilities-collector/internal/domain/repositories"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/observability"
	"github.com/zatekoja/facilities-collector/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-indexer", cfg.Environment, cfg.LogLevel)

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			log.Fatal().Str("interval", intervalValue).Msg("interval must be a positive duration")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("interval", interval).Msg("reindex complete, waiting for next run")
		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	pgClient, err := postgres.NewClient(ctx, "snapshots", &cfg.Snapshots)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Str("collection", typesense.FacilitiesCollection).Msg("deleting facilities collection")
		if _, err := tsClient.Client().Collection(typesense.FacilitiesCollection).Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete collection")
		}
	}

	adapter := search.NewTypesenseAdapter(tsClient)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	return reindex(ctx, database.NewFacilitySnapshotAdapter(pgClient), adapter, time.Now())
}

// reindex pushes every stored domain snapshot to the search index. A
// failing domain does not stop the others.
func reindex(ctx context.Context, repo repositories.FacilitySnapshotRepository, indexer providers.SearchIndexer, collectedAt time.Time) error {
	var errs []error
	for _, domain := range entities.AllDomains() {
		facilities, err := repo.ListByDomain(ctx, domain)
		if err != nil {
			errs = append(errs, fmt.Errorf("list %s: %w", domain, err))
			continue
		}
		if len(facilities) == 0 {
			log.Info().Str("domain", string(domain)).Msg("no stored snapshot, skipping")
			continue
		}

		snapshot := &entities.DomainSnapshot{
			RunID:       "reindex",
			Domain:      domain,
			CollectedAt: collectedAt,
			Facilities:  facilities,
		}
		if err := indexer.IndexSnapshot(ctx, snapshot); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", domain, err))
			continue
		}
		log.Info().Str("domain", string(domain)).Int("facilities", len(facilities)).Msg("domain reindexed")
	}
	return errors.Join(errs...)
}
