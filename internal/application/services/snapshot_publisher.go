package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
	"github.com/zatekoja/facilities-collector/internal/domain/repositories"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

// LatestResultKey is the cache key of the last finished collection run
const LatestResultKey = "collector:latest"

// SnapshotPublisher writes the snapshots of a finished run to every
// configured sink. Each sink is optional.
type SnapshotPublisher struct {
	repo      repositories.FacilitySnapshotRepository
	indexer   providers.SearchIndexer
	cache     providers.CacheProvider
	latestTTL time.Duration
}

// NewSnapshotPublisher creates a snapshot publisher
func NewSnapshotPublisher(
	repo repositories.FacilitySnapshotRepository,
	indexer providers.SearchIndexer,
	cache providers.CacheProvider,
	latestTTL time.Duration,
) *SnapshotPublisher {
	return &SnapshotPublisher{
		repo:      repo,
		indexer:   indexer,
		cache:     cache,
		latestTTL: latestTTL,
	}
}

// Publish stores every succeeded domain and caches the run. Failed domains
// keep their previous snapshot. A failing sink does not stop the others.
func (p *SnapshotPublisher) Publish(ctx context.Context, result *entities.CollectionResult) error {
	var errs []error

	for _, snapshot := range result.Snapshots() {
		if p.repo != nil {
			if err := p.repo.ReplaceDomain(ctx, snapshot); err != nil {
				errs = append(errs, fmt.Errorf("persist %s: %w", snapshot.Domain, err))
			} else {
				log.Info().Str("domain", string(snapshot.Domain)).Int("facilities", len(snapshot.Facilities)).Msg("persisted domain snapshot")
			}
		}
		if p.indexer != nil {
			if err := p.indexer.IndexSnapshot(ctx, snapshot); err != nil {
				errs = append(errs, fmt.Errorf("index %s: %w", snapshot.Domain, err))
			}
		}
	}

	if p.cache != nil {
		if err := p.cacheLatest(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (p *SnapshotPublisher) cacheLatest(ctx context.Context, result *entities.CollectionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode collection result: %w", err)
	}
	if err := p.cache.Set(ctx, LatestResultKey, data, p.latestTTL); err != nil {
		return fmt.Errorf("cache latest result: %w", err)
	}
	return nil
}

// LatestResult returns the last cached run
func (p *SnapshotPublisher) LatestResult(ctx context.Context) (*entities.CollectionResult, error) {
	if p.cache == nil {
		return nil, apperrors.NewNotFoundError("no collection result cache configured")
	}

	data, err := p.cache.Get(ctx, LatestResultKey)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewNotFoundError("no collection run finished yet")
		}
		return nil, err
	}

	var result entities.CollectionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, apperrors.NewInternalError("failed to decode cached collection result", err)
	}
	return &result, nil
}
