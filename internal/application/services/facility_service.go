package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
	"github.com/zatekoja/facilities-collector/internal/domain/repositories"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

// DomainCacheKey is the cache key of the stored facilities of a domain
func DomainCacheKey(domain entities.Domain) string {
	return fmt.Sprintf("facilities:domain:%s", domain)
}

// FacilityService serves the stored snapshots
type FacilityService struct {
	repo     repositories.FacilitySnapshotRepository
	searcher providers.SearchIndexer
	cache    providers.CacheProvider
	cacheTTL time.Duration
}

// NewFacilityService creates a new facility service. searcher and cache
// are optional.
func NewFacilityService(
	repo repositories.FacilitySnapshotRepository,
	searcher providers.SearchIndexer,
	cache providers.CacheProvider,
	cacheTTL time.Duration,
) *FacilityService {
	return &FacilityService{
		repo:     repo,
		searcher: searcher,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// GetByID retrieves a stored facility by ID
func (s *FacilityService) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("facility id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// ListByDomain retrieves the stored facilities of a domain through the cache
func (s *FacilityService) ListByDomain(ctx context.Context, domain entities.Domain) ([]*entities.Facility, error) {
	key := DomainCacheKey(domain)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var facilities []*entities.Facility
			if err := json.Unmarshal(data, &facilities); err == nil {
				return facilities, nil
			}
			log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		}
	}

	facilities, err := s.repo.ListByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(facilities); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
				// Log error but don't fail the request
				log.Warn().Err(err).Str("key", key).Msg("failed to cache domain facilities")
			}
		}
	}
	return facilities, nil
}

// Search queries the search index
func (s *FacilityService) Search(ctx context.Context, params providers.SearchParams) (*providers.SearchResult, error) {
	if s.searcher == nil {
		return nil, apperrors.NewValidationError("search is not enabled")
	}
	return s.searcher.Search(ctx, params)
}
