package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/facilities-collector/internal/application/services"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

func seededRepository(t *testing.T) *MockSnapshotRepository {
	t.Helper()
	repo := NewMockSnapshotRepository()
	require.NoError(t, repo.ReplaceDomain(context.Background(), &entities.DomainSnapshot{
		Domain:     entities.DomainVetCenters,
		Facilities: []*entities.Facility{facility("vc_0102V", "Lowell"), facility("vc_0101V", "Boston")},
	}))
	return repo
}

func TestFacilityService_GetByID(t *testing.T) {
	service := services.NewFacilityService(seededRepository(t), nil, nil, 0)

	f, err := service.GetByID(context.Background(), "vc_0101V")
	require.NoError(t, err)
	assert.Equal(t, "Boston", f.Attributes.Name)

	_, err = service.GetByID(context.Background(), "vc_missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	_, err = service.GetByID(context.Background(), "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestFacilityService_ListByDomainUsesCache(t *testing.T) {
	repo := seededRepository(t)
	cache := NewMockCacheProvider()
	service := services.NewFacilityService(repo, nil, cache, 10*time.Minute)

	first, err := service.ListByDomain(context.Background(), entities.DomainVetCenters)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "vc_0101V", first[0].ID)

	second, err := service.ListByDomain(context.Background(), entities.DomainVetCenters)
	require.NoError(t, err)
	assert.Equal(t, first[1].ID, second[1].ID)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 10*time.Minute, cache.ttls[services.DomainCacheKey(entities.DomainVetCenters)])
}

func TestFacilityService_Search(t *testing.T) {
	_, err := services.NewFacilityService(seededRepository(t), nil, nil, 0).Search(context.Background(), providers.SearchParams{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	indexer := &MockSearchIndexer{result: &providers.SearchResult{Found: 1, Hits: []providers.SearchHit{{ID: "vc_0101V"}}}}
	result, err := services.NewFacilityService(seededRepository(t), indexer, nil, 0).
		Search(context.Background(), providers.SearchParams{Query: "boston", Domain: entities.DomainVetCenters})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Found)
	assert.Equal(t, "boston", indexer.params[0].Query)
}

func TestCacheInvalidationService(t *testing.T) {
	cache := NewMockCacheProvider()
	eventBus := NewMockEventBus()
	service := services.NewCacheInvalidationService(cache, eventBus)

	require.NoError(t, service.Start())
	defer service.Stop()
	assert.Equal(t, 1, eventBus.SubscriberCount())

	key := services.DomainCacheKey(entities.DomainHealth)
	require.NoError(t, cache.Set(context.Background(), key, []byte("[]"), 300))

	failed := entities.NewDomainEvent("run-1", entities.DomainSummary{Domain: entities.DomainHealth, Error: "boom"})
	require.NoError(t, eventBus.Publish(context.Background(), "collector:runs", failed))
	collected := entities.NewDomainEvent("run-1", entities.DomainSummary{Domain: entities.DomainHealth, Facilities: 3})
	require.NoError(t, eventBus.Publish(context.Background(), "collector:runs", collected))

	assert.Eventually(t, func() bool {
		exists, _ := cache.Exists(context.Background(), key)
		return !exists
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{key}, cache.Deleted())
}

func TestCacheInvalidationService_StopWithoutStart(t *testing.T) {
	service := services.NewCacheInvalidationService(NewMockCacheProvider(), NewMockEventBus())
	service.Stop()
}
