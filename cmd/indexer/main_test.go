package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
)

type mockSnapshots struct {
	mock.Mock
}

func (m *mockSnapshots) ReplaceDomain(ctx context.Context, snapshot *entities.DomainSnapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

func (m *mockSnapshots) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	args := m.Called(ctx, id)
	facility, _ := args.Get(0).(*entities.Facility)
	return facility, args.Error(1)
}

func (m *mockSnapshots) ListByDomain(ctx context.Context, domain entities.Domain) ([]*entities.Facility, error) {
	args := m.Called(ctx, domain)
	facilities, _ := args.Get(0).([]*entities.Facility)
	return facilities, args.Error(1)
}

type recordingIndexer struct {
	snapshots []*entities.DomainSnapshot
	failOn    entities.Domain
}

func (r *recordingIndexer) IndexSnapshot(ctx context.Context, snapshot *entities.DomainSnapshot) error {
	if snapshot.Domain == r.failOn {
		return errors.New("typesense unavailable")
	}
	r.snapshots = append(r.snapshots, snapshot)
	return nil
}

func (r *recordingIndexer) Search(ctx context.Context, params providers.SearchParams) (*providers.SearchResult, error) {
	return &providers.SearchResult{}, nil
}

func TestReindex(t *testing.T) {
	ctx := context.Background()
	collectedAt := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	health := []*entities.Facility{entities.NewFacility("vha_402", &entities.FacilityAttributes{Name: "Togus VA Medical Center"})}
	benefits := []*entities.Facility{entities.NewFacility("vba_402", &entities.FacilityAttributes{Name: "Togus Regional Office"})}

	repo := new(mockSnapshots)
	repo.On("ListByDomain", ctx, entities.DomainHealth).Return(health, nil)
	repo.On("ListByDomain", ctx, entities.DomainBenefits).Return(benefits, nil)
	repo.On("ListByDomain", ctx, entities.DomainCemeteries).Return(nil, errors.New("connection reset"))
	repo.On("ListByDomain", ctx, entities.DomainStateCemeteries).Return([]*entities.Facility{}, nil)
	repo.On("ListByDomain", ctx, entities.DomainVetCenters).Return(health, nil)

	indexer := &recordingIndexer{failOn: entities.DomainVetCenters}
	err := reindex(ctx, repo, indexer, collectedAt)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list cemeteries")
	assert.Contains(t, err.Error(), "index vet_centers")

	require.Len(t, indexer.snapshots, 2)
	assert.Equal(t, entities.DomainHealth, indexer.snapshots[0].Domain)
	assert.Equal(t, entities.DomainBenefits, indexer.snapshots[1].Domain)
	assert.Equal(t, collectedAt, indexer.snapshots[1].CollectedAt)
	assert.Equal(t, benefits, indexer.snapshots[1].Facilities)
	repo.AssertExpectations(t)
}
