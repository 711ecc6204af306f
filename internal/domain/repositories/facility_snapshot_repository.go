package repositories

import (
	"context"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
)

// FacilitySnapshotRepository stores the latest snapshot of every domain
type FacilitySnapshotRepository interface {
	// ReplaceDomain swaps the stored facilities of a domain for the snapshot
	ReplaceDomain(ctx context.Context, snapshot *entities.DomainSnapshot) error

	// GetByID retrieves a stored facility by ID
	GetByID(ctx context.Context, id string) (*entities.Facility, error)

	// ListByDomain retrieves the stored facilities of a domain ordered by ID
	ListByDomain(ctx context.Context, domain entities.Domain) ([]*entities.Facility, error)
}
