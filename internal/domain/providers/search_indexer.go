package providers

import (
	"context"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
)

// SearchParams narrows a facility search
type SearchParams struct {
	Query        string
	Domain       entities.Domain
	FacilityType entities.FacilityType
	State        string
	Limit        int
	Offset       int
}

// SearchHit is one indexed facility
type SearchHit struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Domain         string   `json:"domain"`
	FacilityType   string   `json:"facility_type"`
	Classification string   `json:"classification,omitempty"`
	City           string   `json:"city,omitempty"`
	State          string   `json:"state,omitempty"`
	Latitude       *float64 `json:"lat,omitempty"`
	Longitude      *float64 `json:"long,omitempty"`
}

// SearchResult is one page of hits
type SearchResult struct {
	Hits  []SearchHit `json:"hits"`
	Found int         `json:"found"`
}

// SearchIndexer keeps a search index of collected facilities
type SearchIndexer interface {
	// IndexSnapshot upserts every facility of a domain snapshot
	IndexSnapshot(ctx context.Context, snapshot *entities.DomainSnapshot) error

	// Search queries the index
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
}
