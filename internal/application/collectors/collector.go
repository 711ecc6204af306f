package collectors

import (
	"context"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/accesstocare"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/arcgis"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/cdw"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/statecemetery"
)

// Collector produces the facilities of one domain. A failure of any
// upstream fetch fails the whole domain with a CollectorError.
type Collector interface {
	Domain() entities.Domain
	Collect(ctx context.Context) (*Result, error)
}

// Result is the output of one domain collection
type Result struct {
	Facilities []*entities.Facility
	// Dropped counts source records that did not resolve to a facility
	Dropped int
}

// HealthFeatureSource provides the VHA facility layer
type HealthFeatureSource interface {
	QueryHealth(ctx context.Context) ([]arcgis.HealthFeature, error)
}

// BenefitsFeatureSource provides the VBA facility layer
type BenefitsFeatureSource interface {
	QueryBenefits(ctx context.Context) ([]arcgis.BenefitsFeature, error)
}

// CemeteryFeatureSource provides the national cemetery layer
type CemeteryFeatureSource interface {
	QueryCemeteries(ctx context.Context) ([]arcgis.CemeteryFeature, error)
}

// AccessToCareSource provides the wait-time and satisfaction feeds
type AccessToCareSource interface {
	ListAccessToCare(ctx context.Context) ([]accesstocare.AccessToCareEntry, error)
	ListAccessToPwt(ctx context.Context) ([]accesstocare.AccessToPwtEntry, error)
}

// WarehouseSource provides the health tables of the corporate data warehouse
type WarehouseSource interface {
	ListMentalHealthContacts(ctx context.Context) ([]cdw.MentalHealthContact, error)
	ListStopCodes(ctx context.Context) ([]cdw.StopCodeRow, error)
}

// VetCenterSource provides the VAST vet center rows
type VetCenterSource interface {
	ListVetCenters(ctx context.Context) ([]cdw.VastRow, error)
}

// StateCemeterySource provides the state cemetery feed
type StateCemeterySource interface {
	ListStateCemeteries(ctx context.Context) ([]statecemetery.Cemetery, error)
}

// WebsiteSource provides the curated facility id to website table
type WebsiteSource interface {
	Websites(ctx context.Context) (map[string]string, error)
}

// transformAll maps every record and drops the ones without a facility
func transformAll[S any](records []S, toFacility func(S) *entities.Facility) *Result {
	result := &Result{Facilities: make([]*entities.Facility, 0, len(records))}
	for _, record := range records {
		if facility := toFacility(record); facility != nil {
			result.Facilities = append(result.Facilities, facility)
			continue
		}
		result.Dropped++
	}
	return result
}
