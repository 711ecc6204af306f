package collectors

import (
	"fmt"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
)

// FeatureLayers provides every ArcGIS layer
type FeatureLayers interface {
	HealthFeatureSource
	BenefitsFeatureSource
	CemeteryFeatureSource
}

// WarehouseTables provides every warehouse table
type WarehouseTables interface {
	WarehouseSource
	VetCenterSource
}

// Sources bundles the upstream clients the collectors read from.
// Warehouse may be nil, in which case the health and vet center domains
// cannot be built.
type Sources struct {
	ArcGIS          FeatureLayers
	AccessToCare    AccessToCareSource
	Warehouse       WarehouseTables
	StateCemeteries StateCemeterySource
	Websites        WebsiteSource
}

// Build creates the collectors of the named domains. No names selects
// every domain.
func Build(sources Sources, names []string) ([]Collector, error) {
	domains := entities.AllDomains()
	if len(names) > 0 {
		domains = domains[:0:0]
		seen := make(map[entities.Domain]bool, len(names))
		for _, name := range names {
			domain, ok := entities.ParseDomain(name)
			if !ok {
				return nil, fmt.Errorf("unknown domain: %s", name)
			}
			if !seen[domain] {
				seen[domain] = true
				domains = append(domains, domain)
			}
		}
	}

	built := make([]Collector, 0, len(domains))
	for _, domain := range domains {
		collector, err := build(sources, domain)
		if err != nil {
			return nil, err
		}
		built = append(built, collector)
	}
	return built, nil
}

func build(sources Sources, domain entities.Domain) (Collector, error) {
	switch domain {
	case entities.DomainHealth:
		if sources.Warehouse == nil {
			return nil, fmt.Errorf("domain %s needs the data warehouse", domain)
		}
		return NewHealthCollector(sources.ArcGIS, sources.AccessToCare, sources.Warehouse, sources.Websites), nil
	case entities.DomainBenefits:
		return NewBenefitsCollector(sources.ArcGIS, sources.Websites), nil
	case entities.DomainCemeteries:
		return NewCemeteriesCollector(sources.ArcGIS, sources.Websites), nil
	case entities.DomainStateCemeteries:
		return NewStateCemeteriesCollector(sources.StateCemeteries, sources.Websites), nil
	case entities.DomainVetCenters:
		if sources.Warehouse == nil {
			return nil, fmt.Errorf("domain %s needs the data warehouse", domain)
		}
		return NewVetCentersCollector(sources.Warehouse, sources.Websites), nil
	}
	return nil, fmt.Errorf("unknown domain: %s", domain)
}
