package collectors

import (
	"context"
	"strings"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/cdw"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
	"github.com/zatekoja/facilities-collector/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// VetCentersTransformer turns one VAST row into a facility
type VetCentersTransformer struct {
	Websites WebsiteIndex
}

// ToFacility returns nil when the row has no station number. The first
// VAST address line repeats the station name and is not used.
func (t *VetCentersTransformer) ToFacility(row cdw.VastRow) *entities.Facility {
	station := strings.TrimSpace(row.StationNumber)
	if station == "" {
		return nil
	}
	id := "vc_" + station

	return entities.NewFacility(id, &entities.FacilityAttributes{
		Name:         strings.TrimSpace(row.StationName),
		FacilityType: entities.FacilityTypeVetCenter,
		Latitude:     row.Latitude,
		Longitude:    row.Longitude,
		Website:      t.Websites.Lookup(id),
		Address: addressOrNil(&entities.Address{
			Address1: strings.TrimSpace(row.Address2),
			Address2: strings.TrimSpace(row.Address3),
			City:     strings.TrimSpace(row.City),
			State:    utils.UpperTrim(row.State),
			Zip:      zipPlus4(row.Zip, row.Zip4),
		}),
		Phone: entities.PresentOrNil(&entities.Phone{
			Main: trimPhone(row.Phone),
		}),
		Hours: closedHours(row.Monday, row.Tuesday, row.Wednesday, row.Thursday, row.Friday, row.Saturday, row.Sunday),
	})
}

// VetCentersCollector reads the vet center rows of VAST
type VetCentersCollector struct {
	vetCenters VetCenterSource
	websites   WebsiteSource
}

// NewVetCentersCollector creates a vet centers collector
func NewVetCentersCollector(vetCenters VetCenterSource, websites WebsiteSource) *VetCentersCollector {
	return &VetCentersCollector{vetCenters: vetCenters, websites: websites}
}

// Domain implements Collector
func (c *VetCentersCollector) Domain() entities.Domain {
	return entities.DomainVetCenters
}

// Collect implements Collector
func (c *VetCentersCollector) Collect(ctx context.Context) (*Result, error) {
	var (
		rows     []cdw.VastRow
		websites map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = c.vetCenters.ListVetCenters(gctx)
		return err
	})
	g.Go(func() (err error) {
		websites, err = c.websites.Websites(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewCollectorError(string(c.Domain()), err)
	}

	transformer := &VetCentersTransformer{Websites: NewWebsiteIndex(websites)}
	return transformAll(rows, transformer.ToFacility), nil
}
