package collectors

import (
	"context"
	"strings"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/arcgis"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
	"github.com/zatekoja/facilities-collector/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// CemeteriesTransformer turns one national cemetery feature into a facility
type CemeteriesTransformer struct {
	Websites WebsiteIndex
}

// ToFacility returns nil when the feature has no site id
func (t *CemeteriesTransformer) ToFacility(feature arcgis.CemeteryFeature) *entities.Facility {
	attributes := feature.Attributes
	site := attributes.SiteID.String()
	if site == "" {
		return nil
	}
	id := "nca_" + site

	var website string
	if attributes.Website != nil {
		website = *attributes.Website
	}

	weekday := strings.TrimSpace(attributes.VisitationHoursWeekday)
	weekend := strings.TrimSpace(attributes.VisitationHoursWeekend)

	return entities.NewFacility(id, &entities.FacilityAttributes{
		Name:           strings.TrimSpace(attributes.FullName),
		FacilityType:   entities.FacilityTypeCemetery,
		Classification: strings.TrimSpace(attributes.SiteType),
		Latitude:       feature.Geometry.Latitude(),
		Longitude:      feature.Geometry.Longitude(),
		Website:        websiteOrFallback(website, t.Websites, id),
		Address: addressesOrNil(
			&entities.Address{
				Address1: strings.TrimSpace(attributes.SiteAddress1),
				Address2: strings.TrimSpace(attributes.SiteAddress2),
				City:     strings.TrimSpace(attributes.SiteCity),
				State:    utils.UpperTrim(attributes.SiteState),
				Zip:      attributes.SiteZip.String(),
			},
			&entities.Address{
				Address1: strings.TrimSpace(attributes.MailAddress1),
				Address2: strings.TrimSpace(attributes.MailAddress2),
				City:     strings.TrimSpace(attributes.MailCity),
				State:    utils.UpperTrim(attributes.MailState),
				Zip:      attributes.MailZip.String(),
			},
		),
		Phone: entities.PresentOrNil(&entities.Phone{
			Main: trimPhone(attributes.Phone),
			Fax:  trimPhone(attributes.Fax),
		}),
		Hours: entities.PresentOrNil(&entities.Hours{
			Monday:    weekday,
			Tuesday:   weekday,
			Wednesday: weekday,
			Thursday:  weekday,
			Friday:    weekday,
			Saturday:  weekend,
			Sunday:    weekend,
		}),
	})
}

// CemeteriesCollector reads the national cemetery layer
type CemeteriesCollector struct {
	features CemeteryFeatureSource
	websites WebsiteSource
}

// NewCemeteriesCollector creates a national cemeteries collector
func NewCemeteriesCollector(features CemeteryFeatureSource, websites WebsiteSource) *CemeteriesCollector {
	return &CemeteriesCollector{features: features, websites: websites}
}

// Domain implements Collector
func (c *CemeteriesCollector) Domain() entities.Domain {
	return entities.DomainCemeteries
}

// Collect implements Collector
func (c *CemeteriesCollector) Collect(ctx context.Context) (*Result, error) {
	var (
		features []arcgis.CemeteryFeature
		websites map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		features, err = c.features.QueryCemeteries(gctx)
		return err
	})
	g.Go(func() (err error) {
		websites, err = c.websites.Websites(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewCollectorError(string(c.Domain()), err)
	}

	transformer := &CemeteriesTransformer{Websites: NewWebsiteIndex(websites)}
	return transformAll(features, transformer.ToFacility), nil
}
