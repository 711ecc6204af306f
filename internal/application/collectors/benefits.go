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

// BenefitsTransformer turns one VBA feature into a facility
type BenefitsTransformer struct {
	Websites WebsiteIndex
}

// ToFacility returns nil when the feature has no facility number
func (t *BenefitsTransformer) ToFacility(feature arcgis.BenefitsFeature) *entities.Facility {
	attributes := feature.Attributes
	number := attributes.FacilityNumber.String()
	if number == "" {
		return nil
	}
	id := "vba_" + number

	return entities.NewFacility(id, &entities.FacilityAttributes{
		Name:           strings.TrimSpace(attributes.FacilityName),
		FacilityType:   entities.FacilityTypeBenefits,
		Classification: strings.TrimSpace(attributes.FacilityType),
		Latitude:       feature.Geometry.Latitude(),
		Longitude:      feature.Geometry.Longitude(),
		Website:        websiteOrFallback(attributes.Website, t.Websites, id),
		Address: addressOrNil(&entities.Address{
			Address1: strings.TrimSpace(attributes.Address1),
			Address2: strings.TrimSpace(attributes.Address2),
			City:     strings.TrimSpace(attributes.City),
			State:    utils.UpperTrim(attributes.State),
			Zip:      attributes.Zip.String(),
		}),
		Phone: entities.PresentOrNil(&entities.Phone{
			Main: trimPhone(attributes.Phone),
			Fax:  trimPhone(attributes.Fax),
		}),
		Hours: closedHours(
			attributes.Monday, attributes.Tuesday, attributes.Wednesday, attributes.Thursday,
			attributes.Friday, attributes.Saturday, attributes.Sunday,
		),
		Services: entities.PresentOrNil(&entities.Services{
			Benefits: benefitsServices(attributes),
		}),
	})
}

func benefitsServices(attributes arcgis.BenefitsAttributes) []entities.BenefitsService {
	flags := []struct {
		value   string
		service entities.BenefitsService
	}{
		{attributes.ApplyingForBenefits, entities.BenefitsServiceApplyingForBenefits},
		{attributes.BurialClaimAssistance, entities.BenefitsServiceBurialClaimAssistance},
		{attributes.DisabilityClaimAssistance, entities.BenefitsServiceDisabilityClaimAssistance},
		{attributes.EBenefitsRegistration, entities.BenefitsServiceEBenefitsRegistrationAssistance},
		{attributes.EducationAndCareerCounseling, entities.BenefitsServiceEducationAndCareerCounseling},
		{attributes.EducationClaimAssistance, entities.BenefitsServiceEducationClaimAssistance},
		{attributes.FamilyMemberClaimAssistance, entities.BenefitsServiceFamilyMemberClaimAssistance},
		{attributes.HomelessAssistance, entities.BenefitsServiceHomelessAssistance},
		{attributes.InsuranceClaimAssistance, entities.BenefitsServiceInsuranceClaimAssistance},
		{attributes.IntegratedDisabilityEvaluation, entities.BenefitsServiceIntegratedDisabilityEvaluation},
		{attributes.PreDischargeClaimAssistance, entities.BenefitsServicePreDischargeClaimAssistance},
		{attributes.TransitionAssistance, entities.BenefitsServiceTransitionAssistance},
		{attributes.UpdatingDirectDepositInformation, entities.BenefitsServiceUpdatingDirectDepositInformation},
		{attributes.VAHomeLoanAssistance, entities.BenefitsServiceVAHomeLoanAssistance},
		{attributes.VocationalRehabilitation, entities.BenefitsServiceVocationalRehabilitation},
	}

	var services []entities.BenefitsService
	for _, flag := range flags {
		if strings.EqualFold(strings.TrimSpace(flag.value), "YES") {
			services = append(services, flag.service)
		}
	}
	utils.SortCaseInsensitive(services, func(s entities.BenefitsService) string { return string(s) })
	return services
}

// BenefitsCollector reads the VBA facility layer
type BenefitsCollector struct {
	features BenefitsFeatureSource
	websites WebsiteSource
}

// NewBenefitsCollector creates a benefits collector
func NewBenefitsCollector(features BenefitsFeatureSource, websites WebsiteSource) *BenefitsCollector {
	return &BenefitsCollector{features: features, websites: websites}
}

// Domain implements Collector
func (c *BenefitsCollector) Domain() entities.Domain {
	return entities.DomainBenefits
}

// Collect implements Collector
func (c *BenefitsCollector) Collect(ctx context.Context) (*Result, error) {
	var (
		features []arcgis.BenefitsFeature
		websites map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		features, err = c.features.QueryBenefits(gctx)
		return err
	})
	g.Go(func() (err error) {
		websites, err = c.websites.Websites(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewCollectorError(string(c.Domain()), err)
	}

	transformer := &BenefitsTransformer{Websites: NewWebsiteIndex(websites)}
	return transformAll(features, transformer.ToFacility), nil
}
