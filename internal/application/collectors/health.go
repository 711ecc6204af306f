package collectors

import (
	"context"
	"strings"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/accesstocare"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/arcgis"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/cdw"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
	"github.com/zatekoja/facilities-collector/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// Appointment type names of the access-to-care feed, matched case-insensitively
var healthServicesByAppointmentType = map[string]entities.HealthService{
	"AUDIOLOGY":                    entities.HealthServiceAudiology,
	"CARDIOLOGY":                   entities.HealthServiceCardiology,
	"COMPREHENSIVE WOMEN'S HEALTH": entities.HealthServiceWomensHealth,
	"DERMATOLOGY":                  entities.HealthServiceDermatology,
	"GASTROENTEROLOGY":             entities.HealthServiceGastroenterology,
	"GYNECOLOGY":                   entities.HealthServiceGynecology,
	"MENTAL HEALTH INDIVIDUAL":     entities.HealthServiceMentalHealthCare,
	"OPHTHALMOLOGY":                entities.HealthServiceOphthalmology,
	"OPTOMETRY":                    entities.HealthServiceOptometry,
	"ORTHOPEDICS":                  entities.HealthServiceOrthopedics,
	"PRIMARY CARE":                 entities.HealthServicePrimaryCare,
	"SPECIALTY CARE":               entities.HealthServiceSpecialtyCare,
	"UROLOGY CLINIC":               entities.HealthServiceUrology,
}

func healthServiceForAppointment(apptTypeName string) (entities.HealthService, bool) {
	service, ok := healthServicesByAppointmentType[utils.UpperTrim(apptTypeName)]
	return service, ok
}

// SHEP appointment categories of the access-to-pwt feed
const (
	shepPrimaryCareUrgent    = "Primary Care (Urgent)"
	shepPrimaryCareRoutine   = "Primary Care (Routine)"
	shepSpecialtyCareUrgent  = "Specialty Care (Urgent)"
	shepSpecialtyCareRoutine = "Specialty Care (Routine)"
)

// HealthTransformer turns one VHA feature into a facility using the join
// indexes of the run. It holds no mutable state.
type HealthTransformer struct {
	AccessToCare       StationIndex[accesstocare.AccessToCareEntry]
	AccessToPwt        StationIndex[accesstocare.AccessToPwtEntry]
	MentalHealthPhones PhoneIndex
	StopCodes          StationIndex[StopCode]
	Websites           WebsiteIndex
}

// NewHealthTransformer builds the join indexes of a health run
func NewHealthTransformer(
	accessToCare []accesstocare.AccessToCareEntry,
	accessToPwt []accesstocare.AccessToPwtEntry,
	contacts []cdw.MentalHealthContact,
	stopCodes []cdw.StopCodeRow,
	websites map[string]string,
) *HealthTransformer {
	return &HealthTransformer{
		AccessToCare: NewStationIndex("access to care", accessToCare, func(e accesstocare.AccessToCareEntry) string {
			return e.FacilityID
		}),
		AccessToPwt: NewStationIndex("access to pwt", accessToPwt, func(e accesstocare.AccessToPwtEntry) string {
			return e.FacilityID
		}),
		MentalHealthPhones: NewPhoneIndex(contacts),
		StopCodes: NewStationIndex("stop codes", NewStopCodes(stopCodes), func(s StopCode) string {
			return s.StationNumber
		}),
		Websites: NewWebsiteIndex(websites),
	}
}

// ToFacility returns nil when the feature has no station number
func (t *HealthTransformer) ToFacility(feature arcgis.HealthFeature) *entities.Facility {
	attributes := feature.Attributes
	station := attributes.StationNum.String()
	if station == "" {
		return nil
	}
	id := "vha_" + station

	accessToCare := t.AccessToCare.Lookup(station)
	accessToPwt := t.AccessToPwt.Lookup(station)

	return entities.NewFacility(id, &entities.FacilityAttributes{
		Name:           strings.TrimSpace(attributes.StationName),
		FacilityType:   entities.FacilityTypeHealth,
		Classification: healthClassification(attributes.CocClassificationID.String(), attributes.FeatureCode),
		Latitude:       feature.Geometry.Latitude(),
		Longitude:      feature.Geometry.Longitude(),
		Website:        t.Websites.Lookup(id),
		Address: addressOrNil(&entities.Address{
			Address1: strings.TrimSpace(attributes.Address2),
			Address2: strings.TrimSpace(attributes.Address1),
			Address3: strings.TrimSpace(attributes.Address3),
			City:     strings.TrimSpace(attributes.Municipality),
			State:    utils.UpperTrim(attributes.State),
			Zip:      zipPlus4(attributes.Zip.String(), attributes.Zip4.String()),
		}),
		Phone: entities.PresentOrNil(&entities.Phone{
			Main:                  trimPhone(attributes.StaPhone),
			Fax:                   trimPhone(attributes.StaFax),
			Pharmacy:              trimPhone(attributes.PharmacyPhone),
			AfterHours:            trimPhone(attributes.AfterHoursPhone),
			PatientAdvocate:       trimPhone(attributes.PatientAdvocatePhone),
			MentalHealthClinic:    t.MentalHealthPhones.Lookup(station),
			EnrollmentCoordinator: trimPhone(attributes.EnrollmentCoordinatorPhone),
		}),
		Hours: closedHours(
			attributes.Monday, attributes.Tuesday, attributes.Wednesday, attributes.Thursday,
			attributes.Friday, attributes.Saturday, attributes.Sunday,
		),
		Services:     healthServices(accessToCare, t.StopCodes.Lookup(station)),
		Satisfaction: satisfaction(accessToPwt),
		WaitTimes:    waitTimes(accessToCare),
		Mobile:       mobileFlag(attributes.Mobile.String()),
		ActiveStatus: activeStatus(attributes.Pod),
		Visn:         attributes.Visn.String(),
	})
}

func healthServices(accessToCare []accesstocare.AccessToCareEntry, stopCodes []StopCode) *entities.Services {
	seen := map[entities.HealthService]bool{}
	var services []entities.HealthService
	add := func(service entities.HealthService) {
		if !seen[service] {
			seen[service] = true
			services = append(services, service)
		}
	}

	for _, entry := range accessToCare {
		if service, ok := healthServiceForAppointment(entry.ApptTypeName); ok {
			add(service)
		}
	}
	for _, entry := range accessToCare {
		if entry.EmergencyCare != nil && *entry.EmergencyCare {
			add(entities.HealthServiceEmergencyCare)
			break
		}
	}
	for _, entry := range accessToCare {
		if entry.UrgentCare != nil && *entry.UrgentCare {
			add(entities.HealthServiceUrgentCare)
			break
		}
	}
	for _, service := range stopCodeServices(stopCodes) {
		add(service)
	}

	utils.SortCaseInsensitive(services, func(s entities.HealthService) string { return string(s) })
	return entities.PresentOrNil(&entities.Services{
		Health:      services,
		LastUpdated: accessToCareDate(accessToCare),
	})
}

// satisfaction keeps the lowest score of each SHEP category
func satisfaction(accessToPwt []accesstocare.AccessToPwtEntry) *entities.Satisfaction {
	dates := make([]string, 0, len(accessToPwt))
	for _, entry := range accessToPwt {
		dates = append(dates, entry.SliceEndDate)
	}
	return entities.PresentOrNil(&entities.Satisfaction{
		Health: entities.PresentOrNil(&entities.PatientSatisfaction{
			PrimaryCareUrgent:    minimumScore(accessToPwt, shepPrimaryCareUrgent),
			PrimaryCareRoutine:   minimumScore(accessToPwt, shepPrimaryCareRoutine),
			SpecialtyCareUrgent:  minimumScore(accessToPwt, shepSpecialtyCareUrgent),
			SpecialtyCareRoutine: minimumScore(accessToPwt, shepSpecialtyCareRoutine),
		}),
		EffectiveDate: latestDate(dates),
	})
}

func minimumScore(accessToPwt []accesstocare.AccessToPwtEntry, apptTypeName string) *float64 {
	var minimum *float64
	for _, entry := range accessToPwt {
		if entry.ShepScore == nil || !strings.EqualFold(strings.TrimSpace(entry.ApptTypeName), apptTypeName) {
			continue
		}
		if minimum == nil || *entry.ShepScore < *minimum {
			score := *entry.ShepScore
			minimum = &score
		}
	}
	return minimum
}

func waitTimes(accessToCare []accesstocare.AccessToCareEntry) *entities.WaitTimes {
	var health []entities.PatientWaitTime
	for _, entry := range accessToCare {
		service, ok := healthServiceForAppointment(entry.ApptTypeName)
		if !ok {
			continue
		}
		newWait := validWaitTime(entry.NewWaitTime)
		established := validWaitTime(entry.EstWaitTime)
		if newWait == nil && established == nil {
			continue
		}
		health = append(health, entities.PatientWaitTime{
			Service:     service,
			New:         newWait,
			Established: established,
		})
	}
	utils.SortCaseInsensitive(health, func(w entities.PatientWaitTime) string { return string(w.Service) })
	return entities.PresentOrNil(&entities.WaitTimes{
		Health:        health,
		EffectiveDate: accessToCareDate(accessToCare),
	})
}

func accessToCareDate(accessToCare []accesstocare.AccessToCareEntry) *entities.Date {
	dates := make([]string, 0, len(accessToCare))
	for _, entry := range accessToCare {
		dates = append(dates, entry.SliceEndDate)
	}
	return latestDate(dates)
}

// HealthCollector joins the VHA layer with the access-to-care feeds and the
// warehouse tables
type HealthCollector struct {
	features     HealthFeatureSource
	accessToCare AccessToCareSource
	warehouse    WarehouseSource
	websites     WebsiteSource
}

// NewHealthCollector creates a health collector
func NewHealthCollector(
	features HealthFeatureSource,
	accessToCare AccessToCareSource,
	warehouse WarehouseSource,
	websites WebsiteSource,
) *HealthCollector {
	return &HealthCollector{
		features:     features,
		accessToCare: accessToCare,
		warehouse:    warehouse,
		websites:     websites,
	}
}

// Domain implements Collector
func (c *HealthCollector) Domain() entities.Domain {
	return entities.DomainHealth
}

// Collect implements Collector
func (c *HealthCollector) Collect(ctx context.Context) (*Result, error) {
	var (
		features     []arcgis.HealthFeature
		accessToCare []accesstocare.AccessToCareEntry
		accessToPwt  []accesstocare.AccessToPwtEntry
		contacts     []cdw.MentalHealthContact
		stopCodes    []cdw.StopCodeRow
		websites     map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		features, err = c.features.QueryHealth(gctx)
		return err
	})
	g.Go(func() (err error) {
		accessToCare, err = c.accessToCare.ListAccessToCare(gctx)
		return err
	})
	g.Go(func() (err error) {
		accessToPwt, err = c.accessToCare.ListAccessToPwt(gctx)
		return err
	})
	g.Go(func() (err error) {
		contacts, err = c.warehouse.ListMentalHealthContacts(gctx)
		return err
	})
	g.Go(func() (err error) {
		stopCodes, err = c.warehouse.ListStopCodes(gctx)
		return err
	})
	g.Go(func() (err error) {
		websites, err = c.websites.Websites(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewCollectorError(string(c.Domain()), err)
	}

	transformer := NewHealthTransformer(accessToCare, accessToPwt, contacts, stopCodes, websites)
	return transformAll(features, transformer.ToFacility), nil
}
