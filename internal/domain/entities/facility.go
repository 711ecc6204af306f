package entities

import (
	"github.com/zatekoja/facilities-collector/pkg/utils"
)

// FacilityResourceType is the constant type of every canonical facility
const FacilityResourceType = "va_facilities"

// FacilityType classifies a facility by the administration that runs it
type FacilityType string

const (
	FacilityTypeHealth    FacilityType = "va_health_facility"
	FacilityTypeBenefits  FacilityType = "va_benefits_facility"
	FacilityTypeCemetery  FacilityType = "va_cemetery"
	FacilityTypeVetCenter FacilityType = "vet_center"
)

// ActiveStatus tells whether a facility is active or temporarily deactivated
type ActiveStatus string

const (
	ActiveStatusActive      ActiveStatus = "A"
	ActiveStatusDeactivated ActiveStatus = "T"
)

// Facility is the canonical record produced by every collector
type Facility struct {
	ID         string              `json:"id"`
	Type       string              `json:"type"`
	Attributes *FacilityAttributes `json:"attributes,omitempty"`
}

// NewFacility builds a facility, collapsing empty attributes to nil
func NewFacility(id string, attributes *FacilityAttributes) *Facility {
	return &Facility{
		ID:         id,
		Type:       FacilityResourceType,
		Attributes: PresentOrNil(attributes),
	}
}

// FacilityAttributes is the body of a facility
type FacilityAttributes struct {
	Name           string        `json:"name,omitempty"`
	FacilityType   FacilityType  `json:"facility_type,omitempty"`
	Classification string        `json:"classification,omitempty"`
	Latitude       *float64      `json:"lat,omitempty"`
	Longitude      *float64      `json:"long,omitempty"`
	Website        string        `json:"website,omitempty"`
	Address        *Addresses    `json:"address,omitempty"`
	Phone          *Phone        `json:"phone,omitempty"`
	Hours          *Hours        `json:"hours,omitempty"`
	Services       *Services     `json:"services,omitempty"`
	Satisfaction   *Satisfaction `json:"satisfaction,omitempty"`
	WaitTimes      *WaitTimes    `json:"wait_times,omitempty"`
	Mobile         *bool         `json:"mobile,omitempty"`
	ActiveStatus   *ActiveStatus `json:"active_status,omitempty"`
	Visn           string        `json:"visn,omitempty"`
}

// IsEmpty ignores FacilityType, which every collector sets as a constant.
func (a *FacilityAttributes) IsEmpty() bool {
	if a == nil {
		return true
	}
	return utils.AllBlank(a.Name, a.Classification, a.Website, a.Visn) &&
		a.Latitude == nil &&
		a.Longitude == nil &&
		a.Address == nil &&
		a.Phone == nil &&
		a.Hours == nil &&
		a.Services == nil &&
		a.Satisfaction == nil &&
		a.WaitTimes == nil &&
		a.Mobile == nil &&
		a.ActiveStatus == nil
}

// Addresses holds the physical and mailing variants
type Addresses struct {
	Physical *Address `json:"physical,omitempty"`
	Mailing  *Address `json:"mailing,omitempty"`
}

func (a *Addresses) IsEmpty() bool {
	return a == nil || (a.Physical == nil && a.Mailing == nil)
}

// Address represents a postal address
type Address struct {
	Address1 string `json:"address_1,omitempty"`
	Address2 string `json:"address_2,omitempty"`
	Address3 string `json:"address_3,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Zip      string `json:"zip,omitempty"`
}

func (a *Address) IsEmpty() bool {
	return a == nil || utils.AllBlank(a.Address1, a.Address2, a.Address3, a.City, a.State, a.Zip)
}

// Phone holds the published phone numbers of a facility
type Phone struct {
	Main                  string `json:"main,omitempty"`
	Fax                   string `json:"fax,omitempty"`
	Pharmacy              string `json:"pharmacy,omitempty"`
	AfterHours            string `json:"after_hours,omitempty"`
	PatientAdvocate       string `json:"patient_advocate,omitempty"`
	MentalHealthClinic    string `json:"mental_health_clinic,omitempty"`
	EnrollmentCoordinator string `json:"enrollment_coordinator,omitempty"`
}

func (p *Phone) IsEmpty() bool {
	return p == nil || utils.AllBlank(
		p.Main, p.Fax, p.Pharmacy, p.AfterHours,
		p.PatientAdvocate, p.MentalHealthClinic, p.EnrollmentCoordinator,
	)
}

// Hours holds the opening hours of each weekday
type Hours struct {
	Monday    string `json:"monday,omitempty"`
	Tuesday   string `json:"tuesday,omitempty"`
	Wednesday string `json:"wednesday,omitempty"`
	Thursday  string `json:"thursday,omitempty"`
	Friday    string `json:"friday,omitempty"`
	Saturday  string `json:"saturday,omitempty"`
	Sunday    string `json:"sunday,omitempty"`
}

func (h *Hours) IsEmpty() bool {
	return h == nil || utils.AllBlank(h.Monday, h.Tuesday, h.Wednesday, h.Thursday, h.Friday, h.Saturday, h.Sunday)
}

// EveryDay returns hours with the same value on all seven days
func EveryDay(value string) *Hours {
	return &Hours{
		Monday:    value,
		Tuesday:   value,
		Wednesday: value,
		Thursday:  value,
		Friday:    value,
		Saturday:  value,
		Sunday:    value,
	}
}
