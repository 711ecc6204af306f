package entities

import (
	"fmt"
	"strings"
	"time"
)

// HealthService is a clinical service offered by a health facility
type HealthService string

const (
	HealthServiceAudiology        HealthService = "Audiology"
	HealthServiceCardiology       HealthService = "Cardiology"
	HealthServiceDentalServices   HealthService = "DentalServices"
	HealthServiceDermatology      HealthService = "Dermatology"
	HealthServiceEmergencyCare    HealthService = "EmergencyCare"
	HealthServiceGastroenterology HealthService = "Gastroenterology"
	HealthServiceGynecology       HealthService = "Gynecology"
	HealthServiceMentalHealthCare HealthService = "MentalHealthCare"
	HealthServiceNutrition        HealthService = "Nutrition"
	HealthServiceOphthalmology    HealthService = "Ophthalmology"
	HealthServiceOptometry        HealthService = "Optometry"
	HealthServiceOrthopedics      HealthService = "Orthopedics"
	HealthServicePodiatry         HealthService = "Podiatry"
	HealthServicePrimaryCare      HealthService = "PrimaryCare"
	HealthServiceSpecialtyCare    HealthService = "SpecialtyCare"
	HealthServiceUrgentCare       HealthService = "UrgentCare"
	HealthServiceUrology          HealthService = "Urology"
	HealthServiceWomensHealth     HealthService = "WomensHealth"
)

// BenefitsService is a service offered by a regional benefits office
type BenefitsService string

const (
	BenefitsServiceApplyingForBenefits              BenefitsService = "ApplyingForBenefits"
	BenefitsServiceBurialClaimAssistance            BenefitsService = "BurialClaimAssistance"
	BenefitsServiceDisabilityClaimAssistance        BenefitsService = "DisabilityClaimAssistance"
	BenefitsServiceEBenefitsRegistrationAssistance  BenefitsService = "eBenefitsRegistrationAssistance"
	BenefitsServiceEducationAndCareerCounseling     BenefitsService = "EducationAndCareerCounseling"
	BenefitsServiceEducationClaimAssistance         BenefitsService = "EducationClaimAssistance"
	BenefitsServiceFamilyMemberClaimAssistance      BenefitsService = "FamilyMemberClaimAssistance"
	BenefitsServiceHomelessAssistance               BenefitsService = "HomelessAssistance"
	BenefitsServiceInsuranceClaimAssistance         BenefitsService = "InsuranceClaimAssistanceAndFinancialCounseling"
	BenefitsServiceIntegratedDisabilityEvaluation   BenefitsService = "IntegratedDisabilityEvaluationSystemAssistance"
	BenefitsServicePreDischargeClaimAssistance      BenefitsService = "PreDischargeClaimAssistance"
	BenefitsServiceTransitionAssistance             BenefitsService = "TransitionAssistance"
	BenefitsServiceUpdatingDirectDepositInformation BenefitsService = "UpdatingDirectDepositInformation"
	BenefitsServiceVAHomeLoanAssistance             BenefitsService = "VAHomeLoanAssistance"
	BenefitsServiceVocationalRehabilitation         BenefitsService = "VocationalRehabilitationAndEmploymentAssistance"
)

// OtherService covers services outside the health and benefits catalogs
type OtherService string

const (
	OtherServiceOnlineScheduling OtherService = "OnlineScheduling"
)

// Services lists what a facility offers
type Services struct {
	Health      []HealthService   `json:"health,omitempty"`
	Benefits    []BenefitsService `json:"benefits,omitempty"`
	Other       []OtherService    `json:"other,omitempty"`
	LastUpdated *Date             `json:"last_updated,omitempty"`
}

func (s *Services) IsEmpty() bool {
	return s == nil ||
		(len(s.Health) == 0 && len(s.Benefits) == 0 && len(s.Other) == 0 && s.LastUpdated == nil)
}

// Satisfaction holds patient satisfaction survey scores
type Satisfaction struct {
	Health        *PatientSatisfaction `json:"health,omitempty"`
	EffectiveDate *Date                `json:"effective_date,omitempty"`
}

// IsEmpty reports a group with neither scores nor an effective date. A
// date alone still publishes the group.
func (s *Satisfaction) IsEmpty() bool {
	return s == nil || (s.Health == nil && s.EffectiveDate == nil)
}

// PatientSatisfaction holds the SHEP score of each appointment category
type PatientSatisfaction struct {
	PrimaryCareUrgent    *float64 `json:"primary_care_urgent,omitempty"`
	PrimaryCareRoutine   *float64 `json:"primary_care_routine,omitempty"`
	SpecialtyCareUrgent  *float64 `json:"specialty_care_urgent,omitempty"`
	SpecialtyCareRoutine *float64 `json:"specialty_care_routine,omitempty"`
}

func (p *PatientSatisfaction) IsEmpty() bool {
	return p == nil ||
		(p.PrimaryCareUrgent == nil && p.PrimaryCareRoutine == nil &&
			p.SpecialtyCareUrgent == nil && p.SpecialtyCareRoutine == nil)
}

// WaitTimes holds the patient wait times of each health service
type WaitTimes struct {
	Health        []PatientWaitTime `json:"health,omitempty"`
	EffectiveDate *Date             `json:"effective_date,omitempty"`
}

func (w *WaitTimes) IsEmpty() bool {
	return w == nil || (len(w.Health) == 0 && w.EffectiveDate == nil)
}

// PatientWaitTime is the wait time in days for one service
type PatientWaitTime struct {
	Service     HealthService `json:"service"`
	New         *float64      `json:"new,omitempty"`
	Established *float64      `json:"established,omitempty"`
}

// Date is a calendar date serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate returns the given calendar day in UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value, err)
	}
	*d = parsed
	return nil
}
