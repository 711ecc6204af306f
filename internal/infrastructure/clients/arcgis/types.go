package arcgis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FeatureCollection is the body of an ArcGIS feature query
type FeatureCollection[A any] struct {
	Features []Feature[A] `json:"features"`
	Error    *QueryError  `json:"error,omitempty"`
}

// QueryError is returned by ArcGIS with a 200 status when a query fails
type QueryError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("arcgis query error %d: %s", e.Code, e.Message)
}

// Feature is one point record
type Feature[A any] struct {
	Attributes A         `json:"attributes"`
	Geometry   *Geometry `json:"geometry"`
}

// Geometry holds the WGS84 point of a feature; X is longitude, Y latitude
type Geometry struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// Latitude returns the Y coordinate
func (g *Geometry) Latitude() *float64 {
	if g == nil {
		return nil
	}
	return g.Y
}

// Longitude returns the X coordinate
func (g *Geometry) Longitude() *float64 {
	if g == nil {
		return nil
	}
	return g.X
}

// FlexString accepts a JSON string, number or boolean. ArcGIS layers are
// not consistent about the type of code-like columns.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		*f = FlexString(normalizeNumber(n))
		return nil
	}
	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		*f = FlexString(strconv.FormatBool(b))
		return nil
	}
	return fmt.Errorf("unsupported value %s", string(trimmed))
}

func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

// normalizeNumber renders 5.0 as "5" so numeric codes match their table keys
func normalizeNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if fl, err := n.Float64(); err == nil && fl == float64(int64(fl)) {
		return strconv.FormatInt(int64(fl), 10)
	}
	return n.String()
}

// HealthAttributes are the columns of the VHA facility layer
type HealthAttributes struct {
	StationNum                 FlexString `json:"StationNum"`
	StationName                string     `json:"StationName"`
	CocClassificationID        FlexString `json:"CocClassificationId"`
	FeatureCode                string     `json:"S_Abbr"`
	Address1                   string     `json:"Address1"`
	Address2                   string     `json:"Address2"`
	Address3                   string     `json:"Address3"`
	Municipality               string     `json:"Municipality"`
	State                      string     `json:"State"`
	Zip                        FlexString `json:"Zip"`
	Zip4                       FlexString `json:"Zip4"`
	StaPhone                   string     `json:"StaPhone"`
	StaFax                     string     `json:"StaFax"`
	AfterHoursPhone            string     `json:"AfterHoursPhone"`
	PatientAdvocatePhone       string     `json:"PatientAdvocatePhone"`
	EnrollmentCoordinatorPhone string     `json:"EnrollmentCoordinatorPhone"`
	PharmacyPhone              string     `json:"PharmacyPhone"`
	Monday                     string     `json:"Monday"`
	Tuesday                    string     `json:"Tuesday"`
	Wednesday                  string     `json:"Wednesday"`
	Thursday                   string     `json:"Thursday"`
	Friday                     string     `json:"Friday"`
	Saturday                   string     `json:"Saturday"`
	Sunday                     string     `json:"Sunday"`
	Mobile                     FlexString `json:"Mobile"`
	Pod                        string     `json:"POD"`
	Visn                       FlexString `json:"Visn"`
}

// BenefitsAttributes are the columns of the VBA facility layer. Service
// columns hold YES or NO.
type BenefitsAttributes struct {
	FacilityNumber                   FlexString `json:"Facility_Number"`
	FacilityName                     string     `json:"Facility_Name"`
	FacilityType                     string     `json:"Facility_Type"`
	Address1                         string     `json:"Address_1"`
	Address2                         string     `json:"Address_2"`
	City                             string     `json:"City"`
	State                            string     `json:"State"`
	Zip                              FlexString `json:"Zip"`
	Phone                            string     `json:"Phone"`
	Fax                              string     `json:"Fax"`
	Monday                           string     `json:"Monday"`
	Tuesday                          string     `json:"Tuesday"`
	Wednesday                        string     `json:"Wednesday"`
	Thursday                         string     `json:"Thursday"`
	Friday                           string     `json:"Friday"`
	Saturday                         string     `json:"Saturday"`
	Sunday                           string     `json:"Sunday"`
	Website                          string     `json:"Website_URL"`
	ApplyingForBenefits              string     `json:"Applying_for_Benefits"`
	BurialClaimAssistance            string     `json:"Burial_Claim_assistance"`
	DisabilityClaimAssistance        string     `json:"Disability_Claim_assistance"`
	EBenefitsRegistration            string     `json:"eBenefits_Registration"`
	EducationAndCareerCounseling     string     `json:"Education_and_Career_Counseling"`
	EducationClaimAssistance         string     `json:"Education_Claim_Assistance"`
	FamilyMemberClaimAssistance      string     `json:"Family_Member_Claim_Assistance"`
	HomelessAssistance               string     `json:"Homeless_Assistance"`
	InsuranceClaimAssistance         string     `json:"Insurance_Assistance"`
	IntegratedDisabilityEvaluation   string     `json:"IDES"`
	PreDischargeClaimAssistance      string     `json:"Pre_Discharge_Claim_Assistance"`
	TransitionAssistance             string     `json:"Transition_Assistance"`
	UpdatingDirectDepositInformation string     `json:"Updating_Direct_Deposit_Informa"`
	VAHomeLoanAssistance             string     `json:"VA_Home_Loan_Assistance"`
	VocationalRehabilitation         string     `json:"Vocational_Rehabilitation_Emplo"`
}

// CemeteryAttributes are the columns of the NCA national cemetery layer
type CemeteryAttributes struct {
	SiteID                 FlexString `json:"SITE_ID"`
	FullName               string     `json:"FULL_NAME"`
	SiteType               string     `json:"SITE_TYPE"`
	SiteAddress1           string     `json:"SITE_ADDRESS1"`
	SiteAddress2           string     `json:"SITE_ADDRESS2"`
	SiteCity               string     `json:"SITE_CITY"`
	SiteState              string     `json:"SITE_STATE"`
	SiteZip                FlexString `json:"SITE_ZIP"`
	MailAddress1           string     `json:"MAIL_ADDRESS1"`
	MailAddress2           string     `json:"MAIL_ADDRESS2"`
	MailCity               string     `json:"MAIL_CITY"`
	MailState              string     `json:"MAIL_STATE"`
	MailZip                FlexString `json:"MAIL_ZIP"`
	Phone                  string     `json:"PHONE"`
	Fax                    string     `json:"FAX"`
	VisitationHoursWeekday string     `json:"VISITATION_HOURS_WEEKDAY"`
	VisitationHoursWeekend string     `json:"VISITATION_HOURS_WEEKEND"`
	Website                *string    `json:"Website"`
}

// HealthFeature is one VHA facility point
type HealthFeature = Feature[HealthAttributes]

// BenefitsFeature is one VBA facility point
type BenefitsFeature = Feature[BenefitsAttributes]

// CemeteryFeature is one national cemetery point
type CemeteryFeature = Feature[CemeteryAttributes]
