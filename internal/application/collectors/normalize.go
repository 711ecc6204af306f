package collectors

import (
	"strconv"
	"strings"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/pkg/utils"
)

const (
	closed = "Closed"

	// Wait times at or above this value are upstream placeholders
	maxWaitTime = 999
)

var healthClassifications = map[string]string{
	"1": "VA Medical Center (VAMC)",
	"2": "Health Care Center (HCC)",
	"3": "Multi-Specialty CBOC",
	"4": "Primary Care CBOC",
	"5": "Other Outpatient Services (OOS)",
	"7": "Residential Care Site (MH RRTP/DRRTP) (Stand-Alone)",
	"8": "Extended Care Site (Community Living Center) (Stand-Alone)",
}

// healthClassification maps a CoC classification id. Unknown codes pass
// through; a blank code falls back to the feature code.
func healthClassification(code, featureCode string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return strings.TrimSpace(featureCode)
	}
	if classification, ok := healthClassifications[code]; ok {
		return classification
	}
	return code
}

// hoursToClosed maps blank and "-" to Closed and keeps anything else as is
func hoursToClosed(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == "-" {
		return closed
	}
	return value
}

// closedHours builds the hours of a week, or nil when every day is blank
func closedHours(monday, tuesday, wednesday, thursday, friday, saturday, sunday string) *entities.Hours {
	if utils.AllBlank(monday, tuesday, wednesday, thursday, friday, saturday, sunday) {
		return nil
	}
	return &entities.Hours{
		Monday:    hoursToClosed(monday),
		Tuesday:   hoursToClosed(tuesday),
		Wednesday: hoursToClosed(wednesday),
		Thursday:  hoursToClosed(thursday),
		Friday:    hoursToClosed(friday),
		Saturday:  hoursToClosed(saturday),
		Sunday:    hoursToClosed(sunday),
	}
}

// trimPhone removes the dangling lowercase extension marker some sources
// append. The marker must stand alone or follow a digit, so letters of a
// vanity number are kept.
func trimPhone(value string) string {
	phone := strings.TrimSpace(value)
	rest, found := strings.CutSuffix(phone, "x")
	if !found {
		return phone
	}
	if rest == "" {
		return ""
	}
	if last := rest[len(rest)-1]; last == ' ' || last == '\t' || (last >= '0' && last <= '9') {
		return strings.TrimSpace(rest)
	}
	return phone
}

// zipPlus4 appends zip4 unless it is blank or all zeros. Numeric zips
// that lost their leading zeros in transit are padded back.
func zipPlus4(zip, zip4 string) string {
	zip = padDigits(strings.TrimSpace(zip), 5)
	zip4 = padDigits(strings.TrimSpace(zip4), 4)
	if zip == "" || zip4 == "" || strings.Trim(zip4, "0") == "" {
		return zip
	}
	return zip + "-" + zip4
}

// padDigits left-pads an all-digit value with zeros up to width. Other
// values pass through.
func padDigits(value string, width int) string {
	if value == "" || len(value) >= width {
		return value
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return value
		}
	}
	return strings.Repeat("0", width-len(value)) + value
}

// websiteOrFallback prefers a source URL unless it is blank or the literal
// NULL some layers publish
func websiteOrFallback(url string, websites WebsiteIndex, facilityID string) string {
	url = strings.TrimSpace(url)
	if url == "" || strings.EqualFold(url, "NULL") {
		return websites.Lookup(facilityID)
	}
	return url
}

// sliceDate parses the ISO date prefix of a slice end date. Values of nine
// characters or fewer never hold a full date.
func sliceDate(value string) (entities.Date, bool) {
	value = strings.TrimSpace(value)
	if len(value) <= 9 {
		return entities.Date{}, false
	}
	date, err := entities.ParseDate(value[:10])
	if err != nil {
		return entities.Date{}, false
	}
	return date, true
}

// latestDate returns the most recent parseable slice date, or nil
func latestDate(values []string) *entities.Date {
	var latest *entities.Date
	for _, value := range values {
		date, ok := sliceDate(value)
		if !ok {
			continue
		}
		if latest == nil || date.After(latest.Time) {
			d := date
			latest = &d
		}
	}
	return latest
}

// validWaitTime keeps wait times below the placeholder threshold
func validWaitTime(value *float64) *float64 {
	if value == nil || *value >= maxWaitTime {
		return nil
	}
	v := *value
	return &v
}

// parseFloat returns nil for blank or malformed numbers
func parseFloat(value string) (*float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

// mobileFlag maps the upstream 1/0 mobile marker
func mobileFlag(value string) *bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true":
		mobile := true
		return &mobile
	case "0", "false":
		mobile := false
		return &mobile
	}
	return nil
}

// activeStatus maps the POD code to an active status
func activeStatus(pod string) *entities.ActiveStatus {
	switch utils.UpperTrim(pod) {
	case string(entities.ActiveStatusActive):
		status := entities.ActiveStatusActive
		return &status
	case string(entities.ActiveStatusDeactivated):
		status := entities.ActiveStatusDeactivated
		return &status
	}
	return nil
}

func addressOrNil(address *entities.Address) *entities.Addresses {
	return addressesOrNil(address, nil)
}

func addressesOrNil(physical, mailing *entities.Address) *entities.Addresses {
	return entities.PresentOrNil(&entities.Addresses{
		Physical: entities.PresentOrNil(physical),
		Mailing:  entities.PresentOrNil(mailing),
	})
}
