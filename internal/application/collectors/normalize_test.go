package collectors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
)

func TestHoursToClosed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "Closed"},
		{"blank", "   ", "Closed"},
		{"dash", "-", "Closed"},
		{"padded dash", " - ", "Closed"},
		{"hours", "800AM-430PM", "800AM-430PM"},
		{"verbatim", " 24/7 ", " 24/7 "},
		{"closed", "Closed", "Closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hoursToClosed(tt.input))
		})
	}
}

func TestClosedHours(t *testing.T) {
	assert.Nil(t, closedHours("", " ", "", "", "", "", ""))

	hours := closedHours("800AM-430PM", "-", "", "800AM-430PM", "800AM-430PM", "", "")
	require.NotNil(t, hours)
	assert.Equal(t, "800AM-430PM", hours.Monday)
	assert.Equal(t, "Closed", hours.Tuesday)
	assert.Equal(t, "Closed", hours.Wednesday)
	assert.Equal(t, "Closed", hours.Sunday)

	allDashes := closedHours("-", "-", "-", "-", "-", "-", "-")
	require.NotNil(t, allDashes)
	assert.Equal(t, entities.EveryDay("Closed"), allDashes)
}

func TestHealthClassification(t *testing.T) {
	tests := []struct {
		code        string
		featureCode string
		want        string
	}{
		{"1", "", "VA Medical Center (VAMC)"},
		{"2", "", "Health Care Center (HCC)"},
		{"3", "", "Multi-Specialty CBOC"},
		{"4", "", "Primary Care CBOC"},
		{"5", "VAMC", "Other Outpatient Services (OOS)"},
		{"6", "", "6"},
		{"7", "", "Residential Care Site (MH RRTP/DRRTP) (Stand-Alone)"},
		{"8", "", "Extended Care Site (Community Living Center) (Stand-Alone)"},
		{"42", "", "42"},
		{" ", "OOS", "OOS"},
		{"", "", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, healthClassification(tt.code, tt.featureCode), tt.code)
	}
}

func TestValidWaitTime(t *testing.T) {
	assert.Nil(t, validWaitTime(nil))
	assert.Nil(t, validWaitTime(float(999)))
	assert.Nil(t, validWaitTime(float(1000.5)))
	assert.Equal(t, float(998.99), validWaitTime(float(998.99)))
	assert.Equal(t, float(0), validWaitTime(float(0)))
	assert.Equal(t, float(12.345), validWaitTime(float(12.345)))
}

func TestTrimPhone(t *testing.T) {
	assert.Equal(t, "632-550-3888", trimPhone("632-550-3888 x"))
	assert.Equal(t, "632-550-3888", trimPhone(" 632-550-3888x "))
	assert.Equal(t, "632-550-3888 x 12", trimPhone("632-550-3888 x 12"))
	assert.Equal(t, "", trimPhone(" x "))
	assert.Equal(t, "1-800-VA-FAX", trimPhone("1-800-VA-FAX"))
	assert.Equal(t, "1-800-VA-FAX", trimPhone("1-800-VA-FAX x"))
	assert.Equal(t, "207-623-5760 X", trimPhone("207-623-5760 X"))
	assert.Equal(t, "207-623-5760 x", trimPhone("207-623-5760 x x"))
	assert.Equal(t, "", trimPhone(""))
}

func TestZipPlus4(t *testing.T) {
	assert.Equal(t, "01302", zipPlus4("01302", "0000"))
	assert.Equal(t, "04330", zipPlus4("04330", ""))
	assert.Equal(t, "04330-6000", zipPlus4("04330", "6000"))
	assert.Equal(t, "", zipPlus4(" ", "6000"))
	assert.Equal(t, "01302", zipPlus4("1302", "0"))
	assert.Equal(t, "04330-0123", zipPlus4("4330", "123"))
	assert.Equal(t, "K1A 0B1", zipPlus4("K1A 0B1", ""))
}

func TestSliceDate(t *testing.T) {
	date, ok := sliceDate("2019-06-20T10:41:00")
	require.True(t, ok)
	assert.Equal(t, entities.NewDate(2019, time.June, 20), date)

	_, ok = sliceDate("2019-06-2")
	assert.False(t, ok)

	_, ok = sliceDate("not-a-date-at-all")
	assert.False(t, ok)
}

func TestLatestDate(t *testing.T) {
	latest := latestDate([]string{"2018-01-05T00:00:00", "2019-06-20", "short", "", "2019-02-01"})
	require.NotNil(t, latest)
	assert.Equal(t, "2019-06-20", latest.String())

	assert.Nil(t, latestDate([]string{"short", ""}))
	assert.Nil(t, latestDate(nil))
}

func TestWebsiteOrFallback(t *testing.T) {
	websites := NewWebsiteIndex(map[string]string{"nca_088": "https://www.cem.va.gov/cems/nchp/togus.asp"})

	assert.Equal(t, "https://example.org", websiteOrFallback(" https://example.org ", websites, "nca_088"))
	assert.Equal(t, "https://www.cem.va.gov/cems/nchp/togus.asp", websiteOrFallback("NULL", websites, "nca_088"))
	assert.Equal(t, "https://www.cem.va.gov/cems/nchp/togus.asp", websiteOrFallback("", websites, "NCA_088"))
	assert.Equal(t, "", websiteOrFallback("null", websites, "nca_999"))
}

func TestMobileAndActiveStatus(t *testing.T) {
	assert.Equal(t, flag(true), mobileFlag("1"))
	assert.Equal(t, flag(false), mobileFlag("0"))
	assert.Nil(t, mobileFlag(""))
	assert.Nil(t, mobileFlag("2"))

	active := activeStatus("a")
	require.NotNil(t, active)
	assert.Equal(t, entities.ActiveStatusActive, *active)

	deactivated := activeStatus(" T ")
	require.NotNil(t, deactivated)
	assert.Equal(t, entities.ActiveStatusDeactivated, *deactivated)

	assert.Nil(t, activeStatus("X"))
	assert.Nil(t, activeStatus(""))
}
