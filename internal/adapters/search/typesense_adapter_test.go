package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
)

func ptr[T any](v T) *T {
	return &v
}

func TestBuildFacilityDocument(t *testing.T) {
	active := entities.ActiveStatusActive
	facility := entities.NewFacility("vha_666", &entities.FacilityAttributes{
		Name:           "Manila VA Clinic",
		FacilityType:   entities.FacilityTypeHealth,
		Classification: "Other Outpatient Services (OOS)",
		Latitude:       ptr(14.544),
		Longitude:      ptr(120.99),
		Address: &entities.Addresses{
			Physical: &entities.Address{City: "Pasay City", State: "PH"},
		},
		Services: &entities.Services{
			Health: []entities.HealthService{entities.HealthServicePrimaryCare, entities.HealthServiceMentalHealthCare},
		},
		ActiveStatus: &active,
		Visn:         "21",
	})

	doc := buildFacilityDocument(entities.DomainHealth, facility, 1700000000)

	assert.Equal(t, "vha_666", doc["id"])
	assert.Equal(t, "Manila VA Clinic", doc["name"])
	assert.Equal(t, "health", doc["domain"])
	assert.Equal(t, "va_health_facility", doc["facility_type"])
	assert.Equal(t, "Pasay City", doc["city"])
	assert.Equal(t, "PH", doc["state"])
	assert.Equal(t, []float64{14.544, 120.99}, doc["location"])
	assert.Equal(t, []string{"PrimaryCare", "MentalHealthCare"}, doc["health_services"])
	assert.Equal(t, true, doc["active"])
	assert.Equal(t, "21", doc["visn"])
	assert.Equal(t, int64(1700000000), doc["collected_at"])
	assert.NotContains(t, doc, "benefits_services")
}

func TestBuildFacilityDocumentPartial(t *testing.T) {
	t.Run("nil facility", func(t *testing.T) {
		assert.Nil(t, buildFacilityDocument(entities.DomainHealth, nil, 0))
	})

	t.Run("no attributes", func(t *testing.T) {
		doc := buildFacilityDocument(entities.DomainVetCenters, entities.NewFacility("vc_0101V", nil), 5)
		require.NotNil(t, doc)
		assert.Equal(t, "", doc["name"])
		assert.Equal(t, "vet_centers", doc["domain"])
		assert.NotContains(t, doc, "location")
	})

	t.Run("latitude without longitude", func(t *testing.T) {
		facility := entities.NewFacility("nca_s1", &entities.FacilityAttributes{Name: "x", Latitude: ptr(1.0)})
		doc := buildFacilityDocument(entities.DomainStateCemeteries, facility, 5)
		assert.NotContains(t, doc, "location")
	})
}

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name     string
		params   providers.SearchParams
		expected string
	}{
		{name: "empty", params: providers.SearchParams{}, expected: ""},
		{name: "domain", params: providers.SearchParams{Domain: entities.DomainBenefits}, expected: "domain:=benefits"},
		{
			name:     "all",
			params:   providers.SearchParams{Domain: entities.DomainHealth, FacilityType: entities.FacilityTypeHealth, State: " ny "},
			expected: "domain:=health && facility_type:=va_health_facility && state:=NY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildFilter(tt.params))
		})
	}
}

func TestHitFromDocument(t *testing.T) {
	hit := hitFromDocument(map[string]interface{}{
		"id":            "nca_888",
		"name":          "Calverton National Cemetery",
		"domain":        "cemeteries",
		"facility_type": "va_cemetery",
		"state":         "NY",
		"location":      []interface{}{40.93, -72.81},
		"collected_at":  float64(1),
	})

	assert.Equal(t, "nca_888", hit.ID)
	assert.Equal(t, "Calverton National Cemetery", hit.Name)
	assert.Equal(t, "NY", hit.State)
	require.NotNil(t, hit.Latitude)
	assert.Equal(t, 40.93, *hit.Latitude)
	assert.Equal(t, -72.81, *hit.Longitude)
	assert.Empty(t, hit.City)
}

func TestHitFromDocumentMalformedLocation(t *testing.T) {
	hit := hitFromDocument(map[string]interface{}{"id": "x", "location": []interface{}{"a", 1.0}})
	assert.Nil(t, hit.Latitude)
	assert.Nil(t, hit.Longitude)
}
