package collectors

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/accesstocare"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/arcgis"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/cdw"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/statecemetery"
)

type mockArcGIS struct {
	mock.Mock
}

func (m *mockArcGIS) QueryHealth(ctx context.Context) ([]arcgis.HealthFeature, error) {
	args := m.Called(ctx)
	features, _ := args.Get(0).([]arcgis.HealthFeature)
	return features, args.Error(1)
}

func (m *mockArcGIS) QueryBenefits(ctx context.Context) ([]arcgis.BenefitsFeature, error) {
	args := m.Called(ctx)
	features, _ := args.Get(0).([]arcgis.BenefitsFeature)
	return features, args.Error(1)
}

func (m *mockArcGIS) QueryCemeteries(ctx context.Context) ([]arcgis.CemeteryFeature, error) {
	args := m.Called(ctx)
	features, _ := args.Get(0).([]arcgis.CemeteryFeature)
	return features, args.Error(1)
}

type mockAccessToCare struct {
	mock.Mock
}

func (m *mockAccessToCare) ListAccessToCare(ctx context.Context) ([]accesstocare.AccessToCareEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]accesstocare.AccessToCareEntry)
	return entries, args.Error(1)
}

func (m *mockAccessToCare) ListAccessToPwt(ctx context.Context) ([]accesstocare.AccessToPwtEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]accesstocare.AccessToPwtEntry)
	return entries, args.Error(1)
}

type mockWarehouse struct {
	mock.Mock
}

func (m *mockWarehouse) ListMentalHealthContacts(ctx context.Context) ([]cdw.MentalHealthContact, error) {
	args := m.Called(ctx)
	contacts, _ := args.Get(0).([]cdw.MentalHealthContact)
	return contacts, args.Error(1)
}

func (m *mockWarehouse) ListStopCodes(ctx context.Context) ([]cdw.StopCodeRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]cdw.StopCodeRow)
	return rows, args.Error(1)
}

func (m *mockWarehouse) ListVetCenters(ctx context.Context) ([]cdw.VastRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]cdw.VastRow)
	return rows, args.Error(1)
}

type mockStateCemeteries struct {
	mock.Mock
}

func (m *mockStateCemeteries) ListStateCemeteries(ctx context.Context) ([]statecemetery.Cemetery, error) {
	args := m.Called(ctx)
	cemeteries, _ := args.Get(0).([]statecemetery.Cemetery)
	return cemeteries, args.Error(1)
}

type mockWebsites struct {
	mock.Mock
}

func (m *mockWebsites) Websites(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	websites, _ := args.Get(0).(map[string]string)
	return websites, args.Error(1)
}

func float(v float64) *float64 {
	return &v
}

func flag(v bool) *bool {
	return &v
}
