package cdw_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/cdw"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

func newClient(t *testing.T) (*cdw.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return cdw.NewClient(postgres.NewClientFromDB(db, "App")), mock
}

func TestListMentalHealthContacts(t *testing.T) {
	client, mock := newClient(t)

	rows := sqlmock.NewRows([]string{"StationNumber", "MHPhone", "Extension"}).
		AddRow("456", "555-555-1234", "0").
		AddRow("457", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "StationNumber", "MHPhone", "Extension" FROM "App"."VHA_Mental_Health_Contact_Info"`)).
		WillReturnRows(rows)

	contacts, err := client.ListMentalHealthContacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []cdw.MentalHealthContact{
		{StationNumber: "456", MHPhone: "555-555-1234", Extension: "0"},
		{StationNumber: "457"},
	}, contacts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListStopCodes(t *testing.T) {
	client, mock := newClient(t)

	rows := sqlmock.NewRows([]string{"Sta6a", "PrimaryStopCode", "PrimaryStopCodeName", "AvgWaitTimeNew"}).
		AddRow("666", "180", "DENTAL", "12.5").
		AddRow("666", "123", "NUTRITION", "")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "App"."VSSC_ClinicalServices"`)).WillReturnRows(rows)

	stopCodes, err := client.ListStopCodes(context.Background())
	require.NoError(t, err)
	require.Len(t, stopCodes, 2)
	assert.Equal(t, "12.5", stopCodes[0].AvgWaitTimeNew)
	assert.Equal(t, "NUTRITION", stopCodes[1].PrimaryStopCodeName)
}

func TestListVetCenters(t *testing.T) {
	client, mock := newClient(t)

	columns := []string{
		"sta_no", "station_name", "address1", "address2", "address3",
		"city", "st", "zip", "zip4", "sta_phone", "lat", "lon",
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	}
	rows := sqlmock.NewRows(columns).AddRow(
		"0101V", "Boston Vet Center", "Boston Vet Center", "7 Drydock Avenue", "Suite 2070",
		"Boston", "MA", "02210", "0000", "857-203-6461", 42.34, -71.03,
		"800AM-430PM", "800AM-430PM", "800AM-430PM", "800AM-430PM", "800AM-430PM", "-", nil,
	)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "App"."VAST" WHERE ("s_abbr" = 'VTCR') ORDER BY "sta_no" ASC`)).
		WillReturnRows(rows)

	vetCenters, err := client.ListVetCenters(context.Background())
	require.NoError(t, err)
	require.Len(t, vetCenters, 1)

	row := vetCenters[0]
	assert.Equal(t, "0101V", row.StationNumber)
	assert.Equal(t, "7 Drydock Avenue", row.Address2)
	require.NotNil(t, row.Latitude)
	assert.Equal(t, 42.34, *row.Latitude)
	assert.Equal(t, "-", row.Saturday)
	assert.Equal(t, "", row.Sunday)
}

func TestQueryFailureIsExternal(t *testing.T) {
	client, mock := newClient(t)

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("connection reset"))

	_, err := client.ListStopCodes(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}
