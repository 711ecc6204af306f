package cdw

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

const (
	mentalHealthContactsTable = "VHA_Mental_Health_Contact_Info"
	stopCodesTable            = "VSSC_ClinicalServices"
	vastTable                 = "VAST"
	vetCenterAbbreviation     = "VTCR"
)

// MentalHealthContact is one row of the mental health contact table
type MentalHealthContact struct {
	StationNumber string
	MHPhone       string
	Extension     string
}

// StopCodeRow is one row of the clinical services table. AvgWaitTimeNew is
// kept as text; the collector decides what to do with malformed values.
type StopCodeRow struct {
	Sta6a               string
	PrimaryStopCode     string
	PrimaryStopCodeName string
	AvgWaitTimeNew      string
}

// VastRow is one vet center row of the VAST facility table
type VastRow struct {
	StationNumber string
	StationName   string
	Address1      string
	Address2      string
	Address3      string
	City          string
	State         string
	Zip           string
	Zip4          string
	Phone         string
	Latitude      *float64
	Longitude     *float64
	Monday        string
	Tuesday       string
	Wednesday     string
	Thursday      string
	Friday        string
	Saturday      string
	Sunday        string
}

// Client reads the corporate data warehouse tables
type Client struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewClient creates a CDW client
func NewClient(client *postgres.Client) *Client {
	return &Client{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func (c *Client) table(name string) exp.IdentifierExpression {
	if schema := c.client.Schema(); schema != "" {
		return goqu.S(schema).Table(name)
	}
	return goqu.T(name)
}

// ListMentalHealthContacts returns every mental health contact row
func (c *Client) ListMentalHealthContacts(ctx context.Context) ([]MentalHealthContact, error) {
	query, args, err := c.db.From(c.table(mentalHealthContactsTable)).
		Select(goqu.C("StationNumber"), goqu.C("MHPhone"), goqu.C("Extension")).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build mental health contact query", err)
	}

	rows, err := c.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to query mental health contacts", err)
	}
	defer rows.Close()

	var contacts []MentalHealthContact
	for rows.Next() {
		var station, phone, extension sql.NullString
		if err := rows.Scan(&station, &phone, &extension); err != nil {
			return nil, apperrors.NewExternalError("failed to scan mental health contact", err)
		}
		contacts = append(contacts, MentalHealthContact{
			StationNumber: station.String,
			MHPhone:       phone.String,
			Extension:     extension.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read mental health contacts", err)
	}
	return contacts, nil
}

// ListStopCodes returns every clinical service stop code row
func (c *Client) ListStopCodes(ctx context.Context) ([]StopCodeRow, error) {
	query, args, err := c.db.From(c.table(stopCodesTable)).
		Select(
			goqu.C("Sta6a"),
			goqu.C("PrimaryStopCode"),
			goqu.C("PrimaryStopCodeName"),
			goqu.C("AvgWaitTimeNew"),
		).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build stop code query", err)
	}

	rows, err := c.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to query stop codes", err)
	}
	defer rows.Close()

	var stopCodes []StopCodeRow
	for rows.Next() {
		var sta6a, code, name, wait sql.NullString
		if err := rows.Scan(&sta6a, &code, &name, &wait); err != nil {
			return nil, apperrors.NewExternalError("failed to scan stop code", err)
		}
		stopCodes = append(stopCodes, StopCodeRow{
			Sta6a:               sta6a.String,
			PrimaryStopCode:     code.String,
			PrimaryStopCodeName: name.String,
			AvgWaitTimeNew:      wait.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read stop codes", err)
	}
	return stopCodes, nil
}

// ListVetCenters returns the VAST rows of every vet center
func (c *Client) ListVetCenters(ctx context.Context) ([]VastRow, error) {
	query, args, err := c.db.From(c.table(vastTable)).
		Select(
			goqu.C("sta_no"), goqu.C("station_name"),
			goqu.C("address1"), goqu.C("address2"), goqu.C("address3"),
			goqu.C("city"), goqu.C("st"), goqu.C("zip"), goqu.C("zip4"),
			goqu.C("sta_phone"), goqu.C("lat"), goqu.C("lon"),
			goqu.C("monday"), goqu.C("tuesday"), goqu.C("wednesday"), goqu.C("thursday"),
			goqu.C("friday"), goqu.C("saturday"), goqu.C("sunday"),
		).
		Where(goqu.Ex{"s_abbr": vetCenterAbbreviation}).
		Order(goqu.C("sta_no").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build vet center query", err)
	}

	rows, err := c.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to query vet centers", err)
	}
	defer rows.Close()

	var vetCenters []VastRow
	for rows.Next() {
		var (
			station, name, address1, address2, address3 sql.NullString
			city, state, zip, zip4, phone               sql.NullString
			lat, lon                                    sql.NullFloat64
			mon, tue, wed, thu, fri, sat, sun           sql.NullString
		)
		if err := rows.Scan(
			&station, &name, &address1, &address2, &address3,
			&city, &state, &zip, &zip4, &phone, &lat, &lon,
			&mon, &tue, &wed, &thu, &fri, &sat, &sun,
		); err != nil {
			return nil, apperrors.NewExternalError("failed to scan vet center", err)
		}
		vetCenters = append(vetCenters, VastRow{
			StationNumber: station.String,
			StationName:   name.String,
			Address1:      address1.String,
			Address2:      address2.String,
			Address3:      address3.String,
			City:          city.String,
			State:         state.String,
			Zip:           zip.String,
			Zip4:          zip4.String,
			Phone:         phone.String,
			Latitude:      nullFloat(lat),
			Longitude:     nullFloat(lon),
			Monday:        mon.String,
			Tuesday:       tue.String,
			Wednesday:     wed.String,
			Thursday:      thu.String,
			Friday:        fri.String,
			Saturday:      sat.String,
			Sunday:        sun.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read vet centers", err)
	}
	return vetCenters, nil
}

// Ping verifies the warehouse connection
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

func nullFloat(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}
