package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/repositories"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

const (
	snapshotsTable = "facility_snapshots"

	// Rows per INSERT statement
	insertBatchSize = 500
)

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS %s (
	id            TEXT PRIMARY KEY,
	domain        TEXT NOT NULL,
	run_id        TEXT NOT NULL,
	facility_type TEXT,
	name          TEXT,
	attributes    JSONB,
	collected_at  TIMESTAMPTZ NOT NULL
)`

// FacilitySnapshotAdapter implements FacilitySnapshotRepository
type FacilitySnapshotAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFacilitySnapshotAdapter creates a new facility snapshot adapter
func NewFacilitySnapshotAdapter(client *postgres.Client) *FacilitySnapshotAdapter {
	return &FacilitySnapshotAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var _ repositories.FacilitySnapshotRepository = (*FacilitySnapshotAdapter)(nil)

func (a *FacilitySnapshotAdapter) table() exp.IdentifierExpression {
	if schema := a.client.Schema(); schema != "" {
		return goqu.S(schema).Table(snapshotsTable)
	}
	return goqu.T(snapshotsTable)
}

func (a *FacilitySnapshotAdapter) qualifiedName() string {
	if schema := a.client.Schema(); schema != "" {
		return fmt.Sprintf("%q.%q", schema, snapshotsTable)
	}
	return fmt.Sprintf("%q", snapshotsTable)
}

// EnsureSchema creates the snapshot table when it does not exist
func (a *FacilitySnapshotAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, fmt.Sprintf(createSnapshotsTable, a.qualifiedName())); err != nil {
		return apperrors.NewInternalError("failed to create snapshot table", err)
	}
	return nil
}

// ReplaceDomain deletes the stored facilities of the domain and inserts the
// snapshot in one transaction
func (a *FacilitySnapshotAdapter) ReplaceDomain(ctx context.Context, snapshot *entities.DomainSnapshot) error {
	records := make([]interface{}, 0, len(snapshot.Facilities))
	for _, facility := range snapshot.Facilities {
		record, err := snapshotRecord(snapshot, facility)
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin snapshot transaction", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			log.Warn().Err(err).Str("domain", string(snapshot.Domain)).Msg("snapshot rollback failed")
		}
	}()

	query, args, err := a.db.Delete(a.table()).
		Where(goqu.Ex{"domain": string(snapshot.Domain)}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to delete previous snapshot", err)
	}

	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}
		query, args, err := a.db.Insert(a.table()).Rows(records[start:end]...).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to insert snapshot", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit snapshot", err)
	}
	return nil
}

func snapshotRecord(snapshot *entities.DomainSnapshot, facility *entities.Facility) (goqu.Record, error) {
	record := goqu.Record{
		"id":            facility.ID,
		"domain":        string(snapshot.Domain),
		"run_id":        snapshot.RunID,
		"facility_type": nil,
		"name":          nil,
		"attributes":    nil,
		"collected_at":  snapshot.CollectedAt,
	}
	if facility.Attributes == nil {
		return record, nil
	}

	attributes, err := json.Marshal(facility.Attributes)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to encode facility %s", facility.ID), err)
	}
	record["facility_type"] = sql.NullString{String: string(facility.Attributes.FacilityType), Valid: facility.Attributes.FacilityType != ""}
	record["name"] = sql.NullString{String: facility.Attributes.Name, Valid: facility.Attributes.Name != ""}
	record["attributes"] = string(attributes)
	return record, nil
}

// GetByID retrieves a stored facility by ID
func (a *FacilitySnapshotAdapter) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	query, args, err := a.db.From(a.table()).
		Select("id", "attributes").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var (
		facilityID string
		attributes sql.NullString
	)
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&facilityID, &attributes)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get facility", err)
	}

	return decodeFacility(facilityID, attributes)
}

// ListByDomain retrieves the stored facilities of a domain ordered by ID
func (a *FacilitySnapshotAdapter) ListByDomain(ctx context.Context, domain entities.Domain) ([]*entities.Facility, error) {
	query, args, err := a.db.From(a.table()).
		Select("id", "attributes").
		Where(goqu.Ex{"domain": string(domain)}).
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list facilities", err)
	}
	defer rows.Close()

	facilities := []*entities.Facility{}
	for rows.Next() {
		var (
			facilityID string
			attributes sql.NullString
		)
		if err := rows.Scan(&facilityID, &attributes); err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility", err)
		}
		facility, err := decodeFacility(facilityID, attributes)
		if err != nil {
			return nil, err
		}
		facilities = append(facilities, facility)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to list facilities", err)
	}
	return facilities, nil
}

func decodeFacility(id string, raw sql.NullString) (*entities.Facility, error) {
	if !raw.Valid || raw.String == "" {
		return entities.NewFacility(id, nil), nil
	}
	var attributes entities.FacilityAttributes
	if err := json.Unmarshal([]byte(raw.String), &attributes); err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to decode facility %s", id), err)
	}
	return entities.NewFacility(id, &attributes), nil
}
