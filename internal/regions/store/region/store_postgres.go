package region

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"regionx/internal/regions/models"
	"regionx/pkg/platform/sentinel"
	txcontext "regionx/pkg/platform/tx"
)

// PostgresStore persists regions in the regions table. The record is stored
// as its status, the pending commitment and the SCALE-encoded record value.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Find(ctx context.Context, id models.RegionID) (*models.Region, error) {
	var (
		owner      []byte
		locked     bool
		status     string
		commitment []byte
		value      []byte
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT owner, locked, record_status, commitment, record_value
		FROM regions
		WHERE region_id = $1
	`, id.Encode()).Scan(&owner, &locked, &status, &commitment, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find region: %w", err)
	}

	region := &models.Region{Locked: locked}
	copy(region.Owner[:], owner)
	switch models.RecordStatus(status) {
	case models.RecordPending:
		var c models.Commitment
		copy(c[:], commitment)
		region.Record = models.PendingRecord{Commitment: c}
	case models.RecordAvailable:
		rec, err := models.DecodeRegionRecord(value)
		if err != nil {
			return nil, fmt.Errorf("decode stored record: %w", err)
		}
		region.Record = models.AvailableRecord{Record: rec}
	case models.RecordUnavailable:
		region.Record = models.UnavailableRecord{}
	default:
		return nil, fmt.Errorf("unknown record status %q: %w", status, sentinel.ErrInvalidState)
	}
	return region, nil
}

func (s *PostgresStore) Save(ctx context.Context, id models.RegionID, region *models.Region) error {
	var commitment, value []byte
	switch r := region.Record.(type) {
	case models.PendingRecord:
		commitment = r.Commitment[:]
	case models.AvailableRecord:
		value = r.Record.Encode()
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO regions (region_id, begin_ts, core, owner, locked, record_status, commitment, record_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (region_id) DO UPDATE SET
			owner = EXCLUDED.owner,
			locked = EXCLUDED.locked,
			record_status = EXCLUDED.record_status,
			commitment = EXCLUDED.commitment,
			record_value = EXCLUDED.record_value
	`, id.Encode(), int64(id.Begin), int32(id.Core), region.Owner[:], region.Locked,
		string(region.Record.Status()), commitment, value)
	if err != nil {
		return fmt.Errorf("save region: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id models.RegionID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM regions WHERE region_id = $1`, id.Encode())
	if err != nil {
		return fmt.Errorf("delete region: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete region: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.RecordStatus) ([]models.RegionID, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT region_id FROM regions
		WHERE record_status = $1
		ORDER BY begin_ts, core
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()

	var ids []models.RegionID
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan region id: %w", err)
		}
		id, err := models.DecodeRegionID(raw)
		if err != nil {
			return nil, fmt.Errorf("decode region id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
