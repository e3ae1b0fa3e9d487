package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"regionx/internal/processor/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/sentinel"
	txcontext "regionx/pkg/platform/tx"
)

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

func (s *PostgresStore) Find(ctx context.Context, id regionmodels.RegionID) (*models.Assignment, error) {
	var (
		paraID int64
		sent   bool
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT para_id, sent FROM region_assignments WHERE region_id = $1
	`, id.Encode()).Scan(&paraID, &sent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &models.Assignment{RegionID: id, ParaID: domain.ParaID(paraID), Sent: sent}, nil
}

func (s *PostgresStore) Save(ctx context.Context, a *models.Assignment) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO region_assignments (region_id, begin_ts, core, para_id, sent)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (region_id) DO UPDATE SET
			para_id = EXCLUDED.para_id,
			sent = EXCLUDED.sent
	`, a.RegionID.Encode(), int64(a.RegionID.Begin), int32(a.RegionID.Core), int64(a.ParaID), a.Sent)
	if err != nil {
		return fmt.Errorf("save assignment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id regionmodels.RegionID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM region_assignments WHERE region_id = $1`, id.Encode())
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Assignment, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT region_id, para_id, sent FROM region_assignments ORDER BY begin_ts, core
	`)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()
	var out []models.Assignment
	for rows.Next() {
		var (
			raw    []byte
			paraID int64
			sent   bool
		)
		if err := rows.Scan(&raw, &paraID, &sent); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		id, err := regionmodels.DecodeRegionID(raw)
		if err != nil {
			return nil, fmt.Errorf("decode region id: %w", err)
		}
		out = append(out, models.Assignment{RegionID: id, ParaID: domain.ParaID(paraID), Sent: sent})
	}
	return out, rows.Err()
}
