package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"regionx/internal/orders/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/sentinel"
	txcontext "regionx/pkg/platform/tx"
)

// PostgresStore persists orders. The id sequence lives in the single-row
// order_sequence table so it advances inside the caller's transaction.
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

// NextOrderID reads and advances the sequence, saturating at the maximum id.
func (s *PostgresStore) NextOrderID(ctx context.Context) (domain.OrderID, error) {
	db := s.execer(ctx)
	var next int64
	err := db.QueryRowContext(ctx, `SELECT next_id FROM order_sequence WHERE id = 1 FOR UPDATE`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("read order sequence: %w", err)
	}
	if next < math.MaxUint32 {
		if _, err := db.ExecContext(ctx, `UPDATE order_sequence SET next_id = $1 WHERE id = 1`, next+1); err != nil {
			return 0, fmt.Errorf("advance order sequence: %w", err)
		}
	}
	return domain.OrderID(next), nil
}

func (s *PostgresStore) Find(ctx context.Context, id domain.OrderID) (*models.Order, error) {
	var (
		creator               []byte
		paraID                int64
		begin, end, occupancy int64
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT creator, para_id, req_begin, req_end, core_occupancy
		FROM orders
		WHERE order_id = $1
	`, int64(id)).Scan(&creator, &paraID, &begin, &end, &occupancy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	o := &models.Order{
		ParaID: domain.ParaID(paraID),
		Requirements: models.Requirements{
			Begin:         domain.Timeslice(begin),
			End:           domain.Timeslice(end),
			CoreOccupancy: uint32(occupancy),
		},
	}
	if o.Creator, err = domain.AccountFromBytes(creator); err != nil {
		return nil, fmt.Errorf("decode creator: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) Save(ctx context.Context, id domain.OrderID, order *models.Order) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO orders (order_id, creator, para_id, req_begin, req_end, core_occupancy)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_id) DO UPDATE SET
			creator = EXCLUDED.creator,
			para_id = EXCLUDED.para_id,
			req_begin = EXCLUDED.req_begin,
			req_end = EXCLUDED.req_end,
			core_occupancy = EXCLUDED.core_occupancy
	`, int64(id), order.Creator[:], int64(order.ParaID),
		int64(order.Requirements.Begin), int64(order.Requirements.End), int64(order.Requirements.CoreOccupancy))
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.OrderID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM orders WHERE order_id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListIDs(ctx context.Context) ([]domain.OrderID, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `SELECT order_id FROM orders ORDER BY order_id`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var ids []domain.OrderID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, domain.OrderID(id))
	}
	return ids, rows.Err()
}
