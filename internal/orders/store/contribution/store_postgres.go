package contribution

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"regionx/internal/orders/models"
	"regionx/pkg/domain"
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

func parseBalance(raw string) (domain.Balance, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance: %w", err)
	}
	return domain.Balance(v), nil
}

func formatBalance(b domain.Balance) string {
	return strconv.FormatUint(uint64(b), 10)
}

func (s *PostgresStore) Contribution(ctx context.Context, order domain.OrderID, who domain.AccountID) (domain.Balance, error) {
	var raw string
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT amount::text FROM contributions WHERE order_id = $1 AND contributor = $2
	`, int64(order), who[:]).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find contribution: %w", err)
	}
	return parseBalance(raw)
}

func (s *PostgresStore) Total(ctx context.Context, order domain.OrderID) (domain.Balance, error) {
	var raw string
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT amount::text FROM total_contributions WHERE order_id = $1
	`, int64(order)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find total contribution: %w", err)
	}
	return parseBalance(raw)
}

func (s *PostgresStore) SetContribution(ctx context.Context, order domain.OrderID, who domain.AccountID, amount domain.Balance) error {
	db := s.execer(ctx)
	var err error
	if amount == 0 {
		_, err = db.ExecContext(ctx, `DELETE FROM contributions WHERE order_id = $1 AND contributor = $2`, int64(order), who[:])
	} else {
		_, err = db.ExecContext(ctx, `
			INSERT INTO contributions (order_id, contributor, amount)
			VALUES ($1, $2, $3::numeric)
			ON CONFLICT (order_id, contributor) DO UPDATE SET amount = EXCLUDED.amount
		`, int64(order), who[:], formatBalance(amount))
	}
	if err != nil {
		return fmt.Errorf("set contribution: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetTotal(ctx context.Context, order domain.OrderID, amount domain.Balance) error {
	db := s.execer(ctx)
	var err error
	if amount == 0 {
		_, err = db.ExecContext(ctx, `DELETE FROM total_contributions WHERE order_id = $1`, int64(order))
	} else {
		_, err = db.ExecContext(ctx, `
			INSERT INTO total_contributions (order_id, amount)
			VALUES ($1, $2::numeric)
			ON CONFLICT (order_id) DO UPDATE SET amount = EXCLUDED.amount
		`, int64(order), formatBalance(amount))
	}
	if err != nil {
		return fmt.Errorf("set total contribution: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, order domain.OrderID) ([]models.Contribution, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT contributor, amount::text FROM contributions
		WHERE order_id = $1
		ORDER BY contributor
	`, int64(order))
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var out []models.Contribution
	for rows.Next() {
		var (
			who []byte
			raw string
		)
		if err := rows.Scan(&who, &raw); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		c := models.Contribution{}
		if c.Who, err = domain.AccountFromBytes(who); err != nil {
			return nil, fmt.Errorf("decode contributor: %w", err)
		}
		if c.Amount, err = parseBalance(raw); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Clear(ctx context.Context, order domain.OrderID) error {
	db := s.execer(ctx)
	if _, err := db.ExecContext(ctx, `DELETE FROM contributions WHERE order_id = $1`, int64(order)); err != nil {
		return fmt.Errorf("clear contributions: %w", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM total_contributions WHERE order_id = $1`, int64(order)); err != nil {
		return fmt.Errorf("clear total contribution: %w", err)
	}
	return nil
}
