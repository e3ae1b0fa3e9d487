package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"

	"regionx/internal/currency/models"
	"regionx/pkg/domain"
	txcontext "regionx/pkg/platform/tx"
)

// PostgresStore persists balances in the accounts table so escrowed
// contributions survive restarts alongside the contribution ledgers.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
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

func (s *PostgresStore) Find(ctx context.Context, who domain.AccountID) (models.Account, error) {
	var free, reserved string
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT free::text, reserved::text FROM accounts WHERE account = $1
	`, who[:]).Scan(&free, &reserved)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, nil
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("find account: %w", err)
	}
	var a models.Account
	if a.Free, err = parseBalance(free); err != nil {
		return models.Account{}, err
	}
	if a.Reserved, err = parseBalance(reserved); err != nil {
		return models.Account{}, err
	}
	return a, nil
}

func (s *PostgresStore) Save(ctx context.Context, who domain.AccountID, a models.Account) error {
	db := s.execer(ctx)
	var err error
	if a.Dead() {
		_, err = db.ExecContext(ctx, `DELETE FROM accounts WHERE account = $1`, who[:])
	} else {
		_, err = db.ExecContext(ctx, `
			INSERT INTO accounts (account, free, reserved)
			VALUES ($1, $2::numeric, $3::numeric)
			ON CONFLICT (account) DO UPDATE SET free = EXCLUDED.free, reserved = EXCLUDED.reserved
		`, who[:], formatBalance(a.Free), formatBalance(a.Reserved))
	}
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// Total sums every free and reserved balance, saturating at the maximum balance.
func (s *PostgresStore) Total(ctx context.Context) (domain.Balance, error) {
	var raw string
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(free + reserved), 0)::text FROM accounts
	`).Scan(&raw)
	if err != nil {
		return 0, fmt.Errorf("total issuance: %w", err)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return domain.Balance(math.MaxUint64), nil
	}
	if err != nil {
		return 0, fmt.Errorf("parse total issuance: %w", err)
	}
	return domain.Balance(v), nil
}
