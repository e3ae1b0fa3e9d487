package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"regionx/internal/market/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/sentinel"
	txcontext "regionx/pkg/platform/tx"
)

// PostgresStore persists listings. Prices are NUMERIC(20) so the full
// uint64 range round-trips.
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

func (s *PostgresStore) Find(ctx context.Context, id regionmodels.RegionID) (*models.Listing, error) {
	var (
		seller, recipient []byte
		price             string
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT seller, timeslice_price::text, sale_recipient
		FROM listings
		WHERE region_id = $1
	`, id.Encode()).Scan(&seller, &price, &recipient)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	p, err := strconv.ParseUint(price, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse listing price: %w", err)
	}
	l := &models.Listing{TimeslicePrice: domain.Balance(p)}
	if l.Seller, err = domain.AccountFromBytes(seller); err != nil {
		return nil, fmt.Errorf("decode seller: %w", err)
	}
	if l.SaleRecipient, err = domain.AccountFromBytes(recipient); err != nil {
		return nil, fmt.Errorf("decode sale recipient: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) Save(ctx context.Context, id regionmodels.RegionID, listing *models.Listing) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO listings (region_id, seller, timeslice_price, sale_recipient)
		VALUES ($1, $2, $3::numeric, $4)
		ON CONFLICT (region_id) DO UPDATE SET
			seller = EXCLUDED.seller,
			timeslice_price = EXCLUDED.timeslice_price,
			sale_recipient = EXCLUDED.sale_recipient
	`, id.Encode(), listing.Seller[:], strconv.FormatUint(uint64(listing.TimeslicePrice), 10), listing.SaleRecipient[:])
	if err != nil {
		return fmt.Errorf("save listing: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id regionmodels.RegionID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM listings WHERE region_id = $1`, id.Encode())
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT count(*) FROM listings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}
