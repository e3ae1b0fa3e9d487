// Package currency is the native-currency ledger used for payments, order
// fees and contribution escrow. Balances are split into free and reserved
// parts; reserved funds can only be released or repatriated.
package currency

import (
	"context"
	"sync"

	"regionx/internal/currency/models"
	"regionx/internal/currency/store/account"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
)

var (
	ErrInsufficientBalance = dErrors.New(dErrors.CodeConflict, "insufficient_balance")
	ErrExistentialDeposit  = dErrors.New(dErrors.CodeConflict, "existential_deposit")
	ErrInsufficientReserve = dErrors.New(dErrors.CodeConflict, "insufficient_reserved_balance")
)

// Store persists balances. Unknown holders read as the zero account and
// saving a dead account removes it.
type Store interface {
	Find(ctx context.Context, who domain.AccountID) (models.Account, error)
	Save(ctx context.Context, who domain.AccountID, a models.Account) error
	Total(ctx context.Context) (domain.Balance, error)
}

// Ledger applies balance rules on top of a Store. Writes made inside a
// transaction join it, so they commit or roll back with the operation.
type Ledger struct {
	mu                 sync.Mutex
	store              Store
	existentialDeposit domain.Balance
}

type Option func(*Ledger)

// WithStore replaces the default in-memory store.
func WithStore(store Store) Option {
	return func(l *Ledger) {
		if store != nil {
			l.store = store
		}
	}
}

func NewLedger(existentialDeposit domain.Balance, opts ...Option) *Ledger {
	l := &Ledger{
		store:              account.NewInMemory(),
		existentialDeposit: existentialDeposit,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) ExistentialDeposit() domain.Balance {
	return l.existentialDeposit
}

// Balance returns both parts of who's balance.
func (l *Ledger) Balance(ctx context.Context, who domain.AccountID) (models.Account, error) {
	return l.find(ctx, who)
}

func (l *Ledger) FreeBalance(ctx context.Context, who domain.AccountID) (domain.Balance, error) {
	a, err := l.Balance(ctx, who)
	return a.Free, err
}

func (l *Ledger) ReservedBalance(ctx context.Context, who domain.AccountID) (domain.Balance, error) {
	a, err := l.Balance(ctx, who)
	return a.Reserved, err
}

func wrapStore(err error) error {
	return dErrors.Wrap(err, dErrors.CodeInternal, "balance store failure")
}

func (l *Ledger) find(ctx context.Context, who domain.AccountID) (models.Account, error) {
	a, err := l.store.Find(ctx, who)
	if err != nil {
		return models.Account{}, wrapStore(err)
	}
	return a, nil
}

func (l *Ledger) save(ctx context.Context, who domain.AccountID, a models.Account) error {
	if err := l.store.Save(ctx, who, a); err != nil {
		return wrapStore(err)
	}
	return nil
}

// credited returns a with amount added to its free balance. New accounts must
// receive at least the existential deposit.
func (l *Ledger) credited(a models.Account, amount domain.Balance) (models.Account, error) {
	free, err := a.Free.CheckedAdd(amount)
	if err != nil {
		return a, err
	}
	if a.Dead() && free < l.existentialDeposit {
		return a, ErrExistentialDeposit
	}
	a.Free = free
	return a, nil
}

func (l *Ledger) credit(ctx context.Context, who domain.AccountID, amount domain.Balance) error {
	a, err := l.find(ctx, who)
	if err != nil {
		return err
	}
	if a, err = l.credited(a, amount); err != nil {
		return err
	}
	return l.save(ctx, who, a)
}

// Deposit mints amount into who's free balance.
func (l *Ledger) Deposit(ctx context.Context, who domain.AccountID, amount domain.Balance) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.credit(ctx, who, amount)
}

// Transfer moves free funds. With keepAlive the sender must keep at least the
// existential deposit.
func (l *Ledger) Transfer(ctx context.Context, from, to domain.AccountID, amount domain.Balance, keepAlive bool) error {
	if amount == 0 || from == to {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	src, err := l.find(ctx, from)
	if err != nil {
		return err
	}
	remaining, err := src.Free.CheckedSub(amount)
	if err != nil {
		return ErrInsufficientBalance
	}
	if keepAlive && remaining < l.existentialDeposit {
		return ErrInsufficientBalance
	}
	dst, err := l.find(ctx, to)
	if err != nil {
		return err
	}
	if dst, err = l.credited(dst, amount); err != nil {
		return err
	}
	src.Free = remaining
	if err := l.save(ctx, from, src); err != nil {
		return err
	}
	return l.save(ctx, to, dst)
}

// Reserve moves free funds into the reserved balance. The account must stay alive.
func (l *Ledger) Reserve(ctx context.Context, who domain.AccountID, amount domain.Balance) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.find(ctx, who)
	if err != nil {
		return err
	}
	remaining, err := a.Free.CheckedSub(amount)
	if err != nil || remaining < l.existentialDeposit {
		return ErrInsufficientBalance
	}
	reserved, err := a.Reserved.CheckedAdd(amount)
	if err != nil {
		return err
	}
	a.Free = remaining
	a.Reserved = reserved
	return l.save(ctx, who, a)
}

// Unreserve returns up to amount of reserved funds to the free balance and
// reports the part that could not be unreserved.
func (l *Ledger) Unreserve(ctx context.Context, who domain.AccountID, amount domain.Balance) (domain.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.find(ctx, who)
	if err != nil {
		return amount, err
	}
	moved := min(amount, a.Reserved)
	a.Reserved -= moved
	a.Free = a.Free.SaturatingAdd(moved)
	if err := l.save(ctx, who, a); err != nil {
		return amount, err
	}
	return amount - moved, nil
}

// RepatriateReserved moves amount of from's reserved funds into to's free balance.
func (l *Ledger) RepatriateReserved(ctx context.Context, from, to domain.AccountID, amount domain.Balance) error {
	if amount == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	src, err := l.find(ctx, from)
	if err != nil {
		return err
	}
	if src.Reserved < amount {
		return ErrInsufficientReserve
	}
	src.Reserved -= amount
	if from == to {
		src.Free = src.Free.SaturatingAdd(amount)
		return l.save(ctx, from, src)
	}
	dst, err := l.find(ctx, to)
	if err != nil {
		return err
	}
	if dst, err = l.credited(dst, amount); err != nil {
		return err
	}
	if err := l.save(ctx, from, src); err != nil {
		return err
	}
	return l.save(ctx, to, dst)
}

// TotalIssuance sums every free and reserved balance.
func (l *Ledger) TotalIssuance(ctx context.Context) (domain.Balance, error) {
	total, err := l.store.Total(ctx)
	if err != nil {
		return 0, wrapStore(err)
	}
	return total, nil
}
