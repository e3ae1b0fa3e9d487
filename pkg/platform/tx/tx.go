// Package tx defines the atomic boundary every state-changing operation runs in.
//
// Two runners exist. MemoryRunner serializes operations and rolls back in-memory
// stores from an undo journal; SQLRunner opens a *sql.Tx under a Postgres
// advisory lock and carries it in the context so SQL stores can join it. Both run commit hooks only after a
// successful commit, which is how events are held back until state is durable.
package tx

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Runner executes fn atomically. Calls made with a context already inside a
// transaction join it.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ctxKey struct{}
type journalKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

type journal struct {
	undo     []func()
	onCommit []func()
}

func journalFrom(ctx context.Context) (*journal, bool) {
	j, ok := ctx.Value(journalKey{}).(*journal)
	return j, ok
}

// InTx reports whether ctx belongs to a running transaction.
func InTx(ctx context.Context) bool {
	_, ok := journalFrom(ctx)
	return ok
}

// OnRollback registers an undo step. Steps run in reverse order when the
// transaction fails. Outside a transaction the step is discarded.
func OnRollback(ctx context.Context, undo func()) {
	if j, ok := journalFrom(ctx); ok {
		j.undo = append(j.undo, undo)
	}
}

// OnCommit registers fn to run after commit. Outside a transaction fn runs now.
func OnCommit(ctx context.Context, fn func()) {
	if j, ok := journalFrom(ctx); ok {
		j.onCommit = append(j.onCommit, fn)
		return
	}
	fn()
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
}

func (j *journal) commit() {
	for _, fn := range j.onCommit {
		fn()
	}
}

// MemoryRunner provides serialized, all-or-nothing execution for in-memory stores.
type MemoryRunner struct {
	mu sync.Mutex
}

func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{}
}

func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}
	r.mu.Lock()
	j := &journal{}
	err := fn(context.WithValue(ctx, journalKey{}, j))
	if err != nil {
		j.rollback()
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()
	j.commit()
	return nil
}

// DefaultLockKey is the Postgres advisory lock every SQLRunner takes unless
// configured otherwise.
const DefaultLockKey int64 = 0x726567696f6e78

// SQLRunner runs fn inside a Postgres transaction. The mutex serializes
// operations within the process; a transaction-scoped advisory lock does the
// same across every process sharing the database, so read-check-write
// sequences observe a stable state.
type SQLRunner struct {
	db      *sql.DB
	mu      sync.Mutex
	lockKey int64
}

type SQLOption func(*SQLRunner)

// WithLockKey selects the advisory lock, letting unrelated deployments share
// one database without blocking each other.
func WithLockKey(key int64) SQLOption {
	return func(r *SQLRunner) {
		r.lockKey = key
	}
}

func NewSQLRunner(db *sql.DB, opts ...SQLOption) *SQLRunner {
	r := &SQLRunner{db: db, lockKey: DefaultLockKey}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}
	r.mu.Lock()
	j := &journal{}
	committed := false
	defer func() {
		r.mu.Unlock()
		if committed {
			j.commit()
		}
	}()

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := sqlTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, r.lockKey); err != nil {
		_ = sqlTx.Rollback()
		return fmt.Errorf("acquire operation lock: %w", err)
	}
	txCtx := context.WithValue(WithTx(ctx, sqlTx), journalKey{}, j)
	if err := fn(txCtx); err != nil {
		j.rollback()
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		j.rollback()
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
