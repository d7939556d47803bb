package postgresql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// lock_not_available
const pgLockNotAvailable = "55P03"

type txKey struct{}

// TxManager implements database.Transactor and database.Locker on PostgreSQL.
// Locks are transaction-scoped advisory locks on a 64-bit hash of the key.
type TxManager struct {
	db          *database.DB
	lockTimeout time.Duration
}

func NewTxManager(db *database.DB, lockTimeout time.Duration) *TxManager {
	return &TxManager{db: db, lockTimeout: lockTimeout}
}

// WithinTransaction implements database.Transactor.
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	err := WithTransaction(ctx, m.db, fn)
	if errors.Is(err, database.ErrLockTimeout) {
		slog.Warn("lock wait timed out, retrying transaction", "error", err)
		err = WithTransaction(ctx, m.db, fn)
		if errors.Is(err, database.ErrLockTimeout) {
			return fmt.Errorf("%w: %v", database.ErrBusy, err)
		}
	}
	return err
}

// Lock implements database.Locker.
func (m *TxManager) Lock(ctx context.Context, keys ...string) error {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return database.ErrNoTransaction
	}

	if m.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	for _, key := range keys {
		_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
				return fmt.Errorf("%w: %s", database.ErrLockTimeout, key)
			}
			return fmt.Errorf("lock %s: %w", key, err)
		}
	}
	return nil
}

// WithTransaction executes fn inside a database transaction carried by ctx.
// Advisory locks taken inside fn are released on commit or rollback.
func WithTransaction(ctx context.Context, db *database.DB, fn func(ctx context.Context) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Error("rollback during panic recovery failed", "error", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db.Pool
}
