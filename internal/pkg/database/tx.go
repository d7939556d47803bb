package database

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"
)

// Transactor runs fn inside one unit of work. A ctx that already carries a
// transaction joins it instead of opening a new one.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker takes exclusive named locks that are released when the enclosing
// transaction commits or rolls back. Callers must acquire keys in a stable order.
type Locker interface {
	Lock(ctx context.Context, keys ...string) error
}

var (
	// ErrLockTimeout is returned by a Locker when a key could not be acquired in time.
	ErrLockTimeout = errors.New("lock wait timeout")
	// ErrNoTransaction is returned by a Locker called outside WithinTransaction.
	ErrNoTransaction = errors.New("lock requested outside a transaction")

	ErrBusy = apperror.New(apperror.CodeBusy, "resource is busy, retry later")
)
