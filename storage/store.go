package storage

import (
	"context"
	"errors"

	"banking-ledger/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Custom errors for the storage layer.
var (
	ErrNotFound               = errors.New("not found")
	ErrDuplicateAccountNumber = errors.New("account number already in use")
)

// UpdateFunc mutates an account loaded by Store.UpdateAccount. Returning an
// error aborts the update and nothing is persisted.
type UpdateFunc func(acc *model.Account) error

// Store defines the account directory the service layer depends on.
type Store interface {
	CreateCustomer(ctx context.Context, c *model.Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	// CreateAccount persists a new account together with its pending entries.
	CreateAccount(ctx context.Context, acc *model.Account) error
	// GetAccount returns the account with its owner and full ledger.
	GetAccount(ctx context.Context, number string) (*model.Account, error)
	AccountNumberExists(ctx context.Context, number string) (bool, error)
	// UpdateAccount loads the account under an exclusive lock, applies fn and
	// saves the new balance and the entries fn appended, all or nothing.
	UpdateAccount(ctx context.Context, number string, fn UpdateFunc) (*model.Account, error)

	Close()
}

// Postgres error codes worth retrying.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// IsTransient reports whether err is an infrastructure failure that may
// succeed when retried. Domain errors are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	return pgconn.SafeToRetry(err)
}
