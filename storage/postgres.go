// storage/postgres.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"banking-ledger/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const connectAttempts = 5

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore implements the Store interface for PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore, connects to the database, and initializes the schema.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database for a few seconds
	for i := 0; i < connectAttempts; i++ {
		pool, err = pgxpool.New(ctx, connString)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to database after retries: %w", err)
	}

	store := &PostgresStore{db: pool}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	query := `
    CREATE TABLE IF NOT EXISTS customers (
        id UUID PRIMARY KEY,
        name TEXT NOT NULL,
        birth_date DATE NOT NULL,
        gender TEXT NOT NULL,
        income NUMERIC(19, 5) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS accounts (
        id UUID PRIMARY KEY,
        account_number TEXT NOT NULL UNIQUE,
        customer_id UUID NOT NULL REFERENCES customers (id),
        balance NUMERIC(19, 2) NOT NULL CHECK (balance >= 0),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS ledger_entries (
        id UUID PRIMARY KEY,
        account_id UUID NOT NULL REFERENCES accounts (id),
        sequence BIGINT NOT NULL,
        kind TEXT NOT NULL,
        amount NUMERIC(19, 2) NOT NULL CHECK (amount > 0),
        balance_after NUMERIC(19, 2) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL,
        UNIQUE (account_id, sequence)
    );`
	_, err := s.db.Exec(ctx, query)
	return err
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.db.Close()
}

// CreateCustomer inserts a customer profile.
func (s *PostgresStore) CreateCustomer(ctx context.Context, c *model.Customer) error {
	query := `
		INSERT INTO customers (id, name, birth_date, gender, income, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.Exec(ctx, query, c.ID, c.Name, c.BirthDate, string(c.Gender), c.Income, c.CreatedAt)
	return err
}

// GetCustomer retrieves a customer by ID.
func (s *PostgresStore) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c := &model.Customer{ID: id}
	var gender string
	query := "SELECT name, birth_date, gender, income, created_at FROM customers WHERE id = $1"
	err := s.db.QueryRow(ctx, query, id).Scan(&c.Name, &c.BirthDate, &gender, &c.Income, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.Gender = model.Gender(gender)
	return c, nil
}

// CreateAccount inserts the account row and any entries it already carries
// within one database transaction.
func (s *PostgresStore) CreateAccount(ctx context.Context, acc *model.Account) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction has been committed.

	query := `
		INSERT INTO accounts (id, account_number, customer_id, balance)
		VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, query, acc.ID(), acc.Number(), acc.Owner().ID, acc.Balance()); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return ErrDuplicateAccountNumber
		}
		return fmt.Errorf("could not insert account: %w", err)
	}

	if err := insertEntries(ctx, tx, acc.PendingEntries()); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("could not commit account: %w", err)
	}

	acc.MarkPersisted()
	return nil
}

// GetAccount retrieves an account by number with its owner and ordered ledger.
func (s *PostgresStore) GetAccount(ctx context.Context, number string) (*model.Account, error) {
	return loadAccount(ctx, s.db, number, false)
}

// AccountNumberExists reports whether number is already assigned.
func (s *PostgresStore) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)"
	if err := s.db.QueryRow(ctx, query, number).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateAccount locks the account row, applies fn and writes the new balance
// plus the appended entries inside a single database transaction.
// Concurrent updates of the same account are serialized by the row lock.
func (s *PostgresStore) UpdateAccount(ctx context.Context, number string, fn UpdateFunc) (*model.Account, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	acc, err := loadAccount(ctx, tx, number, true)
	if err != nil {
		return nil, err
	}

	if err := fn(acc); err != nil {
		return nil, err
	}

	updateQuery := "UPDATE accounts SET balance = $1 WHERE id = $2"
	if _, err := tx.Exec(ctx, updateQuery, acc.Balance(), acc.ID()); err != nil {
		return nil, fmt.Errorf("could not update balance: %w", err)
	}
	if err := insertEntries(ctx, tx, acc.PendingEntries()); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("could not commit account update: %w", err)
	}

	acc.MarkPersisted()
	return acc, nil
}

func loadAccount(ctx context.Context, q querier, number string, forUpdate bool) (*model.Account, error) {
	query := `
		SELECT a.id, a.balance, c.id, c.name, c.birth_date, c.gender, c.income, c.created_at
		FROM accounts a
		JOIN customers c ON c.id = a.customer_id
		WHERE a.account_number = $1`
	if forUpdate {
		query += " FOR UPDATE OF a"
	}

	var (
		id      uuid.UUID
		balance decimal.Decimal
		owner   model.Customer
		gender  string
	)
	err := q.QueryRow(ctx, query, number).Scan(
		&id, &balance,
		&owner.ID, &owner.Name, &owner.BirthDate, &gender, &owner.Income, &owner.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not query account: %w", err)
	}
	owner.Gender = model.Gender(gender)

	entries, err := loadEntries(ctx, q, id)
	if err != nil {
		return nil, err
	}

	return model.RestoreAccount(id, number, &owner, balance, entries), nil
}

func loadEntries(ctx context.Context, q querier, accountID uuid.UUID) ([]model.LedgerEntry, error) {
	query := `
		SELECT id, sequence, kind, amount, balance_after, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY sequence`
	rows, err := q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("could not query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		e := model.LedgerEntry{AccountID: accountID}
		var kind string
		if err := rows.Scan(&e.ID, &e.Sequence, &kind, &e.Amount, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("could not scan ledger entry: %w", err)
		}
		e.Kind = model.EntryKind(kind)
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read ledger entries: %w", err)
	}
	return entries, nil
}

func insertEntries(ctx context.Context, tx pgx.Tx, entries []model.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, account_id, sequence, kind, amount, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, e := range entries {
		if _, err := tx.Exec(ctx, query, e.ID, e.AccountID, e.Sequence, string(e.Kind), e.Amount, e.BalanceAfter, e.CreatedAt); err != nil {
			return fmt.Errorf("could not insert ledger entry %d: %w", e.Sequence, err)
		}
	}
	return nil
}

// Compile-time check: ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
