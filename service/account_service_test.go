package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"banking-ledger/config"
	"banking-ledger/events"
	"banking-ledger/model"
	"banking-ledger/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.EntryAppended
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event.(events.EntryAppended))
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// flakyStore fails UpdateAccount with a transient error a fixed number of times.
type flakyStore struct {
	*storage.MemoryStore
	failures int
	calls    int
}

func (f *flakyStore) UpdateAccount(ctx context.Context, number string, fn storage.UpdateFunc) (*model.Account, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	}
	return f.MemoryStore.UpdateAccount(ctx, number, fn)
}

var testRetry = config.RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond}

func newTestService(t *testing.T, store storage.Store) (*AccountService, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc := NewAccountService(store, NewAccountNumberGenerator(store, nil), pub, zap.NewNop(), testRetry)
	return svc, pub
}

func createCustomer(t *testing.T, svc *AccountService) *model.Customer {
	t.Helper()
	c, err := svc.CreateCustomer(context.Background(), model.CreateCustomerRequest{
		Name:      "John Smith",
		BirthDate: time.Date(1975, 2, 3, 0, 0, 0, 0, time.UTC),
		Gender:    "Male",
		Income:    decimal.NewFromInt(3000),
	})
	require.NoError(t, err)
	return c
}

func TestCreateCustomer(t *testing.T) {
	svc, _ := newTestService(t, storage.NewMemoryStore())

	t.Run("success", func(t *testing.T) {
		c := createCustomer(t, svc)
		assert.Equal(t, model.GenderMale, c.Gender)
	})

	t.Run("invalid gender", func(t *testing.T) {
		_, err := svc.CreateCustomer(context.Background(), model.CreateCustomerRequest{Name: "X", Gender: "unknown"})
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("opening balance becomes first deposit", func(t *testing.T) {
		// Arrange
		store := storage.NewMemoryStore()
		svc, pub := newTestService(t, store)
		owner := createCustomer(t, svc)

		// Act
		acc, err := svc.CreateAccount(ctx, owner.ID, decimal.NewFromInt(1000))

		// Assert
		require.NoError(t, err)
		assert.Len(t, acc.Number(), 9)
		assert.True(t, decimal.NewFromInt(1000).Equal(acc.Balance()))
		history, err := svc.GetTransactionHistory(ctx, acc.Number())
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, model.EntryDeposit, history[0].Kind)
		require.Len(t, pub.events, 1)
		assert.Equal(t, acc.Number(), pub.events[0].AccountNumber)
	})

	t.Run("zero opening balance has empty ledger", func(t *testing.T) {
		svc, pub := newTestService(t, storage.NewMemoryStore())
		owner := createCustomer(t, svc)

		acc, err := svc.CreateAccount(ctx, owner.ID, decimal.Zero)

		require.NoError(t, err)
		assert.Empty(t, acc.Entries())
		assert.Empty(t, pub.events)
	})

	t.Run("negative opening balance", func(t *testing.T) {
		svc, _ := newTestService(t, storage.NewMemoryStore())
		owner := createCustomer(t, svc)

		_, err := svc.CreateAccount(ctx, owner.ID, decimal.NewFromInt(-1))

		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})

	t.Run("unknown customer", func(t *testing.T) {
		svc, _ := newTestService(t, storage.NewMemoryStore())

		_, err := svc.CreateAccount(ctx, uuid.New(), decimal.Zero)

		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestAccountOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("deposit withdraw interest scenario", func(t *testing.T) {
		// Arrange
		svc, pub := newTestService(t, storage.NewMemoryStore())
		owner := createCustomer(t, svc)
		acc, err := svc.CreateAccount(ctx, owner.ID, decimal.NewFromInt(1000))
		require.NoError(t, err)
		number := acc.Number()

		// Act
		_, err = svc.Deposit(ctx, number, decimal.NewFromInt(500))
		require.NoError(t, err)
		_, err = svc.Withdraw(ctx, number, decimal.NewFromInt(200))
		require.NoError(t, err)
		updated, err := svc.ApplyInterest(ctx, number, decimal.New(10, -2))
		require.NoError(t, err)

		// Assert
		assert.True(t, decimal.NewFromInt(1430).Equal(updated.Balance()))
		balance, err := svc.GetBalance(ctx, number)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1430).Equal(balance))

		history, err := svc.GetTransactionHistory(ctx, number)
		require.NoError(t, err)
		require.Len(t, history, 4)
		assert.Equal(t, model.EntryInterestApplied, history[3].Kind)
		assert.True(t, decimal.NewFromInt(130).Equal(history[3].Amount))

		require.Len(t, pub.events, 4)
		for i, ev := range pub.events {
			assert.Equal(t, history[i].ID, ev.EntryID)
		}
	})

	t.Run("insufficient funds is not retried and leaves state", func(t *testing.T) {
		svc, pub := newTestService(t, storage.NewMemoryStore())
		owner := createCustomer(t, svc)
		acc, err := svc.CreateAccount(ctx, owner.ID, decimal.NewFromInt(100))
		require.NoError(t, err)
		pub.events = nil

		_, err = svc.Withdraw(ctx, acc.Number(), decimal.NewFromInt(150))

		var insufficient *model.InsufficientFundsError
		require.True(t, errors.As(err, &insufficient))
		assert.True(t, decimal.NewFromInt(150).Equal(insufficient.Attempted))
		assert.True(t, decimal.NewFromInt(100).Equal(insufficient.Available))
		balance, err := svc.GetBalance(ctx, acc.Number())
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(100).Equal(balance))
		assert.Empty(t, pub.events)
	})

	t.Run("invalid amounts and rates", func(t *testing.T) {
		svc, _ := newTestService(t, storage.NewMemoryStore())
		owner := createCustomer(t, svc)
		acc, err := svc.CreateAccount(ctx, owner.ID, decimal.NewFromInt(100))
		require.NoError(t, err)

		_, err = svc.Deposit(ctx, acc.Number(), decimal.Zero)
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
		_, err = svc.Withdraw(ctx, acc.Number(), decimal.NewFromInt(-5))
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
		_, err = svc.ApplyInterest(ctx, acc.Number(), decimal.Zero)
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})

	t.Run("unknown account", func(t *testing.T) {
		svc, _ := newTestService(t, storage.NewMemoryStore())

		_, err := svc.Deposit(ctx, "000000000", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = svc.GetBalance(ctx, "000000000")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("publish failure does not fail the operation", func(t *testing.T) {
		svc, pub := newTestService(t, storage.NewMemoryStore())
		owner := createCustomer(t, svc)
		acc, err := svc.CreateAccount(ctx, owner.ID, decimal.Zero)
		require.NoError(t, err)
		pub.err = errors.New("broker unavailable")

		updated, err := svc.Deposit(ctx, acc.Number(), decimal.NewFromInt(10))

		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(10).Equal(updated.Balance()))
	})
}

func TestRetries(t *testing.T) {
	ctx := context.Background()

	t.Run("transient failures are retried", func(t *testing.T) {
		// Arrange
		store := &flakyStore{MemoryStore: storage.NewMemoryStore(), failures: 2}
		core, logs := observer.New(zap.WarnLevel)
		svc := NewAccountService(store, NewAccountNumberGenerator(store, nil), nil, zap.New(core), testRetry)
		owner := createCustomer(t, svc)
		acc, err := svc.CreateAccount(ctx, owner.ID, decimal.Zero)
		require.NoError(t, err)

		// Act
		updated, err := svc.Deposit(ctx, acc.Number(), decimal.NewFromInt(10))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 3, store.calls)
		assert.True(t, decimal.NewFromInt(10).Equal(updated.Balance()))
		assert.Len(t, updated.Entries(), 1)
		assert.Equal(t, 2, logs.FilterMessage("transient storage failure, retrying").Len())
	})

	t.Run("retry budget is bounded", func(t *testing.T) {
		store := &flakyStore{MemoryStore: storage.NewMemoryStore(), failures: 10}
		svc, _ := newTestService(t, store)
		owner := createCustomer(t, svc)
		acc, err := svc.CreateAccount(ctx, owner.ID, decimal.Zero)
		require.NoError(t, err)

		_, err = svc.Deposit(ctx, acc.Number(), decimal.NewFromInt(10))

		require.Error(t, err)
		assert.True(t, storage.IsTransient(err))
		assert.Equal(t, testRetry.MaxAttempts, store.calls)
	})

	t.Run("business errors are attempted once", func(t *testing.T) {
		store := &flakyStore{MemoryStore: storage.NewMemoryStore()}
		svc, _ := newTestService(t, store)
		owner := createCustomer(t, svc)
		acc, err := svc.CreateAccount(ctx, owner.ID, decimal.Zero)
		require.NoError(t, err)

		_, err = svc.Withdraw(ctx, acc.Number(), decimal.NewFromInt(1))

		assert.ErrorIs(t, err, model.ErrInsufficientFunds)
		assert.Equal(t, 1, store.calls)
	})
}

func TestConcurrentOperations(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, storage.NewMemoryStore())
	owner := createCustomer(t, svc)
	acc, err := svc.CreateAccount(ctx, owner.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Deposit(ctx, acc.Number(), decimal.NewFromInt(2))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(ctx, acc.Number(), decimal.NewFromInt(1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := svc.GetBalance(ctx, acc.Number())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(balance))
}
