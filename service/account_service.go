// Package service coordinates directory lookups with Account operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"banking-ledger/config"
	"banking-ledger/events"
	"banking-ledger/model"
	"banking-ledger/storage"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxCreateAttempts = 3

// AccountService is the orchestration layer between transport and storage.
// Per-account serialization is delegated to storage.Store.UpdateAccount.
type AccountService struct {
	store     storage.Store
	numbers   *AccountNumberGenerator
	publisher events.Publisher
	logger    *zap.Logger
	retry     config.RetryConfig
}

// NewAccountService wires the service. A nil publisher disables events and a
// nil logger discards logs.
func NewAccountService(store storage.Store, numbers *AccountNumberGenerator, publisher events.Publisher, logger *zap.Logger, retry config.RetryConfig) *AccountService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &AccountService{
		store:     store,
		numbers:   numbers,
		publisher: publisher,
		logger:    logger,
		retry:     retry,
	}
}

// CreateCustomer validates and stores a new customer profile.
func (s *AccountService) CreateCustomer(ctx context.Context, req model.CreateCustomerRequest) (*model.Customer, error) {
	gender, err := model.ParseGender(req.Gender)
	if err != nil {
		return nil, err
	}
	customer, err := model.NewCustomer(req.Name, req.BirthDate, gender, req.Income)
	if err != nil {
		return nil, err
	}

	if err := s.withRetry(ctx, func() error { return s.store.CreateCustomer(ctx, customer) }); err != nil {
		return nil, fmt.Errorf("could not create customer: %w", err)
	}

	s.logger.Info("customer created", zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

// CreateAccount opens an account for an existing customer. A positive
// initial balance is recorded as the account's first Deposit entry.
func (s *AccountService) CreateAccount(ctx context.Context, customerID uuid.UUID, initialBalance decimal.Decimal) (*model.Account, error) {
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance cannot be negative", model.ErrInvalidArgument)
	}

	var owner *model.Customer
	err := s.withRetry(ctx, func() error {
		var err error
		owner, err = s.store.GetCustomer(ctx, customerID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("customer %s: %w", customerID, err)
	}

	for attempt := 1; ; attempt++ {
		number, err := s.numbers.Generate(ctx)
		if err != nil {
			return nil, err
		}

		acc, err := model.NewAccount(owner, number, decimal.Zero)
		if err != nil {
			return nil, err
		}
		if initialBalance.IsPositive() {
			if err := acc.Deposit(initialBalance); err != nil {
				return nil, err
			}
		}

		err = s.withRetry(ctx, func() error { return s.store.CreateAccount(ctx, acc) })
		if errors.Is(err, storage.ErrDuplicateAccountNumber) && attempt < maxCreateAttempts {
			s.logger.Warn("account number taken concurrently, regenerating", zap.String("account_number", number))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not create account: %w", err)
		}

		s.logger.Info("account created",
			zap.String("account_number", number),
			zap.String("customer_id", owner.ID.String()),
			zap.String("initial_balance", initialBalance.String()),
		)
		s.publish(ctx, number, acc.Entries())
		return acc, nil
	}
}

// GetAccount returns the account with its full ledger.
func (s *AccountService) GetAccount(ctx context.Context, number string) (*model.Account, error) {
	var acc *model.Account
	err := s.withRetry(ctx, func() error {
		var err error
		acc, err = s.store.GetAccount(ctx, number)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", number, err)
	}
	return acc, nil
}

// GetBalance returns the current balance of an account.
func (s *AccountService) GetBalance(ctx context.Context, number string) (decimal.Decimal, error) {
	acc, err := s.GetAccount(ctx, number)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return acc.Balance(), nil
}

// GetTransactionHistory returns the ledger of an account in application order.
func (s *AccountService) GetTransactionHistory(ctx context.Context, number string) ([]model.LedgerEntry, error) {
	acc, err := s.GetAccount(ctx, number)
	if err != nil {
		return nil, err
	}
	return acc.Entries(), nil
}

func (s *AccountService) Deposit(ctx context.Context, number string, amount decimal.Decimal) (*model.Account, error) {
	return s.update(ctx, number, "deposit", func(acc *model.Account) error {
		return acc.Deposit(amount)
	})
}

func (s *AccountService) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (*model.Account, error) {
	return s.update(ctx, number, "withdraw", func(acc *model.Account) error {
		return acc.Withdraw(amount)
	})
}

func (s *AccountService) ApplyInterest(ctx context.Context, number string, rate decimal.Decimal) (*model.Account, error) {
	return s.update(ctx, number, "apply_interest", func(acc *model.Account) error {
		return acc.ApplyInterest(rate)
	})
}

func (s *AccountService) update(ctx context.Context, number, op string, fn storage.UpdateFunc) (*model.Account, error) {
	var (
		acc      *model.Account
		appended []model.LedgerEntry
	)
	err := s.withRetry(ctx, func() error {
		var err error
		acc, err = s.store.UpdateAccount(ctx, number, func(a *model.Account) error {
			if err := fn(a); err != nil {
				return err
			}
			appended = a.PendingEntries()
			return nil
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s on account %s: %w", op, number, err)
	}

	for _, e := range appended {
		s.logger.Info("ledger entry appended",
			zap.String("account_number", number),
			zap.String("entry_id", e.ID.String()),
			zap.String("kind", string(e.Kind)),
			zap.String("amount", e.Amount.String()),
			zap.String("balance_after", e.BalanceAfter.String()),
		)
	}
	s.publish(ctx, number, appended)
	return acc, nil
}

// publish emits one event per entry. The entries are already committed, so
// failures are logged and not returned.
func (s *AccountService) publish(ctx context.Context, number string, entries []model.LedgerEntry) {
	for _, e := range entries {
		if err := s.publisher.Publish(ctx, number, events.NewEntryAppended(number, e)); err != nil {
			s.logger.Error("could not publish ledger event",
				zap.String("account_number", number),
				zap.String("entry_id", e.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// withRetry runs op until it succeeds, fails with a non-transient error or
// the retry budget is spent. Business errors are never retried.
func (s *AccountService) withRetry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	if s.retry.InitialInterval > 0 {
		b.InitialInterval = s.retry.InitialInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.retry.MaxAttempts-1)), ctx)

	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !storage.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, next time.Duration) {
		s.logger.Warn("transient storage failure, retrying", zap.Error(err), zap.Duration("backoff", next))
	})
}
