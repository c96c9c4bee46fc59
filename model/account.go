package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places a money amount may carry.
// Interest is rounded to it; deposits, withdrawals and opening balances
// with more places are rejected.
const CurrencyPlaces = 2

// Account is the aggregate root for a single bank account. It is the only
// place where a balance may change, and every change appends exactly one
// LedgerEntry in the same call.
//
// Account is not safe for concurrent mutation; callers serialize access
// per account (see storage.Store.UpdateAccount).
type Account struct {
	id      uuid.UUID
	number  string
	owner   *Customer
	balance decimal.Decimal
	entries []LedgerEntry

	// persisted is the number of leading entries already saved by storage.
	persisted int
	now       func() time.Time
}

// NewAccount validates its inputs and returns an account with an empty ledger.
// The initial balance is a starting condition and produces no entry.
func NewAccount(owner *Customer, number string, initialBalance decimal.Decimal) (*Account, error) {
	if owner == nil {
		return nil, invalidArgument("account owner is required")
	}
	if strings.TrimSpace(number) == "" {
		return nil, invalidArgument("account number is required")
	}
	if initialBalance.IsNegative() {
		return nil, invalidArgument("initial balance cannot be negative")
	}
	if !fitsCurrency(initialBalance) {
		return nil, invalidArgument("initial balance %s has more than %d decimal places", initialBalance, CurrencyPlaces)
	}

	return &Account{
		id:      uuid.New(),
		number:  number,
		owner:   owner,
		balance: initialBalance,
		now:     utcNow,
	}, nil
}

// RestoreAccount rebuilds an account from already validated stored data.
// It performs no business checks; entries must be in sequence order.
func RestoreAccount(id uuid.UUID, number string, owner *Customer, balance decimal.Decimal, entries []LedgerEntry) *Account {
	return &Account{
		id:        id,
		number:    number,
		owner:     owner,
		balance:   balance,
		entries:   append([]LedgerEntry(nil), entries...),
		persisted: len(entries),
		now:       utcNow,
	}
}

func utcNow() time.Time { return time.Now().UTC() }

// SetClock replaces the time source used to stamp new entries.
func (a *Account) SetClock(now func() time.Time) {
	if now != nil {
		a.now = now
	}
}

// ID returns the account's internal identifier.
func (a *Account) ID() uuid.UUID { return a.id }

// Number returns the customer-facing account number.
func (a *Account) Number() string { return a.number }

// Owner returns the customer the account belongs to.
func (a *Account) Owner() *Customer { return a.owner }

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal { return a.balance }

// Entries returns the ledger in the order the entries were applied.
// The returned slice is a copy.
func (a *Account) Entries() []LedgerEntry {
	return append([]LedgerEntry(nil), a.entries...)
}

// PendingEntries returns the entries appended since the last MarkPersisted.
func (a *Account) PendingEntries() []LedgerEntry {
	return append([]LedgerEntry(nil), a.entries[a.persisted:]...)
}

// MarkPersisted records that every current entry has been durably saved.
func (a *Account) MarkPersisted() {
	a.persisted = len(a.entries)
}

// Deposit adds amount to the balance.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalidArgument("deposit amount must be positive")
	}
	if !fitsCurrency(amount) {
		return invalidArgument("deposit amount %s has more than %d decimal places", amount, CurrencyPlaces)
	}

	a.apply(EntryDeposit, amount, a.balance.Add(amount))
	return nil
}

// Withdraw removes amount from the balance. It fails with an
// *InsufficientFundsError when amount exceeds the balance.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalidArgument("withdrawal amount must be positive")
	}
	if !fitsCurrency(amount) {
		return invalidArgument("withdrawal amount %s has more than %d decimal places", amount, CurrencyPlaces)
	}
	if a.balance.LessThan(amount) {
		return &InsufficientFundsError{Attempted: amount, Available: a.balance}
	}

	a.apply(EntryWithdrawal, amount, a.balance.Sub(amount))
	return nil
}

// ApplyInterest credits balance × rate, rounded half-even to CurrencyPlaces.
// When the rounded interest is zero nothing changes and no entry is recorded.
func (a *Account) ApplyInterest(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return invalidArgument("interest rate must be positive")
	}

	interest := a.balance.Mul(rate).RoundBank(CurrencyPlaces)
	if !interest.IsPositive() {
		return nil
	}

	a.apply(EntryInterestApplied, interest, a.balance.Add(interest))
	return nil
}

// fitsCurrency reports whether d needs no more than CurrencyPlaces decimals.
// Trailing zeros do not count, so 1.500 fits.
func fitsCurrency(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(CurrencyPlaces))
}

// apply appends the entry and commits the new balance. Callers validate first.
func (a *Account) apply(kind EntryKind, amount, balanceAfter decimal.Decimal) {
	createdAt := a.now()
	if n := len(a.entries); n > 0 && createdAt.Before(a.entries[n-1].CreatedAt) {
		createdAt = a.entries[n-1].CreatedAt
	}

	a.entries = append(a.entries, LedgerEntry{
		ID:           uuid.New(),
		AccountID:    a.id,
		Sequence:     int64(len(a.entries) + 1),
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CreatedAt:    createdAt,
	})
	a.balance = balanceAfter
}

// Clone returns a deep copy of the account, including its owner.
func (a *Account) Clone() *Account {
	c := *a
	c.entries = append([]LedgerEntry(nil), a.entries...)
	if a.owner != nil {
		owner := *a.owner
		c.owner = &owner
	}
	return &c
}
