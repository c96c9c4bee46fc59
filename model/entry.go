package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind identifies what kind of balance change a LedgerEntry records.
type EntryKind string

const (
	EntryDeposit         EntryKind = "Deposit"
	EntryWithdrawal      EntryKind = "Withdrawal"
	EntryInterestApplied EntryKind = "InterestApplied"
)

// Valid reports whether k is one of the known kinds.
func (k EntryKind) Valid() bool {
	switch k {
	case EntryDeposit, EntryWithdrawal, EntryInterestApplied:
		return true
	}
	return false
}

// Signed returns the effect of an entry of this kind on the balance.
func (k EntryKind) Signed(amount decimal.Decimal) decimal.Decimal {
	if k == EntryWithdrawal {
		return amount.Neg()
	}
	return amount
}

// LedgerEntry is an immutable record of one balance-affecting event.
// Entries are only created by Account operations.
type LedgerEntry struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	Sequence     int64           `json:"sequence"`
	Kind         EntryKind       `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}
