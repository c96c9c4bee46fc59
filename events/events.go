// Package events publishes ledger changes to downstream consumers.
package events

import (
	"context"
	"time"

	"banking-ledger/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TypeEntryAppended identifies EntryAppended events.
const TypeEntryAppended = "ledger.entry_appended"

// Publisher delivers events keyed by account number.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// EntryAppended is emitted once for every committed ledger entry.
type EntryAppended struct {
	Type          string          `json:"type"`
	AccountNumber string          `json:"account_number"`
	AccountID     uuid.UUID       `json:"account_id"`
	EntryID       uuid.UUID       `json:"entry_id"`
	Sequence      int64           `json:"sequence"`
	Kind          model.EntryKind `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewEntryAppended builds the event for an entry of the given account.
func NewEntryAppended(accountNumber string, e model.LedgerEntry) EntryAppended {
	return EntryAppended{
		Type:          TypeEntryAppended,
		AccountNumber: accountNumber,
		AccountID:     e.AccountID,
		EntryID:       e.ID,
		Sequence:      e.Sequence,
		Kind:          e.Kind,
		Amount:        e.Amount,
		BalanceAfter:  e.BalanceAfter,
		CreatedAt:     e.CreatedAt,
	}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                               { return nil }

var _ Publisher = NopPublisher{}
