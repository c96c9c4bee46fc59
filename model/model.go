// Package model defines the banking domain: customers, the Account aggregate
// with its ledger, and the request/response shapes used by the HTTP layer.
//
// Money is carried as github.com/shopspring/decimal values everywhere.
// float64 cannot represent most decimal fractions exactly (0.1 + 0.2 != 0.3),
// and those errors accumulate across repeated interest applications.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest defines the expected JSON body for registering a customer.
type CreateCustomerRequest struct {
	Name      string          `json:"name"`
	BirthDate time.Time       `json:"birth_date"`
	Gender    string          `json:"gender"`
	Income    decimal.Decimal `json:"income"`
}

// CreateCustomerResponse is returned after a customer is registered.
type CreateCustomerResponse struct {
	ID uuid.UUID `json:"id"`
}

// CreateAccountRequest defines the expected JSON body for opening an account.
type CreateAccountRequest struct {
	CustomerID     uuid.UUID       `json:"customer_id"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// AmountRequest is the body of deposit and withdraw calls.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// InterestRequest is the body of an interest application.
type InterestRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

// AccountResponse summarizes an account.
type AccountResponse struct {
	AccountNumber string          `json:"account_number"`
	CustomerID    uuid.UUID       `json:"customer_id,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
}

// BalanceResponse carries the current balance of an account.
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// TransactionResponse is the exported shape of a ledger entry.
type TransactionResponse struct {
	ID           uuid.UUID       `json:"id"`
	Kind         EntryKind       `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewTransactionResponses maps ledger entries to their exported shape, keeping order.
func NewTransactionResponses(entries []LedgerEntry) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, TransactionResponse{
			ID:           e.ID,
			Kind:         e.Kind,
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			CreatedAt:    e.CreatedAt,
		})
	}
	return out
}

// APIError is a single machine-readable error in an APIResponse.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the envelope for every JSON body the API writes.
type APIResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Errors  []APIError `json:"errors,omitempty"`
}
