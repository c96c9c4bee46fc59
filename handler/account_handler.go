package handler

import (
	"context"
	"net/http"

	"banking-ledger/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service is the orchestration layer the handlers call.
type Service interface {
	CreateCustomer(ctx context.Context, req model.CreateCustomerRequest) (*model.Customer, error)
	CreateAccount(ctx context.Context, customerID uuid.UUID, initialBalance decimal.Decimal) (*model.Account, error)
	GetAccount(ctx context.Context, number string) (*model.Account, error)
	GetBalance(ctx context.Context, number string) (decimal.Decimal, error)
	GetTransactionHistory(ctx context.Context, number string) ([]model.LedgerEntry, error)
	Deposit(ctx context.Context, number string, amount decimal.Decimal) (*model.Account, error)
	Withdraw(ctx context.Context, number string, amount decimal.Decimal) (*model.Account, error)
	ApplyInterest(ctx context.Context, number string, rate decimal.Decimal) (*model.Account, error)
}

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	svc    Service
	logger *zap.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc Service, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, logger: logger}
}

func toAccountResponse(acc *model.Account) model.AccountResponse {
	resp := model.AccountResponse{AccountNumber: acc.Number(), Balance: acc.Balance()}
	if owner := acc.Owner(); owner != nil {
		resp.CustomerID = owner.ID
	}
	return resp
}

// CreateAccountHandler opens a new account for an existing customer.
// It expects a JSON body with "customer_id" and "initial_balance".
//
// Method: POST
// Path: /api/accounts
// Success: 201 Created
// Error: 400 Bad Request (for invalid JSON or negative initial balance)
// Error: 404 Not Found (if the customer does not exist)
func (h *AccountHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAccountRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	acc, err := h.svc.CreateAccount(r.Context(), req.CustomerID, req.InitialBalance)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/accounts/"+acc.Number())
	writeData(w, h.logger, http.StatusCreated, toAccountResponse(acc))
}

// GetAccountHandler returns the account summary.
//
// Method: GET
// Path: /api/accounts/{accountNumber}
// Success: 200 OK
// Error: 404 Not Found
func (h *AccountHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.GetAccount(r.Context(), mux.Vars(r)["accountNumber"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, toAccountResponse(acc))
}

// GetBalanceHandler returns the current balance.
//
// Method: GET
// Path: /api/accounts/{accountNumber}/balance
// Success: 200 OK
// Error: 404 Not Found
func (h *AccountHandler) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.GetBalance(r.Context(), mux.Vars(r)["accountNumber"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, model.BalanceResponse{Balance: balance})
}

// GetTransactionsHandler returns the ledger in the order it was applied.
//
// Method: GET
// Path: /api/accounts/{accountNumber}/transactions
// Success: 200 OK
// Error: 404 Not Found
func (h *AccountHandler) GetTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.GetTransactionHistory(r.Context(), mux.Vars(r)["accountNumber"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, h.logger, http.StatusOK, model.NewTransactionResponses(entries))
}

// DepositHandler credits the account.
//
// Method: POST
// Path: /api/accounts/{accountNumber}/deposit
// Success: 204 No Content
// Error: 400 Bad Request (for invalid JSON or non-positive amount)
// Error: 404 Not Found
func (h *AccountHandler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var req model.AmountRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	h.respondNoContent(w, r, func(ctx context.Context, number string) error {
		_, err := h.svc.Deposit(ctx, number, req.Amount)
		return err
	})
}

// WithdrawHandler debits the account.
//
// Method: POST
// Path: /api/accounts/{accountNumber}/withdraw
// Success: 204 No Content
// Error: 400 Bad Request (for invalid JSON or non-positive amount)
// Error: 404 Not Found
// Error: 422 Unprocessable Entity (insufficient funds)
func (h *AccountHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var req model.AmountRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	h.respondNoContent(w, r, func(ctx context.Context, number string) error {
		_, err := h.svc.Withdraw(ctx, number, req.Amount)
		return err
	})
}

// ApplyInterestHandler accrues interest at the given rate.
//
// Method: POST
// Path: /api/accounts/{accountNumber}/interest
// Success: 204 No Content
// Error: 400 Bad Request (for invalid JSON or non-positive rate)
// Error: 404 Not Found
func (h *AccountHandler) ApplyInterestHandler(w http.ResponseWriter, r *http.Request) {
	var req model.InterestRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	h.respondNoContent(w, r, func(ctx context.Context, number string) error {
		_, err := h.svc.ApplyInterest(ctx, number, req.Rate)
		return err
	})
}

func (h *AccountHandler) respondNoContent(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, number string) error) {
	if err := op(r.Context(), mux.Vars(r)["accountNumber"]); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
