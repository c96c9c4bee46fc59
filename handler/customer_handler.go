package handler

import (
	"net/http"

	"banking-ledger/model"

	"go.uber.org/zap"
)

// CustomerHandler holds dependencies for customer-related handlers.
type CustomerHandler struct {
	svc    Service
	logger *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(svc Service, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{svc: svc, logger: logger}
}

// CreateCustomerHandler registers a new customer.
//
// Method: POST
// Path: /api/customers
// Success: 201 Created
// Error: 400 Bad Request (for invalid JSON or validation failure)
func (h *CustomerHandler) CreateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCustomerRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	customer, err := h.svc.CreateCustomer(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/customers/"+customer.ID.String())
	writeData(w, h.logger, http.StatusCreated, model.CreateCustomerResponse{ID: customer.ID})
}
