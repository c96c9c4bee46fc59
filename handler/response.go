package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"banking-ledger/model"
	"banking-ledger/storage"

	"go.uber.org/zap"
)

// Error codes written in APIError.Code.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	CodeNotFound            = "NOT_FOUND"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("error writing JSON response", zap.Error(err))
	}
}

func writeData(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	writeJSON(w, logger, status, model.APIResponse{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, logger *zap.Logger, status int, code, message string) {
	writeJSON(w, logger, status, model.APIResponse{
		Errors: []model.APIError{{Code: code, Message: message}},
	})
}

// writeError maps domain and storage errors to HTTP statuses.
//
// InvalidArgument: 400 Bad Request
// InsufficientFunds: 422 Unprocessable Entity
// NotFound: 404 Not Found
// anything else: 500 Internal Server Error
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var insufficient *model.InsufficientFundsError
	switch {
	case errors.As(err, &insufficient):
		writeFailure(w, logger, http.StatusUnprocessableEntity, CodeInsufficientFunds, insufficient.Error())
	case errors.Is(err, model.ErrInvalidArgument):
		writeFailure(w, logger, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeFailure(w, logger, http.StatusNotFound, CodeNotFound, err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		writeFailure(w, logger, http.StatusInternalServerError, CodeInternalServerError, "An unexpected error occurred")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeFailure(w, logger, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return false
	}
	return true
}
