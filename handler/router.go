package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter registers every API route on a gorilla/mux router.
func NewRouter(svc Service, logger *zap.Logger) *mux.Router {
	accounts := NewAccountHandler(svc, logger)
	customers := NewCustomerHandler(svc, logger)

	r := mux.NewRouter()
	r.Use(requestLogger(logger))

	r.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/customers", customers.CreateCustomerHandler).Methods(http.MethodPost)
	api.HandleFunc("/accounts", accounts.CreateAccountHandler).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{accountNumber}", accounts.GetAccountHandler).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{accountNumber}/balance", accounts.GetBalanceHandler).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{accountNumber}/transactions", accounts.GetTransactionsHandler).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{accountNumber}/deposit", accounts.DepositHandler).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{accountNumber}/withdraw", accounts.WithdrawHandler).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{accountNumber}/interest", accounts.ApplyInterestHandler).Methods(http.MethodPost)

	return r
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
