package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors returned by the Account aggregate and Customer constructor.
var (
	// ErrInvalidArgument is wrapped by every validation failure.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInsufficientFunds matches any *InsufficientFundsError via errors.Is.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// InsufficientFundsError is returned by Withdraw when the amount exceeds the balance.
type InsufficientFundsError struct {
	Attempted decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("cannot withdraw %s: available balance is %s", formatAmount(e.Attempted), formatAmount(e.Available))
}

// formatAmount pads to CurrencyPlaces but never hides extra precision.
func formatAmount(d decimal.Decimal) string {
	if fitsCurrency(d) {
		return d.StringFixed(CurrencyPlaces)
	}
	return d.String()
}

// Is lets errors.Is(err, ErrInsufficientFunds) match.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
