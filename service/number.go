package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
)

const (
	accountNumberLength = 9
	maxNumberAttempts   = 10
)

// ErrAccountNumberExhausted is returned when every candidate number collided.
var ErrAccountNumberExhausted = errors.New("could not allocate a unique account number")

// NumberChecker is the part of the directory the generator needs.
type NumberChecker interface {
	AccountNumberExists(ctx context.Context, number string) (bool, error)
}

// AccountNumberGenerator produces 9-digit account numbers that never start
// with zero and are not yet used in the directory.
type AccountNumberGenerator struct {
	checker NumberChecker
	intN    func(n int) int
}

// NewAccountNumberGenerator uses intN as its random source; nil selects
// math/rand, which is safe for concurrent use.
func NewAccountNumberGenerator(checker NumberChecker, intN func(n int) int) *AccountNumberGenerator {
	if intN == nil {
		intN = rand.Intn
	}
	return &AccountNumberGenerator{checker: checker, intN: intN}
}

// Generate returns a number that the directory reported as unused.
// Uniqueness is only guaranteed by the store's constraint at insert time.
func (g *AccountNumberGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := g.candidate()

		exists, err := g.checker.AccountNumberExists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("could not check account number: %w", err)
		}
		if !exists {
			return number, nil
		}
	}
	return "", ErrAccountNumberExhausted
}

func (g *AccountNumberGenerator) candidate() string {
	buf := make([]byte, accountNumberLength)
	buf[0] = byte('1' + g.intN(9))
	for i := 1; i < accountNumberLength; i++ {
		buf[i] = byte('0' + g.intN(10))
	}
	return string(buf)
}
