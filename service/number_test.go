package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockChecker provides a mock implementation of NumberChecker for testing.
type MockChecker struct {
	AccountNumberExistsFunc func(ctx context.Context, number string) (bool, error)
}

func (m *MockChecker) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	return m.AccountNumberExistsFunc(ctx, number)
}

// sequence returns a random source that replays values in order.
func sequence(values ...int) func(int) int {
	i := 0
	return func(n int) int {
		v := values[i%len(values)] % n
		i++
		return v
	}
}

func TestAccountNumberGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("nine digits without leading zero", func(t *testing.T) {
		checker := &MockChecker{AccountNumberExistsFunc: func(ctx context.Context, number string) (bool, error) {
			return false, nil
		}}
		gen := NewAccountNumberGenerator(checker, sequence(0, 1, 2, 3, 4, 5, 6, 7, 8))

		number, err := gen.Generate(ctx)

		require.NoError(t, err)
		assert.Equal(t, "112345678", number)
	})

	t.Run("default random source", func(t *testing.T) {
		checker := &MockChecker{AccountNumberExistsFunc: func(ctx context.Context, number string) (bool, error) {
			return false, nil
		}}
		gen := NewAccountNumberGenerator(checker, nil)

		for i := 0; i < 50; i++ {
			number, err := gen.Generate(ctx)
			require.NoError(t, err)
			require.Len(t, number, 9)
			assert.NotEqual(t, byte('0'), number[0])
			for _, r := range number {
				assert.True(t, r >= '0' && r <= '9')
			}
		}
	})

	t.Run("skips numbers already in use", func(t *testing.T) {
		var checked []string
		checker := &MockChecker{AccountNumberExistsFunc: func(ctx context.Context, number string) (bool, error) {
			checked = append(checked, number)
			return len(checked) == 1, nil
		}}
		gen := NewAccountNumberGenerator(checker, sequence(0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1))

		number, err := gen.Generate(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"100000000", "211111111"}, checked)
		assert.Equal(t, "211111111", number)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		calls := 0
		checker := &MockChecker{AccountNumberExistsFunc: func(ctx context.Context, number string) (bool, error) {
			calls++
			return true, nil
		}}
		gen := NewAccountNumberGenerator(checker, nil)

		_, err := gen.Generate(ctx)

		assert.ErrorIs(t, err, ErrAccountNumberExhausted)
		assert.Equal(t, maxNumberAttempts, calls)
	})

	t.Run("checker failure", func(t *testing.T) {
		boom := errors.New("db down")
		checker := &MockChecker{AccountNumberExistsFunc: func(ctx context.Context, number string) (bool, error) {
			return false, boom
		}}

		_, err := NewAccountNumberGenerator(checker, nil).Generate(ctx)

		assert.ErrorIs(t, err, boom)
	})
}
