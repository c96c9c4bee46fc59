package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountRequestJSON(t *testing.T) {
	t.Run("decimal string keeps precision", func(t *testing.T) {
		var req AmountRequest
		err := json.Unmarshal([]byte(`{"amount":"0.10"}`), &req)

		require.NoError(t, err)
		assert.True(t, decimal.New(1, -1).Equal(req.Amount))
	})

	t.Run("invalid amount format", func(t *testing.T) {
		var req AmountRequest
		err := json.Unmarshal([]byte(`{"amount":"not-a-number"}`), &req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "can't convert not-a-number to decimal")
	})
}

func TestCreateAccountRequestJSON(t *testing.T) {
	t.Run("invalid customer id", func(t *testing.T) {
		var req CreateAccountRequest
		err := json.Unmarshal([]byte(`{"customer_id":"nope","initial_balance":"10"}`), &req)

		require.Error(t, err)
	})
}

func TestNewTransactionResponses(t *testing.T) {
	// Arrange
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []LedgerEntry{
		{ID: uuid.New(), Sequence: 1, Kind: EntryDeposit, Amount: decimal.NewFromInt(300), BalanceAfter: decimal.NewFromInt(1300), CreatedAt: now},
		{ID: uuid.New(), Sequence: 2, Kind: EntryWithdrawal, Amount: decimal.NewFromInt(200), BalanceAfter: decimal.NewFromInt(1100), CreatedAt: now},
	}

	// Act
	out := NewTransactionResponses(entries)
	data, err := json.Marshal(out[0])

	// Assert
	require.Len(t, out, 2)
	assert.Equal(t, entries[1].ID, out[1].ID)
	require.NoError(t, err)
	expected := `{"id":"` + entries[0].ID.String() + `","kind":"Deposit","amount":"300","balance_after":"1300","created_at":"2026-03-01T10:00:00Z"}`
	assert.JSONEq(t, expected, string(data))
}

func TestEntryKindSigned(t *testing.T) {
	ten := decimal.NewFromInt(10)
	assert.True(t, ten.Equal(EntryDeposit.Signed(ten)))
	assert.True(t, ten.Equal(EntryInterestApplied.Signed(ten)))
	assert.True(t, ten.Neg().Equal(EntryWithdrawal.Signed(ten)))
	assert.False(t, EntryKind("Refund").Valid())
}
