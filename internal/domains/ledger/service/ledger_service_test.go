package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personabot-backend/internal/domains/ledger"
	"personabot-backend/internal/domains/ledger/repository"
	"personabot-backend/internal/infrastructure/database"
)

func newTestService(t *testing.T) ledger.LedgerService {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureUsersSchema(db))
	return NewLedgerService(repository.NewLedgerRepository(db))
}

func TestShowUnknownUserIsZero(t *testing.T) {
	svc := newTestService(t)

	tokens, err := svc.Show(context.Background(), 42)
	require.NoError(t, err)
	assert.Zero(t, tokens)
}

func TestShowInvalidUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Show(context.Background(), 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestSetClampsNegative(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tokens, err := svc.Set(ctx, 42, -100)
	require.NoError(t, err)
	assert.Zero(t, tokens)

	got, err := svc.Show(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestAddRejectsZeroDelta(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Add(context.Background(), 42, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestSpendValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Spend(ctx, 42, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = svc.Spend(ctx, 42, 10)
	assert.ErrorIs(t, err, ledger.ErrInsufficientTokens)
}

func TestSearchRejectsNonDigits(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Search(ctx, "")
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = svc.Search(ctx, "12a")
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestRecordOrderCreditsTokens(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.RecordOrder(ctx, &ledger.RecordOrderReq{
		UserID: 42,
		Tokens: 150,
		Amount: "150",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, ledger.OrderStatusCompleted, resp.Status)
	assert.Equal(t, ledger.DefaultCurrency, resp.Currency, "currency defaults to Telegram Stars")

	tokens, err := svc.Show(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(150), tokens)

	processed, err := svc.WasProcessed(ctx, resp.ID)
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = svc.WasProcessed(ctx, "never-seen")
	require.NoError(t, err)
	assert.False(t, processed)

	orders, err := svc.ListOrdersByUser(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, 1, orders.Total)
	assert.Equal(t, resp.ID, orders.Orders[0].ID)
}

func TestRecordOrderValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordOrder(ctx, nil)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = svc.RecordOrder(ctx, &ledger.RecordOrderReq{UserID: 42, Tokens: 10, Amount: "abc"})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = svc.RecordOrder(ctx, &ledger.RecordOrderReq{UserID: 42, Tokens: 10, Amount: "-5"})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = svc.RecordOrder(ctx, &ledger.RecordOrderReq{UserID: 42, Tokens: 0, Amount: "5"})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestLedgerScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// set 100, add 50, show 150, list chứa user
	_, err := svc.Set(ctx, 42, 100)
	require.NoError(t, err)

	tokens, err := svc.Add(ctx, 42, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(150), tokens)

	tokens, err = svc.Show(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(150), tokens)

	list, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, int64(42), list.Balances[0].UserID)
	assert.Equal(t, int64(150), list.Balances[0].Tokens)
}
