package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personabot-backend/internal/domains/ledger"
	"personabot-backend/internal/infrastructure/database"
)

func newTestRepo(t *testing.T) ledger.LedgerRepository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureUsersSchema(db))
	return NewLedgerRepository(db)
}

func TestGetBalanceZeroWithoutWrite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tokens, err := repo.GetBalance(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, tokens)

	// Read path không được tạo row
	balances, err := repo.ListBalances(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestSetAndGetBalance(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetBalance(ctx, 42, 100))

	tokens, err := repo.GetBalance(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(100), tokens)

	// Set lần nữa ghi đè, không cộng dồn
	require.NoError(t, repo.SetBalance(ctx, 42, 30))
	tokens, err = repo.GetBalance(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(30), tokens)
}

func TestAddTokens(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Add trên user chưa tồn tại tạo row từ 0
	next, err := repo.AddTokens(ctx, 42, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), next)

	next, err = repo.AddTokens(ctx, 42, -20)
	require.NoError(t, err)
	assert.Equal(t, int64(30), next)
}

func TestAddTokensFloorsAtZero(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetBalance(ctx, 42, 10))

	next, err := repo.AddTokens(ctx, 42, -50)
	require.NoError(t, err)
	assert.Zero(t, next, "balance never goes negative")
}

func TestConcurrentAddsBothLand(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetBalance(ctx, 42, 100))

	// 10 increments + 10 decrements chạy đồng thời; IMMEDIATE tx
	// serialize writers nên không delta nào bị mất
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := repo.AddTokens(ctx, 42, 50)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := repo.AddTokens(ctx, 42, -20)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tokens, err := repo.GetBalance(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(100+10*50-10*20), tokens)
}

func TestSpendTokens(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetBalance(ctx, 42, 100))

	next, err := repo.SpendTokens(ctx, 42, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(70), next)

	_, err = repo.SpendTokens(ctx, 42, 1000)
	assert.ErrorIs(t, err, ledger.ErrInsufficientTokens)

	// Balance không đổi sau lần spend fail
	tokens, err := repo.GetBalance(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(70), tokens)
}

func TestListBalancesPaging(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, userID := range []int64{111, 211, 301} {
		require.NoError(t, repo.SetBalance(ctx, userID, userID))
	}

	page, err := repo.ListBalances(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := repo.ListBalances(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestSearchBalances(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, userID := range []int64{111, 211, 301} {
		require.NoError(t, repo.SetBalance(ctx, userID, 10))
	}

	found, err := repo.SearchBalances(ctx, "11")
	require.NoError(t, err)

	ids := make([]int64, 0, len(found))
	for _, b := range found {
		ids = append(ids, b.UserID)
	}
	assert.ElementsMatch(t, []int64{111, 211}, ids)

	none, err := repo.SearchBalances(ctx, "999")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	metadata := `{"source":"telegram_stars"}`
	order := &ledger.Order{
		ID:       uuid.NewString(),
		UserID:   42,
		Tokens:   150,
		Amount:   decimal.RequireFromString("4.99"),
		Currency: "USD",
		Status:   ledger.OrderStatusCompleted,
		Metadata: &metadata,
	}

	exists, err := repo.OrderExists(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.CreateOrder(ctx, order))

	exists, err = repo.OrderExists(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("4.99")), "decimal round-trips through TEXT")
	assert.Equal(t, "USD", got.Currency)
	require.NotNil(t, got.Metadata)
	assert.Equal(t, metadata, *got.Metadata)
	assert.False(t, got.CreatedAt.IsZero())

	list, err := repo.ListOrdersByUser(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetOrder(ctx, "missing-id")
	assert.ErrorIs(t, err, ledger.ErrOrderNotFound)
}
