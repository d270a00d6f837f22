package ledger

import "context"

// ============================================================
// REPOSITORY INTERFACE: LedgerRepository
// ============================================================

type LedgerRepository interface {
	// GetBalance trả về 0 khi user chưa có row. Read path thuần túy:
	// không bao giờ INSERT.
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// SetBalance upserts the absolute value.
	SetBalance(ctx context.Context, userID, tokens int64) error

	// AddTokens applies a signed delta inside one transaction and returns
	// the new balance. Result never goes below zero.
	AddTokens(ctx context.Context, userID, delta int64) (int64, error)

	// SpendTokens deducts cost iff balance >= cost, else ErrInsufficientTokens.
	SpendTokens(ctx context.Context, userID, cost int64) (int64, error)

	// ListBalances pages through balances ordered updated_at DESC.
	ListBalances(ctx context.Context, limit, offset int) ([]TokenBalance, error)

	// SearchBalances matches user ids containing the partial string.
	SearchBalances(ctx context.Context, partialID string) ([]TokenBalance, error)

	// CreateOrder appends one order row. Orders are never updated or deleted.
	CreateOrder(ctx context.Context, o *Order) error

	GetOrder(ctx context.Context, id string) (*Order, error)

	ListOrdersByUser(ctx context.Context, userID int64) ([]Order, error)

	OrderExists(ctx context.Context, id string) (bool, error)
}
