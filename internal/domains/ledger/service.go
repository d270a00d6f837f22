package ledger

import "context"

// ============================================================
// SERVICE INTERFACE: LedgerService
// ============================================================

type LedgerService interface {
	// Show đọc balance, 0 khi user chưa tồn tại. Không ghi gì cả.
	Show(ctx context.Context, userID int64) (int64, error)

	// Set ghi đè balance; giá trị âm được clamp về 0.
	Set(ctx context.Context, userID, tokens int64) (int64, error)

	// Add cộng (hoặc trừ) delta, kết quả floor tại 0, trả về balance mới.
	Add(ctx context.Context, userID, delta int64) (int64, error)

	// Spend trừ cost nếu đủ token, ngược lại ErrInsufficientTokens.
	Spend(ctx context.Context, userID, cost int64) (int64, error)

	List(ctx context.Context, limit, offset int) (*BalanceListResp, error)

	Search(ctx context.Context, partialID string) (*BalanceListResp, error)

	// RecordOrder ghi một payment đã thành công và cộng token cho user.
	RecordOrder(ctx context.Context, req *RecordOrderReq) (*OrderResp, error)

	GetOrder(ctx context.Context, id string) (*OrderResp, error)

	ListOrdersByUser(ctx context.Context, userID int64) (*OrderListResp, error)

	// WasProcessed là idempotency check cho payment webhook retries.
	WasProcessed(ctx context.Context, orderID string) (bool, error)
}
