package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenBalance là số dư token của một bot user. user_id là Telegram user id,
// không phải foreign key nội bộ.
type TokenBalance struct {
	UserID    int64     `json:"user_id"`
	Tokens    int64     `json:"tokens"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order ghi nhận một lần mua token. Append-only: không UPDATE, không DELETE;
// bảng orders là audit trail của mọi payment.
type Order struct {
	ID        string          `json:"id"` // uuid
	UserID    int64           `json:"user_id"`
	Tokens    int64           `json:"tokens"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	Metadata  *string         `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

const (
	OrderStatusCompleted = "completed"
	OrderStatusRefunded  = "refunded"

	// DefaultCurrency là Telegram Stars
	DefaultCurrency = "XTR"
)
