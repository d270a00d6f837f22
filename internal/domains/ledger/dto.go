package ledger

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// ========================================
// REQUEST DTOs
// ========================================

type SetTokensReq struct {
	Tokens int64 `json:"tokens"`
}

type AddTokensReq struct {
	Delta int64 `json:"delta"`
}

func (r AddTokensReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Delta, validation.Required),
	)
}

type SpendTokensReq struct {
	Cost int64 `json:"cost"`
}

func (r SpendTokensReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Cost, validation.Required, validation.Min(int64(1))),
	)
}

type RecordOrderReq struct {
	UserID   int64   `json:"user_id"`
	Tokens   int64   `json:"tokens"`
	Amount   string  `json:"amount"` // decimal string, vd "150" stars hay "4.99"
	Currency string  `json:"currency"`
	Metadata *string `json:"metadata"`
}

func (r RecordOrderReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Tokens, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Amount, validation.Required),
		validation.Field(&r.Currency, validation.Length(3, 5)),
	)
}

// ========================================
// RESPONSE DTOs
// ========================================

type BalanceResp struct {
	UserID    int64     `json:"user_id"`
	Tokens    int64     `json:"tokens"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type BalanceListResp struct {
	Balances []BalanceResp `json:"balances"`
	Total    int           `json:"total"`
}

type OrderResp struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"user_id"`
	Tokens    int64           `json:"tokens"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	Metadata  *string         `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type OrderListResp struct {
	Orders []OrderResp `json:"orders"`
	Total  int         `json:"total"`
}

func BalanceToResp(b *TokenBalance) *BalanceResp {
	return &BalanceResp{
		UserID:    b.UserID,
		Tokens:    b.Tokens,
		UpdatedAt: b.UpdatedAt,
	}
}

func BalancesToResp(balances []TokenBalance) *BalanceListResp {
	resps := make([]BalanceResp, 0, len(balances))
	for i := range balances {
		resps = append(resps, *BalanceToResp(&balances[i]))
	}
	return &BalanceListResp{Balances: resps, Total: len(resps)}
}

func OrderToResp(o *Order) *OrderResp {
	return &OrderResp{
		ID:        o.ID,
		UserID:    o.UserID,
		Tokens:    o.Tokens,
		Amount:    o.Amount,
		Currency:  o.Currency,
		Status:    o.Status,
		Metadata:  o.Metadata,
		CreatedAt: o.CreatedAt,
	}
}

func OrdersToResp(orders []Order) *OrderListResp {
	resps := make([]OrderResp, 0, len(orders))
	for i := range orders {
		resps = append(resps, *OrderToResp(&orders[i]))
	}
	return &OrderListResp{Orders: resps, Total: len(resps)}
}
