package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"personabot-backend/internal/domains/ledger"
	"personabot-backend/pkg/logger"
)

type ledgerServiceImpl struct {
	repository ledger.LedgerRepository
}

func NewLedgerService(repo ledger.LedgerRepository) ledger.LedgerService {
	return &ledgerServiceImpl{repository: repo}
}

func (s *ledgerServiceImpl) Show(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("%w: invalid user id", ledger.ErrInvalidInput)
	}
	return s.repository.GetBalance(ctx, userID)
}

func (s *ledgerServiceImpl) Set(ctx context.Context, userID, tokens int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("%w: invalid user id", ledger.ErrInvalidInput)
	}
	// Giá trị âm clamp về 0: balance không bao giờ âm
	if tokens < 0 {
		tokens = 0
	}

	if err := s.repository.SetBalance(ctx, userID, tokens); err != nil {
		return 0, err
	}

	logger.Info("balance set", map[string]interface{}{
		"user_id": userID,
		"tokens":  tokens,
	})
	return tokens, nil
}

func (s *ledgerServiceImpl) Add(ctx context.Context, userID, delta int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("%w: invalid user id", ledger.ErrInvalidInput)
	}
	if delta == 0 {
		return 0, fmt.Errorf("%w: delta must be non-zero", ledger.ErrInvalidInput)
	}

	next, err := s.repository.AddTokens(ctx, userID, delta)
	if err != nil {
		return 0, err
	}

	logger.Info("balance adjusted", map[string]interface{}{
		"user_id": userID,
		"delta":   delta,
		"tokens":  next,
	})
	return next, nil
}

func (s *ledgerServiceImpl) Spend(ctx context.Context, userID, cost int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("%w: invalid user id", ledger.ErrInvalidInput)
	}
	if cost <= 0 {
		return 0, fmt.Errorf("%w: cost must be positive", ledger.ErrInvalidInput)
	}
	return s.repository.SpendTokens(ctx, userID, cost)
}

func (s *ledgerServiceImpl) List(ctx context.Context, limit, offset int) (*ledger.BalanceListResp, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	balances, err := s.repository.ListBalances(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return ledger.BalancesToResp(balances), nil
}

func (s *ledgerServiceImpl) Search(ctx context.Context, partialID string) (*ledger.BalanceListResp, error) {
	partialID = strings.TrimSpace(partialID)
	if partialID == "" {
		return nil, fmt.Errorf("%w: search term is required", ledger.ErrInvalidInput)
	}
	// user_id là số; term chứa ký tự khác sẽ không match gì
	for _, r := range partialID {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: search term must be digits", ledger.ErrInvalidInput)
		}
	}

	balances, err := s.repository.SearchBalances(ctx, partialID)
	if err != nil {
		return nil, err
	}
	return ledger.BalancesToResp(balances), nil
}

func (s *ledgerServiceImpl) RecordOrder(ctx context.Context, req *ledger.RecordOrderReq) (*ledger.OrderResp, error) {
	// ========== STEP 1: Validate ==========
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", ledger.ErrInvalidInput)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidInput, err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must be a non-negative decimal", ledger.ErrInvalidInput)
	}

	currency := req.Currency
	if currency == "" {
		currency = ledger.DefaultCurrency
	}

	// ========== STEP 2: Append Order Row ==========
	order := &ledger.Order{
		ID:       uuid.NewString(),
		UserID:   req.UserID,
		Tokens:   req.Tokens,
		Amount:   amount,
		Currency: currency,
		Status:   ledger.OrderStatusCompleted,
		Metadata: req.Metadata,
	}
	if err := s.repository.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	// ========== STEP 3: Credit Tokens ==========
	// Payment đã thành công phía Telegram rồi; nếu credit fail thì order
	// row vẫn là bằng chứng để reconcile bằng tay.
	if _, err := s.repository.AddTokens(ctx, req.UserID, req.Tokens); err != nil {
		logger.Error("RecordOrder: token credit failed", err)
		return nil, fmt.Errorf("record order %s: %w", order.ID, err)
	}

	logger.Info("order recorded", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"tokens":   order.Tokens,
		"amount":   order.Amount.String(),
		"currency": order.Currency,
	})

	created, err := s.repository.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return ledger.OrderToResp(created), nil
}

func (s *ledgerServiceImpl) GetOrder(ctx context.Context, id string) (*ledger.OrderResp, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: order id is required", ledger.ErrInvalidInput)
	}
	order, err := s.repository.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return ledger.OrderToResp(order), nil
}

func (s *ledgerServiceImpl) ListOrdersByUser(ctx context.Context, userID int64) (*ledger.OrderListResp, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: invalid user id", ledger.ErrInvalidInput)
	}
	orders, err := s.repository.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ledger.OrdersToResp(orders), nil
}

func (s *ledgerServiceImpl) WasProcessed(ctx context.Context, orderID string) (bool, error) {
	if strings.TrimSpace(orderID) == "" {
		return false, fmt.Errorf("%w: order id is required", ledger.ErrInvalidInput)
	}
	return s.repository.OrderExists(ctx, orderID)
}
