package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"personabot-backend/internal/domains/ledger"
	"personabot-backend/internal/infrastructure/database"
	pkgdb "personabot-backend/pkg/database"
)

type ledgerRepo struct {
	db *database.SQLiteDB
}

func NewLedgerRepository(db *database.SQLiteDB) ledger.LedgerRepository {
	return &ledgerRepo{db: db}
}

// upsertBalance ghi giá trị tuyệt đối; dùng chung cho Set và các tx helpers.
const upsertBalance = `
	INSERT INTO token_balances (user_id, tokens) VALUES (?, ?)
	ON CONFLICT(user_id) DO UPDATE SET tokens = excluded.tokens, updated_at = CURRENT_TIMESTAMP`

func (r *ledgerRepo) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var tokens int64
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT tokens FROM token_balances WHERE user_id = ?`, userID).Scan(&tokens)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// User chưa có row => balance 0, không tạo row trên read path
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return tokens, nil
}

func (r *ledgerRepo) SetBalance(ctx context.Context, userID, tokens int64) error {
	if _, err := r.db.DB.ExecContext(ctx, upsertBalance, userID, tokens); err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return nil
}

// AddTokens chạy read-modify-write trong một transaction duy nhất.
// DSN dùng _txlock=immediate nên hai Add đồng thời được engine serialize;
// cả hai delta đều land, không lost update.
func (r *ledgerRepo) AddTokens(ctx context.Context, userID, delta int64) (int64, error) {
	return pkgdb.WithTxResult(ctx, r.db.DB, func(tx *sql.Tx) (int64, error) {
		current, err := balanceInTx(ctx, tx, userID)
		if err != nil {
			return 0, err
		}

		next := current + delta
		if next < 0 {
			next = 0
		}

		if _, err := tx.ExecContext(ctx, upsertBalance, userID, next); err != nil {
			return 0, fmt.Errorf("failed to write balance: %w", err)
		}
		return next, nil
	})
}

func (r *ledgerRepo) SpendTokens(ctx context.Context, userID, cost int64) (int64, error) {
	return pkgdb.WithTxResult(ctx, r.db.DB, func(tx *sql.Tx) (int64, error) {
		current, err := balanceInTx(ctx, tx, userID)
		if err != nil {
			return 0, err
		}

		if current < cost {
			return 0, fmt.Errorf("%w: have %d, need %d", ledger.ErrInsufficientTokens, current, cost)
		}

		next := current - cost
		if _, err := tx.ExecContext(ctx, upsertBalance, userID, next); err != nil {
			return 0, fmt.Errorf("failed to write balance: %w", err)
		}
		return next, nil
	})
}

func (r *ledgerRepo) ListBalances(ctx context.Context, limit, offset int) ([]ledger.TokenBalance, error) {
	rows, err := r.db.DB.QueryContext(ctx, `
		SELECT user_id, tokens, created_at, updated_at
		FROM token_balances
		ORDER BY updated_at DESC, user_id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()
	return scanBalances(rows)
}

func (r *ledgerRepo) SearchBalances(ctx context.Context, partialID string) ([]ledger.TokenBalance, error) {
	rows, err := r.db.DB.QueryContext(ctx, `
		SELECT user_id, tokens, created_at, updated_at
		FROM token_balances
		WHERE CAST(user_id AS TEXT) LIKE '%' || ? || '%'
		ORDER BY updated_at DESC, user_id DESC`, partialID)
	if err != nil {
		return nil, fmt.Errorf("failed to search balances: %w", err)
	}
	defer rows.Close()
	return scanBalances(rows)
}

// ========================================
// Orders
// ========================================

func (r *ledgerRepo) CreateOrder(ctx context.Context, o *ledger.Order) error {
	_, err := r.db.DB.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, tokens, amount, currency, status, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.Tokens, o.Amount.String(), o.Currency, o.Status, o.Metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *ledgerRepo) GetOrder(ctx context.Context, id string) (*ledger.Order, error) {
	row := r.db.DB.QueryRowContext(ctx, `
		SELECT id, user_id, tokens, amount, currency, status, metadata, created_at
		FROM orders WHERE id = ?`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ledger.ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func (r *ledgerRepo) ListOrdersByUser(ctx context.Context, userID int64) ([]ledger.Order, error) {
	rows, err := r.db.DB.QueryContext(ctx, `
		SELECT id, user_id, tokens, amount, currency, status, metadata, created_at
		FROM orders WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []ledger.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

func (r *ledgerRepo) OrderExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.DB.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check order: %w", err)
	}
	return true, nil
}

// ========================================
// Helpers
// ========================================

func balanceInTx(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	var tokens int64
	err := tx.QueryRowContext(ctx,
		`SELECT tokens FROM token_balances WHERE user_id = ?`, userID).Scan(&tokens)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return tokens, nil
}

func scanBalances(rows *sql.Rows) ([]ledger.TokenBalance, error) {
	var balances []ledger.TokenBalance
	for rows.Next() {
		var b ledger.TokenBalance
		if err := rows.Scan(&b.UserID, &b.Tokens, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}
	return balances, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*ledger.Order, error) {
	var o ledger.Order
	var amount string
	err := row.Scan(&o.ID, &o.UserID, &o.Tokens, &amount, &o.Currency, &o.Status, &o.Metadata, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	o.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q on order %s: %w", amount, o.ID, err)
	}
	return &o, nil
}
