package database

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx function:
//     Begin transaction từ *sql.DB
//     Defer rollback - Sẽ tự động rollback nếu:
//         Function fn return error
//         Có panic xảy ra
//     Execute function fn với transaction
//     Commit nếu không có error
//
// Databases are opened with _txlock=immediate, so every transaction started
// here takes the SQLite write lock up front. Concurrent writers are
// serialized by the engine; read-modify-write sequences (balance updates,
// uniqueness checks) need no caller-side locking.

// TxFunc là function type được execute trong transaction
type TxFunc func(*sql.Tx) error

// WithTx wraps một function trong transaction.
// Auto rollback nếu có error, auto commit nếu success.
func WithTx(ctx context.Context, db *sql.DB, fn TxFunc) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Defer rollback (sẽ bị ignore nếu đã commit)
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-throw panic
		} else if err != nil {
			tx.Rollback()
		}
	}()

	err = fn(tx)
	if err != nil {
		return err // Defer sẽ rollback
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithTxResult wraps function có return value trong transaction
func WithTxResult[T any](ctx context.Context, db *sql.DB, fn func(*sql.Tx) (T, error)) (T, error) {
	var result T
	var fnErr error

	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		result, fnErr = fn(tx)
		return fnErr
	})

	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
