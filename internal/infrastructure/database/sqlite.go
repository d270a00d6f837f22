package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // CGO-free SQLite driver
)

// SQLiteDB là wrapper quản lý một database file và lifecycle của nó.
// Mỗi instance own đúng một file (users.db hoặc personas.db).
type SQLiteDB struct {
	DB   *sql.DB
	Path string
}

// Open opens (creating if necessary) the SQLite file at path.
//
// DSN notes:
//   - _txlock=immediate: every transaction takes the write lock at BEGIN,
//     so concurrent writers are serialized by the engine and read-modify-write
//     sequences cannot lose updates.
//   - journal_mode(WAL): readers do not block the single writer.
//   - busy_timeout: writers queue instead of failing with SQLITE_BUSY.
func Open(path string) (*SQLiteDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf(
		"file:%s?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)&_pragma=foreign_keys(ON)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	// SQLite cho phép một writer tại một thời điểm; giới hạn pool nhỏ
	// để tránh giữ quá nhiều file handles.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database %s: %w", path, err)
	}

	return &SQLiteDB{DB: db, Path: path}, nil
}

// Close closes the pool. Safe to call twice.
func (s *SQLiteDB) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Checkpoint folds the WAL back into the main database file so the file on
// disk is complete and self-contained. Lifecycle sync calls this before
// uploading; a database uploaded mid-WAL would be missing committed writes.
func (s *SQLiteDB) Checkpoint(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	if err != nil {
		return fmt.Errorf("wal checkpoint failed for %s: %w", s.Path, err)
	}
	return nil
}

// HealthCheck verify database connectivity
func (s *SQLiteDB) HealthCheck(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("database is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.DB.PingContext(healthCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// applyMigrations runs additive ALTER TABLE statements, ignoring the
// "duplicate column" error that means the migration already ran.
func applyMigrations(db *sql.DB, migrations []string) {
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			// Cột đã tồn tại => bỏ qua
			log.Debug().Str("migration", m).Err(err).Msg("migration skipped")
		}
	}
}
