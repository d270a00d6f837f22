package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Schema creation is create-if-absent and runs at every startup, after
// lifecycle sync has had its chance to pull the files from the bucket.
// A database pulled from the bucket already has these tables; a fresh
// local file gets them here.

// EnsurePersonasSchema creates the personas tables and indexes.
func EnsurePersonasSchema(s *SQLiteDB) error {
	_, err := s.DB.Exec(`
		CREATE TABLE IF NOT EXISTS personas (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			age INTEGER NOT NULL,
			description TEXT NOT NULL,
			character TEXT,
			scene TEXT,
			photo_path TEXT NOT NULL,
			photo_url TEXT,
			public BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(owner_id, name)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create personas table: %w", err)
	}

	// Safe additive migrations cho các cột mới
	applyMigrations(s.DB, []string{
		"ALTER TABLE personas ADD COLUMN chat_count INTEGER NOT NULL DEFAULT 0",
	})

	for _, idx := range []string{
		"CREATE INDEX IF NOT EXISTS idx_personas_owner_id ON personas(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_personas_public ON personas(public)",
	} {
		if _, err := s.DB.Exec(idx); err != nil {
			return fmt.Errorf("failed to create personas index: %w", err)
		}
	}

	log.Info().Str("path", s.Path).Msg("personas schema ready")
	return nil
}

// EnsureUsersSchema creates the token balance and order tables.
func EnsureUsersSchema(s *SQLiteDB) error {
	_, err := s.DB.Exec(`
		CREATE TABLE IF NOT EXISTS token_balances (
			user_id INTEGER PRIMARY KEY,
			tokens INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create token_balances table: %w", err)
	}

	// Orders là append-only: không UPDATE, không DELETE.
	_, err = s.DB.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			tokens INTEGER NOT NULL,
			amount TEXT NOT NULL,
			currency TEXT NOT NULL DEFAULT 'XTR',
			status TEXT NOT NULL,
			metadata TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create orders table: %w", err)
	}

	for _, idx := range []string{
		"CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at)",
	} {
		if _, err := s.DB.Exec(idx); err != nil {
			return fmt.Errorf("failed to create orders index: %w", err)
		}
	}

	log.Info().Str("path", s.Path).Msg("users schema ready")
	return nil
}
