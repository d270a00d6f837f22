package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"personabot-backend/internal/domains/persona"
	"personabot-backend/internal/infrastructure/database"
)

type personaRepo struct {
	db *database.SQLiteDB
}

func NewPersonaRepository(db *database.SQLiteDB) persona.PersonaRepository {
	return &personaRepo{db: db}
}

const personaColumns = `id, owner_id, name, age, description, character, scene,
	photo_path, photo_url, public, chat_count, created_at, updated_at`

func (r *personaRepo) Create(ctx context.Context, p *persona.Persona) (*persona.Persona, error) {
	result, err := r.db.DB.ExecContext(ctx, `
		INSERT INTO personas (owner_id, name, age, description, character, scene, photo_path, photo_url, public)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.OwnerID, p.Name, p.Age, p.Description, p.Character, p.Scene, p.PhotoPath, p.PhotoURL, p.Public,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", persona.ErrDuplicateName, p.Name)
		}
		return nil, fmt.Errorf("failed to create persona: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read persona id: %w", err)
	}

	// Đọc lại row để lấy timestamps do DB gán
	return r.GetByID(ctx, id)
}

func (r *personaRepo) GetByID(ctx context.Context, id int64) (*persona.Persona, error) {
	row := r.db.DB.QueryRowContext(ctx,
		`SELECT `+personaColumns+` FROM personas WHERE id = ?`, id)

	p, err := scanPersona(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", persona.ErrPersonaNotFound, id)
		}
		return nil, fmt.Errorf("failed to get persona: %w", err)
	}
	return p, nil
}

func (r *personaRepo) GetByOwner(ctx context.Context, ownerID int64, includePublic bool) ([]persona.Persona, error) {
	query := `SELECT ` + personaColumns + ` FROM personas WHERE owner_id = ?`
	args := []interface{}{ownerID}
	if includePublic {
		// Public personas của user khác, không duplicate personas của chính owner
		query = `SELECT ` + personaColumns + ` FROM personas WHERE owner_id = ? OR (public = 1 AND owner_id != ?)`
		args = append(args, ownerID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return r.queryPersonas(ctx, query, args...)
}

func (r *personaRepo) GetPublic(ctx context.Context) ([]persona.Persona, error) {
	return r.queryPersonas(ctx,
		`SELECT `+personaColumns+` FROM personas WHERE public = 1 ORDER BY created_at DESC, id DESC`)
}

func (r *personaRepo) Update(ctx context.Context, p *persona.Persona) (*persona.Persona, error) {
	result, err := r.db.DB.ExecContext(ctx, `
		UPDATE personas
		SET name = ?, age = ?, description = ?, character = ?, scene = ?,
		    photo_path = ?, photo_url = ?, public = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Name, p.Age, p.Description, p.Character, p.Scene, p.PhotoPath, p.PhotoURL, p.Public, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", persona.ErrDuplicateName, p.Name)
		}
		return nil, fmt.Errorf("failed to update persona: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: id %d", persona.ErrPersonaNotFound, p.ID)
	}

	return r.GetByID(ctx, p.ID)
}

func (r *personaRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM personas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete persona: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", persona.ErrPersonaNotFound, id)
	}
	return nil
}

func (r *personaRepo) IncrementChatCount(ctx context.Context, id int64) error {
	result, err := r.db.DB.ExecContext(ctx,
		`UPDATE personas SET chat_count = chat_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment chat count: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check increment result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", persona.ErrPersonaNotFound, id)
	}
	return nil
}

// ========================================
// Helpers
// ========================================

func (r *personaRepo) queryPersonas(ctx context.Context, query string, args ...interface{}) ([]persona.Persona, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	defer rows.Close()

	var personas []persona.Persona
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan persona: %w", err)
		}
		personas = append(personas, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personas: %w", err)
	}
	return personas, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPersona(row rowScanner) (*persona.Persona, error) {
	var p persona.Persona
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Age, &p.Description,
		&p.Character, &p.Scene, &p.PhotoPath, &p.PhotoURL,
		&p.Public, &p.ChatCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// isUniqueViolation nhận diện SQLITE_CONSTRAINT_UNIQUE từ driver
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
