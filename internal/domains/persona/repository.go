package persona

import "context"

// ============================================================
// REPOSITORY INTERFACE: PersonaRepository
// ============================================================

type PersonaRepository interface {
	// Create inserts a new persona. A (owner_id, name) collision returns
	// ErrDuplicateName; the constraint decides the winner under concurrency.
	Create(ctx context.Context, p *Persona) (*Persona, error)

	GetByID(ctx context.Context, id int64) (*Persona, error)

	// GetByOwner lists the owner's personas, optionally merged with
	// other users' public ones. Ordered created_at DESC, id DESC.
	GetByOwner(ctx context.Context, ownerID int64, includePublic bool) ([]Persona, error)

	// GetPublic lists every public persona, same ordering.
	GetPublic(ctx context.Context) ([]Persona, error)

	// Update writes all mutable fields and refreshes updated_at.
	// Rename collision => ErrDuplicateName, missing row => ErrPersonaNotFound.
	Update(ctx context.Context, p *Persona) (*Persona, error)

	Delete(ctx context.Context, id int64) error

	// IncrementChatCount bumps the usage counter without touching updated_at.
	IncrementChatCount(ctx context.Context, id int64) error
}
