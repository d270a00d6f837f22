package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personabot-backend/internal/domains/persona"
	"personabot-backend/internal/infrastructure/database"
)

func newTestRepo(t *testing.T) persona.PersonaRepository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "personas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsurePersonasSchema(db))
	return NewPersonaRepository(db)
}

func testPersona(ownerID int64, name string) *persona.Persona {
	character := "gentle and curious"
	return &persona.Persona{
		OwnerID:     ownerID,
		Name:        name,
		Age:         25,
		Description: "an AI companion",
		Character:   &character,
		PhotoPath:   "1/photo_" + name + "_deadbeef.jpg",
	}
}

func TestCreateAndGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, testPersona(1, "Aria"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Zero(t, created.ChatCount)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aria", got.Name)
	assert.Equal(t, int64(1), got.OwnerID)
	require.NotNil(t, got.Character)
	assert.Equal(t, "gentle and curious", *got.Character)
	assert.Nil(t, got.Scene)
	assert.Nil(t, got.PhotoURL)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, persona.ErrPersonaNotFound)
}

func TestCreateDuplicateName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, testPersona(1, "Aria"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, testPersona(1, "Aria"))
	assert.ErrorIs(t, err, persona.ErrDuplicateName)

	// Cùng tên, owner khác => hợp lệ
	_, err = repo.Create(ctx, testPersona(2, "Aria"))
	assert.NoError(t, err)
}

func TestConcurrentDuplicateCreate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, testPersona(1, "Aria"))
		}(i)
	}
	wg.Wait()

	// Đúng một goroutine thắng, goroutine kia nhận duplicate
	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case persona.IsDuplicateName(err):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)

	personas, err := repo.GetByOwner(ctx, 1, false)
	require.NoError(t, err)
	assert.Len(t, personas, 1)
}

func TestGetByOwnerAndPublicOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p1, err := repo.Create(ctx, testPersona(1, "First"))
	require.NoError(t, err)
	p2, err := repo.Create(ctx, testPersona(1, "Second"))
	require.NoError(t, err)

	pub := testPersona(2, "Shared")
	pub.Public = true
	p3, err := repo.Create(ctx, pub)
	require.NoError(t, err)

	_, err = repo.Create(ctx, testPersona(2, "Hidden"))
	require.NoError(t, err)

	// Own only: mới nhất trước
	own, err := repo.GetByOwner(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, p2.ID, own[0].ID)
	assert.Equal(t, p1.ID, own[1].ID)

	// Own + public của user khác, không lộ private của user khác
	merged, err := repo.GetByOwner(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, merged, 3)
	assert.Equal(t, p3.ID, merged[0].ID)
	assert.Equal(t, p2.ID, merged[1].ID)
	assert.Equal(t, p1.ID, merged[2].ID)

	public, err := repo.GetPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, p3.ID, public[0].ID)
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, testPersona(1, "Aria"))
	require.NoError(t, err)

	created.Name = "Aria v2"
	created.Age = 30
	scene := "a rainy rooftop bar"
	created.Scene = &scene

	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Aria v2", updated.Name)
	assert.Equal(t, 30, updated.Age)
	require.NotNil(t, updated.Scene)
	assert.Equal(t, scene, *updated.Scene)
}

func TestUpdateRenameCollision(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, testPersona(1, "Aria"))
	require.NoError(t, err)
	second, err := repo.Create(ctx, testPersona(1, "Mira"))
	require.NoError(t, err)

	second.Name = "Aria"
	_, err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, persona.ErrDuplicateName)
}

func TestUpdateMissingPersona(t *testing.T) {
	repo := newTestRepo(t)

	ghost := testPersona(1, "Ghost")
	ghost.ID = 12345
	_, err := repo.Update(context.Background(), ghost)
	assert.ErrorIs(t, err, persona.ErrPersonaNotFound)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, testPersona(1, "Aria"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, persona.ErrPersonaNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, created.ID), persona.ErrPersonaNotFound)
}

func TestIncrementChatCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, testPersona(1, "Aria"))
	require.NoError(t, err)

	require.NoError(t, repo.IncrementChatCount(ctx, created.ID))
	require.NoError(t, repo.IncrementChatCount(ctx, created.ID))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ChatCount)

	assert.ErrorIs(t, repo.IncrementChatCount(ctx, 999), persona.ErrPersonaNotFound)
}
