package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLocalStorageRoundTrip(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	data := []byte("jpeg bytes go here")

	path, url, err := s.Save(ctx, data, 42, "Aria Test")
	require.NoError(t, err)
	assert.Empty(t, url, "local backend has no public URL")
	assert.True(t, strings.HasPrefix(path, "42/photo_aria_test_"), "path %q", path)

	got, err := s.Fetch(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStorageFetchNotFound(t *testing.T) {
	s := newTestLocal(t)

	_, err := s.Fetch(context.Background(), "42/photo_nope_00000000.jpg")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestLocalStorageDelete(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	path, _, err := s.Save(ctx, []byte("bytes"), 1, "temp")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, path))

	_, err = s.Fetch(ctx, path)
	assert.ErrorIs(t, err, ErrAssetNotFound)

	assert.ErrorIs(t, s.Delete(ctx, path), ErrAssetNotFound)
}

func TestLocalStorageRejectsPathTraversal(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	_, err := s.Fetch(ctx, "../outside.txt")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAssetNotFound)

	_, err = s.Fetch(ctx, "/etc/hosts")
	assert.Error(t, err)
}

func TestLocalStorageObjectStore(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	data := []byte("sqlite file contents")

	assert.ErrorIs(t, s.StatObject(ctx, "databases/users.db"), ErrAssetNotFound)

	require.NoError(t, s.PutObject(ctx, "databases/users.db", data, "application/x-sqlite3"))
	require.NoError(t, s.StatObject(ctx, "databases/users.db"))

	got, err := s.GetObject(ctx, "databases/users.db")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStorageSaveIsIdempotent(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	data := []byte("same bytes")

	first, _, err := s.Save(ctx, data, 9, "dup")
	require.NoError(t, err)
	second, _, err := s.Save(ctx, data, 9, "dup")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	entries, err := os.ReadDir(filepath.Join(s.baseDir, "9"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
