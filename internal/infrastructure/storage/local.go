package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// LocalStorage keeps photos on the host disk under a per-user directory:
// <base>/<owner_id>/photo_<name>_<hash>.jpg. Paths stored in the database
// are relative to the base directory so the base can move between hosts.
// There is no public URL; Save always returns an empty url.
//
// LocalStorage also implements ObjectStore (keys are relative paths), which
// lets tests exercise database lifecycle sync without a bucket.
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("local storage: base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: failed to create base directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

func (s *LocalStorage) Save(ctx context.Context, data []byte, ownerID int64, name string) (string, string, error) {
	relPath := filepath.Join(fmt.Sprintf("%d", ownerID), assetFilename(ownerID, name, data))

	fullPath := filepath.Join(s.baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", "", fmt.Errorf("local storage: failed to create user directory: %w", err)
	}

	// Write-to-temp + rename: concurrent saves for different assets never
	// observe each other's partial writes.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return "", "", fmt.Errorf("local storage: failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", "", fmt.Errorf("local storage: failed to write photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", "", fmt.Errorf("local storage: failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return "", "", fmt.Errorf("local storage: failed to move photo into place: %w", err)
	}

	log.Debug().Str("path", relPath).Msg("photo saved locally")
	return filepath.ToSlash(relPath), "", nil
}

func (s *LocalStorage) Fetch(ctx context.Context, path string) ([]byte, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, path)
		}
		return nil, fmt.Errorf("local storage: failed to read %s: %w", path, err)
	}
	return data, nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, path)
		}
		return fmt.Errorf("local storage: failed to delete %s: %w", path, err)
	}
	return nil
}

// ========================================
// ObjectStore (raw keys)
// ========================================

func (s *LocalStorage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("local storage: failed to create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return fmt.Errorf("local storage: failed to write %s: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) GetObject(ctx context.Context, key string) ([]byte, error) {
	return s.Fetch(ctx, key)
}

func (s *LocalStorage) StatObject(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, key)
		}
		return fmt.Errorf("local storage: failed to stat %s: %w", key, err)
	}
	return nil
}

// resolve joins path với base dir và chặn path traversal.
func (s *LocalStorage) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("local storage: invalid path %q", path)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
