// Package dbsync keeps the local SQLite files and their bucket copies in
// step across restarts on ephemeral hosts.
//
// Lifecycle:
//   - startup: PullAll downloads databases/<name>.db for every file that does
//     not exist locally yet. An existing local file always wins; sync never
//     overwrites live state with a stale backup.
//   - shutdown (và periodic ticker nếu bật): PushAll checkpoints the WAL and
//     uploads the self-contained file.
//
// Khi không có bucket credentials thì sync bị disable hoàn toàn và local
// files là authoritative.
package dbsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"personabot-backend/internal/infrastructure/database"
	"personabot-backend/internal/infrastructure/storage"
)

// ErrSyncFailure wraps every unrecoverable sync error. A missing bucket copy
// is NOT a failure (fresh deployment); anything else on the pull path is,
// because starting with empty databases while the backup holds real balances
// would silently wipe user state.
var ErrSyncFailure = errors.New("database sync failed")

const dbContentType = "application/x-sqlite3"

// bucketKey: databases/<filename>, ví dụ databases/users.db
func bucketKey(path string) string {
	return "databases/" + filepath.Base(path)
}

// PullAll restores database files from the bucket before they are opened.
// Call order matters: pulling after sql.Open would overwrite a file the
// engine already has page-cached.
func PullAll(ctx context.Context, store storage.ObjectStore, paths []string) error {
	for _, path := range paths {
		if err := pullOne(ctx, store, path); err != nil {
			return err
		}
	}
	return nil
}

func pullOne(ctx context.Context, store storage.ObjectStore, path string) error {
	if _, err := os.Stat(path); err == nil {
		log.Info().Str("path", path).Msg("local database exists, skipping pull")
		return nil
	}

	// File WAL/SHM cũ không đi kèm main file mới => xoá trước khi restore,
	// nếu không SQLite sẽ replay journal của một database khác.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + suffix); err == nil {
			log.Warn().Str("file", path+suffix).Msg("removed stale journal file")
		}
	}

	key := bucketKey(path)
	data, err := store.GetObject(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrAssetNotFound) {
			log.Info().Str("key", key).Msg("no bucket copy, starting with a fresh database")
			return nil
		}
		return fmt.Errorf("%w: pull %s: %v", ErrSyncFailure, key, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create directory for %s: %v", ErrSyncFailure, path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrSyncFailure, path, err)
	}

	log.Info().Str("key", key).Str("path", path).Int("bytes", len(data)).Msg("database restored from bucket")
	return nil
}

// Syncer pushes open databases back to the bucket, either periodically or
// once at shutdown.
type Syncer struct {
	store       storage.ObjectStore
	dbs         []*database.SQLiteDB
	interval    time.Duration
	pushTimeout time.Duration

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

func NewSyncer(store storage.ObjectStore, dbs []*database.SQLiteDB, interval, pushTimeout time.Duration) *Syncer {
	return &Syncer{
		store:       store,
		dbs:         dbs,
		interval:    interval,
		pushTimeout: pushTimeout,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// PushAll checkpoints and uploads every database. Errors are aggregated: one
// failing file must not stop the others from being backed up.
func (s *Syncer) PushAll(ctx context.Context) error {
	if s.pushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.pushTimeout)
		defer cancel()
	}

	var errs []error
	for _, db := range s.dbs {
		if err := s.pushOne(ctx, db); err != nil {
			log.Error().Str("path", db.Path).Err(err).Msg("database push failed")
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrSyncFailure, errors.Join(errs...))
	}
	return nil
}

func (s *Syncer) pushOne(ctx context.Context, db *database.SQLiteDB) error {
	if err := db.Checkpoint(ctx); err != nil {
		return err
	}

	data, err := os.ReadFile(db.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", db.Path, err)
	}

	key := bucketKey(db.Path)
	if err := s.store.PutObject(ctx, key, data, dbContentType); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	log.Info().Str("key", key).Int("bytes", len(data)).Msg("database pushed to bucket")
	return nil
}

// Start launches the periodic push loop. No-op khi interval = 0.
func (s *Syncer) Start() {
	if s.interval <= 0 {
		close(s.doneCh)
		return
	}

	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				// Periodic push là best-effort; lỗi đã được log trong PushAll
				_ = s.PushAll(context.Background())
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the periodic loop and waits for it to exit.
func (s *Syncer) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}
