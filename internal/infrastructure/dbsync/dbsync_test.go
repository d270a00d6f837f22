package dbsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personabot-backend/internal/infrastructure/database"
	"personabot-backend/internal/infrastructure/storage"
)

// LocalStorage implement ObjectStore nên đóng vai bucket trong tests.
func newTestBucket(t *testing.T) storage.ObjectStore {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestPullAllRestoresMissingFile(t *testing.T) {
	ctx := context.Background()
	bucket := newTestBucket(t)
	content := []byte("pretend sqlite file")

	require.NoError(t, bucket.PutObject(ctx, "databases/users.db", content, "application/x-sqlite3"))

	localPath := filepath.Join(t.TempDir(), "users.db")
	require.NoError(t, PullAll(ctx, bucket, []string{localPath}))

	got, err := os.ReadFile(localPath)
	require.NoError(t, err)
	assert.Equal(t, content, got, "restored file must be byte-identical")
}

func TestPullAllKeepsExistingLocalFile(t *testing.T) {
	ctx := context.Background()
	bucket := newTestBucket(t)

	require.NoError(t, bucket.PutObject(ctx, "databases/users.db", []byte("stale backup"), "application/x-sqlite3"))

	localPath := filepath.Join(t.TempDir(), "users.db")
	require.NoError(t, os.WriteFile(localPath, []byte("live local state"), 0o644))

	require.NoError(t, PullAll(ctx, bucket, []string{localPath}))

	got, err := os.ReadFile(localPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("live local state"), got, "local file always wins over the backup")
}

func TestPullAllToleratesMissingRemote(t *testing.T) {
	ctx := context.Background()
	bucket := newTestBucket(t)

	localPath := filepath.Join(t.TempDir(), "users.db")
	require.NoError(t, PullAll(ctx, bucket, []string{localPath}))

	_, err := os.Stat(localPath)
	assert.True(t, os.IsNotExist(err), "fresh deployment starts without a file")
}

func TestPullAllRemovesStaleJournalFiles(t *testing.T) {
	ctx := context.Background()
	bucket := newTestBucket(t)

	require.NoError(t, bucket.PutObject(ctx, "databases/users.db", []byte("db"), "application/x-sqlite3"))

	dir := t.TempDir()
	localPath := filepath.Join(dir, "users.db")
	require.NoError(t, os.WriteFile(localPath+"-wal", []byte("old wal"), 0o644))
	require.NoError(t, os.WriteFile(localPath+"-shm", []byte("old shm"), 0o644))

	require.NoError(t, PullAll(ctx, bucket, []string{localPath}))

	_, err := os.Stat(localPath + "-wal")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(localPath + "-shm")
	assert.True(t, os.IsNotExist(err))
}

type failingStore struct{ err error }

func (f *failingStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	return f.err
}
func (f *failingStore) GetObject(ctx context.Context, key string) ([]byte, error) { return nil, f.err }
func (f *failingStore) StatObject(ctx context.Context, key string) error          { return f.err }

func TestPullAllFailsOnBackendError(t *testing.T) {
	store := &failingStore{err: fmt.Errorf("%w: bad credentials", storage.ErrBackendRejected)}

	localPath := filepath.Join(t.TempDir(), "users.db")
	err := PullAll(context.Background(), store, []string{localPath})

	assert.ErrorIs(t, err, ErrSyncFailure)
}

func TestPushPullRoundTrip(t *testing.T) {
	ctx := context.Background()
	bucket := newTestBucket(t)

	// Ghi data thật vào một database rồi push
	srcPath := filepath.Join(t.TempDir(), "users.db")
	src, err := database.Open(srcPath)
	require.NoError(t, err)
	require.NoError(t, database.EnsureUsersSchema(src))
	_, err = src.DB.Exec(`INSERT INTO token_balances (user_id, tokens) VALUES (1, 150)`)
	require.NoError(t, err)

	syncer := NewSyncer(bucket, []*database.SQLiteDB{src}, 0, 10*time.Second)
	require.NoError(t, syncer.PushAll(ctx))
	require.NoError(t, src.Close())

	// Pull về một host "mới" và kiểm tra data còn nguyên
	dstPath := filepath.Join(t.TempDir(), "users.db")
	require.NoError(t, PullAll(ctx, bucket, []string{dstPath}))

	dst, err := database.Open(dstPath)
	require.NoError(t, err)
	defer dst.Close()

	var tokens int64
	require.NoError(t, dst.DB.QueryRow(`SELECT tokens FROM token_balances WHERE user_id = 1`).Scan(&tokens))
	assert.Equal(t, int64(150), tokens)
}

func TestPushAllReportsFailureButContinues(t *testing.T) {
	store := &failingStore{err: fmt.Errorf("%w: offline", storage.ErrBackendUnavailable)}

	path := filepath.Join(t.TempDir(), "users.db")
	db, err := database.Open(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.EnsureUsersSchema(db))

	syncer := NewSyncer(store, []*database.SQLiteDB{db}, 0, time.Second)
	err = syncer.PushAll(context.Background())
	assert.ErrorIs(t, err, ErrSyncFailure)
}

func TestSyncerStartStopWithoutInterval(t *testing.T) {
	bucket := newTestBucket(t)
	syncer := NewSyncer(bucket, nil, 0, time.Second)

	syncer.Start()
	syncer.Stop() // phải return ngay, không deadlock
}
