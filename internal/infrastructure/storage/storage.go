package storage

import (
	"context"
	"errors"
	"fmt"

	"personabot-backend/internal/config"
)

// BlobStorage lưu trữ photo assets, polymorphic over backend.
// Backend được chọn đúng một lần lúc startup từ STORAGE_TYPE; phần còn lại
// của codebase chỉ thấy interface này.
//
// Save returns two locators:
//   - path: backend-specific key, always present, stored in photo_path
//   - url: publicly resolvable URL, empty when the backend has none
//     (local disk, buckets without a public-read policy)
type BlobStorage interface {
	Save(ctx context.Context, data []byte, ownerID int64, name string) (path string, url string, err error)
	Fetch(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// ObjectStore là raw remote-object primitive: put/get/stat theo explicit key.
// Bucket backends implement cả hai interface; database lifecycle sync dùng
// ObjectStore để chuyển nguyên file .db qua cùng một transfer path với photos.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	StatObject(ctx context.Context, key string) error
}

// Sentinel errors - xem taxonomy trong từng backend:
//   - ErrAssetNotFound: key không tồn tại (fetch/delete path)
//   - ErrBackendUnavailable: transient (timeout, 5xx) => được retry với backoff
//   - ErrBackendRejected: auth/permission/config => fail fast, không retry
var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrBackendUnavailable = errors.New("storage backend unavailable")
	ErrBackendRejected    = errors.New("storage backend rejected request")
)

// New selects the backend from configuration. Called once by the container;
// no other code inspects the storage type at runtime.
func New(cfg *config.Config) (BlobStorage, error) {
	switch cfg.Storage.Type {
	case "local":
		return NewLocalStorage(cfg.Storage.LocalDir)
	case "s3":
		return NewS3Storage(cfg.S3)
	case "yandex":
		return NewYandexStorage(cfg.Yandex)
	case "cloudinary":
		return NewCloudinaryStorage(cfg.Cloudinary)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}
