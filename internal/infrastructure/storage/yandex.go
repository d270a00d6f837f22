package storage

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"personabot-backend/internal/config"
)

// NewYandexStorage khởi tạo client cho Yandex Object Storage.
// Yandex nói S3 API nên dùng chung bucketStorage; chỉ endpoint và
// URL scheme là riêng: https://<bucket>.storage.yandexcloud.net/<key>
func NewYandexStorage(cfg config.YandexConfig) (BlobStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: true,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create yandex client: %w", err)
	}

	bucket := cfg.Bucket
	endpoint := cfg.Endpoint
	return &bucketStorage{
		client: client,
		bucket: bucket,
		publicURL: func(key string) string {
			return fmt.Sprintf("https://%s.%s/%s", bucket, endpoint, key)
		},
	}, nil
}
