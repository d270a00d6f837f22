package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"personabot-backend/internal/config"
)

// bucketStorage là shared implementation cho các S3-compatible backends
// (AWS S3 và Yandex Object Storage). Khác nhau chỉ ở endpoint và cách build
// public URL; mọi transfer logic là một.
type bucketStorage struct {
	client    *minio.Client
	bucket    string
	publicURL func(key string) string // nil => bucket không có public-read
}

// NewS3Storage khởi tạo client cho một S3-compatible bucket.
func NewS3Storage(cfg config.S3Config) (BlobStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	var urlFn func(string) string
	if cfg.PublicRead {
		bucket := cfg.Bucket
		urlFn = func(key string) string {
			// Format: https://<bucket>.s3.amazonaws.com/<key>
			return fmt.Sprintf("https://%s.%s/%s", bucket, cfg.Endpoint, key)
		}
	}

	return &bucketStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: urlFn,
	}, nil
}

func (s *bucketStorage) Save(ctx context.Context, data []byte, ownerID int64, name string) (string, string, error) {
	key := bucketAssetKey(ownerID, name, data)
	contentType := http.DetectContentType(data)

	err := withRetry(ctx, "save "+key, func() error {
		_, putErr := s.client.PutObject(
			ctx,
			s.bucket,
			key,
			bytes.NewReader(data),
			int64(len(data)),
			minio.PutObjectOptions{ContentType: contentType},
		)
		return classifyBucketError(putErr)
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	url := ""
	if s.publicURL != nil {
		url = s.publicURL(key)
	}

	log.Info().Str("key", key).Str("url", url).Msg("photo uploaded to bucket")
	return key, url, nil
}

func (s *bucketStorage) Fetch(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := withRetry(ctx, "fetch "+path, func() error {
		object, getErr := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
		if getErr != nil {
			return classifyBucketError(getErr)
		}
		defer object.Close()

		// GetObject là lazy: lỗi thật sự xuất hiện khi đọc
		b, readErr := io.ReadAll(object)
		if readErr != nil {
			return classifyBucketError(readErr)
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *bucketStorage) Delete(ctx context.Context, path string) error {
	err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{})
	if err != nil {
		return classifyBucketError(err)
	}
	return nil
}

// ========================================
// ObjectStore (raw keys, dùng bởi dbsync)
// ========================================

func (s *bucketStorage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	return withRetry(ctx, "put "+key, func() error {
		_, err := s.client.PutObject(
			ctx,
			s.bucket,
			key,
			bytes.NewReader(data),
			int64(len(data)),
			minio.PutObjectOptions{ContentType: contentType},
		)
		return classifyBucketError(err)
	})
}

func (s *bucketStorage) GetObject(ctx context.Context, key string) ([]byte, error) {
	return s.Fetch(ctx, key)
}

func (s *bucketStorage) StatObject(ctx context.Context, key string) error {
	return withRetry(ctx, "stat "+key, func() error {
		_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
		return classifyBucketError(err)
	})
}

// NewObjectStore builds a raw bucket client for database lifecycle sync from
// an explicit credential set (the same set the photo backends use).
func NewObjectStore(endpoint, accessKey, secretKey, bucket, region string, useSSL bool) (ObjectStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &bucketStorage{client: client, bucket: bucket}, nil
}

// classifyBucketError maps minio errors vào error taxonomy:
//
//	NoSuchKey                        => ErrAssetNotFound
//	auth/permission/missing bucket   => ErrBackendRejected (fail fast)
//	5xx, throttling, network errors  => ErrBackendUnavailable (retryable)
func classifyBucketError(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey":
		return fmt.Errorf("%w: %s", ErrAssetNotFound, resp.Key)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch",
		"NoSuchBucket", "AllAccessDisabled", "AccountProblem":
		return fmt.Errorf("%w: %s: %s", ErrBackendRejected, resp.Code, resp.Message)
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s (%d)", ErrBackendUnavailable, resp.Code, resp.StatusCode)
	}
	if resp.Code == "" {
		// Không phải S3 error response => network-level failure (timeout,
		// connection refused). Transient.
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return fmt.Errorf("%w: %s: %s", ErrBackendRejected, resp.Code, resp.Message)
}
