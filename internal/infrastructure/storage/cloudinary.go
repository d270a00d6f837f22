package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog/log"

	"personabot-backend/internal/config"
)

// cloudinaryPrefix đánh dấu paths thuộc về Cloudinary backend. Path lưu trong
// database là "cloudinary:<public_id>"; prefix giúp phân biệt với bucket keys
// khi một deployment đổi backend giữa chừng.
const cloudinaryPrefix = "cloudinary:"

// CloudinaryStorage uploads photos to Cloudinary và serve qua CDN URL của họ.
type CloudinaryStorage struct {
	cld        *cloudinary.Cloudinary
	httpClient *http.Client
}

func NewCloudinaryStorage(cfg config.CloudinaryConfig) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryStorage{
		cld:        cld,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *CloudinaryStorage) Save(ctx context.Context, data []byte, ownerID int64, name string) (string, string, error) {
	// Public ID không có extension: Cloudinary tự detect format và
	// serve bản gốc qua delivery URL.
	publicID := fmt.Sprintf("personas/%d/%s_%s", ownerID, NormalizeName(name), assetHash(ownerID, name, data))

	var result *uploader.UploadResult
	err := withRetry(ctx, "save "+publicID, func() error {
		res, upErr := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
			PublicID:  publicID,
			Overwrite: api.Bool(true),
		})
		if upErr != nil {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, upErr)
		}
		// SDK trả error qua response body cho API-level failures
		if res.Error.Message != "" {
			return classifyCloudinaryError(res.Error.Message)
		}
		result = res
		return nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload %s: %w", publicID, err)
	}

	log.Info().Str("public_id", publicID).Str("url", result.SecureURL).Msg("photo uploaded to cloudinary")
	return cloudinaryPrefix + publicID, result.SecureURL, nil
}

func (s *CloudinaryStorage) Fetch(ctx context.Context, path string) ([]byte, error) {
	publicID := strings.TrimPrefix(path, cloudinaryPrefix)

	img, err := s.cld.Image(publicID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid public id %q: %v", ErrBackendRejected, publicID, err)
	}
	url, err := img.String()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build delivery url for %q: %v", ErrBackendRejected, publicID, err)
	}

	var data []byte
	err = withRetry(ctx, "fetch "+publicID, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			return fmt.Errorf("%w: %v", ErrBackendRejected, reqErr)
		}
		resp, doErr := s.httpClient.Do(req)
		if doErr != nil {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, doErr)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrAssetNotFound, publicID)
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: delivery returned %d", ErrBackendUnavailable, resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("%w: delivery returned %d", ErrBackendRejected, resp.StatusCode)
		}

		b, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, readErr)
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, path string) error {
	publicID := strings.TrimPrefix(path, cloudinaryPrefix)

	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if res.Result == "not found" {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, publicID)
	}
	if res.Result != "ok" {
		return classifyCloudinaryError(res.Result)
	}
	return nil
}

func classifyCloudinaryError(msg string) error {
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "invalid") || strings.Contains(lower, "denied") ||
		strings.Contains(lower, "unauthorized") || strings.Contains(lower, "api_key") {
		return fmt.Errorf("%w: %s", ErrBackendRejected, msg)
	}
	return fmt.Errorf("%w: %s", ErrBackendUnavailable, msg)
}
