package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	maxAttempts = 3
	baseDelay   = 500 * time.Millisecond
)

// withRetry thực hiện retry logic với exponential backoff.
// Formula: delay = base_delay * (2 ^ (attempt - 1))
//
// Chỉ retry ErrBackendUnavailable (timeout, 5xx). ErrBackendRejected là
// auth/permission error: retry chỉ tốn thời gian và che giấu misconfiguration,
// nên fail fast ngay attempt đầu tiên.
func withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrBackendUnavailable) {
			return err
		}

		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			log.Warn().
				Str("op", op).
				Int("attempt", attempt).
				Dur("retry_in", delay).
				Err(err).
				Msg("transient storage error, retrying")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}
