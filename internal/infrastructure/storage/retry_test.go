package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetryTransientEventuallySucceeds(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), "test", func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("%w: timeout", ErrBackendUnavailable)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryRejectedFailsFast(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), "test", func() error {
		attempts++
		return fmt.Errorf("%w: access denied", ErrBackendRejected)
	})

	assert.ErrorIs(t, err, ErrBackendRejected)
	assert.Equal(t, 1, attempts, "auth errors must not be retried")
}

func TestWithRetryNotFoundFailsFast(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), "test", func() error {
		attempts++
		return fmt.Errorf("%w: key", ErrAssetNotFound)
	})

	assert.ErrorIs(t, err, ErrAssetNotFound)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), "test", func() error {
		attempts++
		return fmt.Errorf("%w: still down", ErrBackendUnavailable)
	})

	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, maxAttempts, attempts)
}

func TestWithRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, "test", func() error {
		return fmt.Errorf("%w: down", ErrBackendUnavailable)
	})

	assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, ErrBackendUnavailable))
}
