// Copyright 2026 Peter Edge
//
// All rights reserved.

package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	t.Parallel()
	policy := Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
	}
	// Succeeds on the third attempt.
	var attempts int
	result, err := Retry(context.Background(), policy, func(_ context.Context, attempt int) (string, bool, error) {
		attempts++
		if attempt < 2 {
			return "", true, errors.New("busy")
		}
		return "ok", false, nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, 3, attempts)

	// Gives up after the maximum number of attempts.
	busyErr := errors.New("busy")
	attempts = 0
	_, err = Retry(context.Background(), policy, func(context.Context, int) (string, bool, error) {
		attempts++
		return "", true, busyErr
	})
	require.ErrorIs(t, err, busyErr)
	require.Equal(t, 3, attempts)

	// Non-retryable errors return immediately.
	attempts = 0
	_, err = Retry(context.Background(), policy, func(context.Context, int) (string, bool, error) {
		attempts++
		return "", false, busyErr
	})
	require.ErrorIs(t, err, busyErr)
	require.Equal(t, 1, attempts)
}

func TestRetryContextCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	policy := Policy{
		MaxAttempts:  5,
		InitialDelay: time.Hour,
		MaxDelay:     time.Hour,
	}
	_, err := Retry(ctx, policy, func(context.Context, int) (int, bool, error) {
		return 0, true, errors.New("busy")
	})
	require.ErrorIs(t, err, context.Canceled)
}
