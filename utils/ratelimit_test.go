package utils

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRateLimit(t *testing.T) {
	tests := []struct {
		input     string
		expected  int64
		expectErr bool
	}{
		{"", 0, false},
		{"  ", 0, false},
		{"1024", 1024, false},
		{"500K", 500 * 1024, false},
		{"500kb", 500 * 1024, false},
		{"5M", 5 * 1024 * 1024, false},
		{"1.5MB", int64(1.5 * 1024 * 1024), false},
		{"2G", 2 * 1024 * 1024 * 1024, false},
		{"10B", 10, false},
		{"-5", 0, true},
		{"-1M", 0, true},
		{"5X", 0, true},
		{"abc", 0, true},
		{"M", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRateLimit(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTokenBucketLimiter_UnlimitedNeverBlocks(t *testing.T) {
	limiter := NewTokenBucketLimiter(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Wait(context.Background(), 1<<20))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestTokenBucketLimiter_WaitsForDeficit(t *testing.T) {
	limiter := NewTokenBucketLimiter(1000)

	// The bucket starts full
	require.NoError(t, limiter.Wait(context.Background(), 1000))

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), 200))
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestTokenBucketLimiter_ContextCancel(t *testing.T) {
	limiter := NewTokenBucketLimiter(10)
	require.NoError(t, limiter.Wait(context.Background(), 10))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, 1000)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestThrottledWriter(t *testing.T) {
	var buf bytes.Buffer

	w := NewThrottledWriter(context.Background(), &buf, NewTokenBucketLimiter(1<<20))
	n, err := w.Write([]byte("chunk"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "chunk", buf.String())

	assert.Same(t, &buf, NewThrottledWriter(context.Background(), &buf, nil))
}

func TestThrottledWriter_CancelledContext(t *testing.T) {
	var buf bytes.Buffer
	limiter := NewTokenBucketLimiter(1)
	require.NoError(t, limiter.Wait(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewThrottledWriter(ctx, &buf, limiter)
	n, err := w.Write([]byte("data"))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}
