package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerMinute(t *testing.T) {
	tests := []struct {
		rpm      int
		expected Config
	}{
		{rpm: 0, expected: Config{}},
		{rpm: -5, expected: Config{}},
		{rpm: 6, expected: Config{RequestsPerSecond: 0.1, BurstSize: 1}},
		{rpm: 60, expected: Config{RequestsPerSecond: 1, BurstSize: 6}},
		{rpm: 300, expected: Config{RequestsPerSecond: 5, BurstSize: 30}},
	}

	for _, tt := range tests {
		got := PerMinute(tt.rpm)
		assert.InDelta(t, tt.expected.RequestsPerSecond, got.RequestsPerSecond, 1e-9, "rpm %d", tt.rpm)
		assert.Equal(t, tt.expected.BurstSize, got.BurstSize, "rpm %d", tt.rpm)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	l := New("test", Config{})
	assert.Equal(t, "test", l.Name())

	for range 100 {
		assert.True(t, l.Allow())
	}
	require.NoError(t, l.Wait(context.Background()))
}

func TestLimiter_Burst(t *testing.T) {
	l := New("test", Config{RequestsPerSecond: 0.001, BurstSize: 2})

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiter_Backoff(t *testing.T) {
	l := New("test", Config{})

	l.RecordRateLimitError(50 * time.Millisecond)
	assert.False(t, l.Allow())

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	assert.True(t, l.Allow())
}

func TestLimiter_BackoffKeepsLonger(t *testing.T) {
	l := New("test", Config{})

	l.RecordRateLimitError(time.Hour)
	l.RecordRateLimitError(time.Millisecond)

	assert.False(t, l.Allow())
}

func TestLimiter_WaitCancelled(t *testing.T) {
	l := New("test", Config{})
	l.RecordRateLimitError(0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
