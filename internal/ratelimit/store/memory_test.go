package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terralegit/internal/ratelimit/models"
)

func TestInMemorySlidingWindow(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s := NewInMemory(WithClock(func() time.Time { return now }))
	ctx := context.Background()
	policy := models.Policy{Limit: 2, Window: time.Minute}

	first, err := s.Allow(ctx, "k", policy)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	now = now.Add(30 * time.Second)
	second, err := s.Allow(ctx, "k", policy)
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	third, err := s.Allow(ctx, "k", policy)
	require.NoError(t, err)
	assert.False(t, third.Allowed)
	assert.Equal(t, now.Add(30*time.Second), third.ResetAt, "resets when the oldest request leaves the window")

	other, err := s.Allow(ctx, "other", policy)
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are independent")

	now = now.Add(31 * time.Second)
	fourth, err := s.Allow(ctx, "k", policy)
	require.NoError(t, err)
	assert.True(t, fourth.Allowed, "first request slid out of the window")
}

func TestInMemoryReset(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	policy := models.Policy{Limit: 1, Window: time.Hour}

	_, _ = s.Allow(ctx, "k", policy)
	blocked, _ := s.Allow(ctx, "k", policy)
	require.False(t, blocked.Allowed)

	require.NoError(t, s.Reset(ctx, "k"))
	again, err := s.Allow(ctx, "k", policy)
	require.NoError(t, err)
	assert.True(t, again.Allowed)
}
