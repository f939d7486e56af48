package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"franklin/internal/adapter"
	"franklin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestRateLimiter_AdmitsUpToLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	limiter := NewRateLimiter(adapter.NewMemoryRateLimitStore(), 10, 15*time.Minute).WithClock(clock.Now)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		d := limiter.Admit(ctx, "203.0.113.9")
		assert.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 10, d.Limit)
		assert.Equal(t, 10-i, d.Remaining)
		clock.Advance(time.Second)
	}

	d := limiter.Admit(ctx, "203.0.113.9")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	// window started 10s ago
	assert.Equal(t, 890, d.RetryAfterSeconds)

	other := limiter.Admit(ctx, "198.51.100.1")
	assert.True(t, other.Allowed, "clients are independent")
}

func TestRateLimiter_ResetsAfterWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	limiter := NewRateLimiter(adapter.NewMemoryRateLimitStore(), 2, time.Minute).WithClock(clock.Now)
	ctx := context.Background()

	assert.True(t, limiter.Admit(ctx, "c").Allowed)
	assert.True(t, limiter.Admit(ctx, "c").Allowed)
	assert.False(t, limiter.Admit(ctx, "c").Allowed)

	clock.Advance(59*time.Second + 500*time.Millisecond)
	d := limiter.Admit(ctx, "c")
	assert.False(t, d.Allowed)
	assert.Equal(t, 1, d.RetryAfterSeconds, "partial seconds round up")

	clock.Advance(500 * time.Millisecond)
	d = limiter.Admit(ctx, "c")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	store := new(MockRateLimitStore)
	store.On("Hit", mock.Anything, "c", time.Minute, mock.Anything).
		Return(domain.RateLimitEntry{}, errors.New("connection refused"))

	d := NewRateLimiter(store, 5, time.Minute).Admit(context.Background(), "c")
	assert.True(t, d.Allowed)
	assert.Equal(t, 5, d.Limit)
	store.AssertExpectations(t)
}
