package service

import (
	"context"
	"time"

	"franklin/internal/domain"
	"franklin/internal/logger"
	"franklin/internal/util"

	"go.uber.org/zap"
)

// RateLimiter applies a fixed-window request budget per client key.
type RateLimiter struct {
	store       domain.RateLimitStore
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

func NewRateLimiter(store domain.RateLimitStore, maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store:       store,
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (l *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	l.now = now
	return l
}

// Admit records one request for clientKey and decides whether it may proceed.
// A failing store admits the request.
func (l *RateLimiter) Admit(ctx context.Context, clientKey string) domain.RateLimitDecision {
	now := l.now()
	entry, err := l.store.Hit(ctx, clientKey, l.window, now)
	if err != nil {
		logger.FromContext(ctx).Warn("rate limit store unavailable, admitting request",
			zap.String("client", clientKey),
			zap.Error(err))
		return domain.RateLimitDecision{
			Allowed:   true,
			Limit:     l.maxRequests,
			Remaining: l.maxRequests,
		}
	}

	decision := domain.RateLimitDecision{
		Allowed:   entry.Count <= l.maxRequests,
		Limit:     l.maxRequests,
		Remaining: max(0, l.maxRequests-entry.Count),
	}
	if !decision.Allowed {
		decision.RetryAfterSeconds = max(1, util.CeilSeconds(entry.WindowStart.Add(l.window).Sub(now)))
		logger.FromContext(ctx).Info("rate limit exceeded",
			zap.String("client", clientKey),
			zap.Int("count", entry.Count),
			zap.Int("retry_after_seconds", decision.RetryAfterSeconds))
	}
	return decision
}
