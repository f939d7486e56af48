package domain

import (
	"context"
	"time"
)

// RateLimitEntry is the fixed-window usage record of one client.
type RateLimitEntry struct {
	ClientKey   string
	WindowStart time.Time
	Count       int
}

// RateLimitDecision is the outcome of admitting one request.
type RateLimitDecision struct {
	Allowed           bool
	Limit             int
	Remaining         int
	RetryAfterSeconds int
}

// RateLimitStore owns the client usage table. Hit must reset the window when
// it has expired, then increment, atomically with respect to concurrent hits
// on the same key.
type RateLimitStore interface {
	Hit(ctx context.Context, clientKey string, window time.Duration, now time.Time) (RateLimitEntry, error)
}
