package middleware

import (
	"strconv"
	"strings"

	"franklin/internal/domain"
	"franklin/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
)

// ClientKey identifies the caller for rate limiting: the first entry of
// X-Forwarded-For when present, else the peer address. The header is trusted
// as sent, so clients can choose their own key.
func ClientKey(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return c.IP()
}

// RateLimit admits requests through limiter and sets the rate limit headers.
// Rejected requests fail with RATE_LIMITED and a Retry-After header.
func RateLimit(limiter *service.RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := limiter.Admit(c.UserContext(), ClientKey(c))

		c.Set(HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
		c.Set(HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			return domain.NewRateLimitedError(decision.RetryAfterSeconds)
		}
		return c.Next()
	}
}
