package middleware

import (
	"franklin/internal/logger"
	"franklin/internal/util"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderRequestID = "X-Request-ID"
	// LocalsRequestID is the fiber locals key holding the request id.
	LocalsRequestID = "request_id"
)

// RequestID assigns every request a ULID, echoes it in X-Request-ID and
// attaches it to the request context for logging. A well-formed incoming id
// is reused.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if !util.IsULID(id) {
			id = util.NewULID()
		}
		c.Locals(LocalsRequestID, id)
		c.Set(HeaderRequestID, id)
		c.SetUserContext(logger.ContextWithRequestID(c.UserContext(), id))
		return c.Next()
	}
}
