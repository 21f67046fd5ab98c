package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// StrictRateLimiter guards the control surface. Commands move hardware, so
// the per-client budget is tight.
func StrictRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        50,
		Expiration: 15 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests,
				"Too many control requests, try again later")
		},
	})
}

// RelaxedRateLimiter guards the read surface against runaway polling
func RelaxedRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        1000,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests,
				"Too many requests, try again later")
		},
	})
}
