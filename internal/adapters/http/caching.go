package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != fiber.MethodGet {
			return err
		}

		// Handlers that set their own policy win.
		if string(c.Response().Header.Peek(fiber.HeaderCacheControl)) != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		// Per-user views must never be shared.
		case strings.HasPrefix(path, "/v1/me/") || strings.HasPrefix(path, "/v1/officials/me/"):
			ttl = "private, no-cache"

		case strings.HasSuffix(path, "/rating"):
			ttl = "public, max-age=300"

		case path == "/v1/officials" || strings.HasPrefix(path, "/v1/officials/"):
			ttl = "public, max-age=60" // verification changes show up within a minute

		case strings.HasSuffix(path, "/reviews"):
			ttl = "public, max-age=60"

		case strings.HasPrefix(path, "/v1/issues/"):
			ttl = "public, max-age=30" // issue status moves quickly

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
