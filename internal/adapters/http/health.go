package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

// Version is stamped at build time with -ldflags "-X ...http.Version=...".
var Version = "dev"

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": Version,
		})
	}
}

var errDisconnected = errors.New("disconnected")

type probe struct {
	name  string
	check func(context.Context) error
}

// ReadyHandler probes the database, NATS and the cache in parallel. The
// database is required; NATS and the cache are only probed when configured.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	var probes []probe
	if deps.DB != nil {
		probes = append(probes, probe{"database", deps.DB.Ping})
	}
	if deps.NATS != nil {
		probes = append(probes, probe{"nats", func(context.Context) error {
			if !deps.NATS.IsConnected() {
				return errDisconnected
			}
			return nil
		}})
	}
	if deps.Cache != nil {
		probes = append(probes, probe{"cache", deps.Cache.Ping})
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make([]error, len(probes))
		var g errgroup.Group
		for i, p := range probes {
			g.Go(func() error {
				results[i] = p.check(ctx)
				return nil
			})
		}
		_ = g.Wait()

		checks := map[string]string{"database": "not configured", "nats": "not configured", "cache": "not configured"}
		allOK := deps.DB != nil
		for i, p := range probes {
			if results[i] != nil {
				checks[p.name] = "error: " + results[i].Error()
				allOK = false
				continue
			}
			checks[p.name] = "ok"
		}

		status, code := "ready", fiber.StatusOK
		if !allOK {
			status, code = "not ready", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
