package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/civicfix/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// legacyRoutes are the function-style paths the first web client called.
var legacyRoutes = []DeprecatedRoute{
	{
		Path:        "/v1/match-official",
		SunsetDate:  time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC),
		Alternative: "/v1/officials/match",
	},
	{
		Path:        "/v1/send-notification",
		SunsetDate:  time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC),
		Alternative: "/v1/notifications/dispatch",
	},
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Server spans
	app.Use(TracingMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(DeprecationMiddleware(legacyRoutes))

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness, outside the timeout group
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	auth := RequireAuth(deps.Auth)
	official := RequireRole(RoleOfficial)
	admin := RequireRole(RoleAdmin)
	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}

	v1 := app.Group("/v1")

	// Officials directory and matching
	v1.Post("/officials/match", withTimeout(MatchOfficialHandler(deps)))
	v1.Post("/match-official", withTimeout(MatchOfficialHandler(deps)))
	v1.Get("/officials", withTimeout(ListOfficialsHandler(deps)))
	v1.Get("/officials/me/issues", auth, official, withTimeout(AssignedIssuesHandler(deps)))
	v1.Get("/officials/:id", withTimeout(GetOfficialHandler(deps)))
	v1.Get("/officials/:id/rating", withTimeout(OfficialRatingHandler(deps)))
	v1.Put("/officials/:id/verification", auth, admin, withTimeout(SetVerificationHandler(deps)))

	// Issues
	v1.Get("/issues/nearby", withTimeout(NearbyIssuesHandler(deps)))
	v1.Post("/issues", auth, withTimeout(ReportIssueHandler(deps)))
	v1.Get("/issues/:id", withTimeout(GetIssueHandler(deps)))
	v1.Patch("/issues/:id/status", auth, official, withTimeout(UpdateIssueStatusHandler(deps)))
	v1.Post("/issues/:id/media", auth, withTimeout(UploadMediaHandler(deps)))
	v1.Get("/issues/:id/reviews", withTimeout(ListReviewsHandler(deps)))
	v1.Post("/issues/:id/reviews", auth, withTimeout(SubmitReviewHandler(deps)))
	v1.Get("/me/issues", auth, withTimeout(MyIssuesHandler(deps)))

	// Notifications
	v1.Get("/me/notifications", auth, withTimeout(ListNotificationsHandler(deps)))
	v1.Post("/me/notifications/:id/read", auth, withTimeout(MarkNotificationReadHandler(deps)))
	v1.Post("/notifications/dispatch", auth, admin, withTimeout(DispatchNotificationsHandler(deps)))
	v1.Post("/send-notification", auth, admin, withTimeout(DispatchNotificationsHandler(deps)))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
