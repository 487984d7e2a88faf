package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/civicfix/internal/adapters/http"
	minioadapter "github.com/samirrijal/civicfix/internal/adapters/minio"
	natsadapter "github.com/samirrijal/civicfix/internal/adapters/nats"
	"github.com/samirrijal/civicfix/internal/adapters/notify"
	"github.com/samirrijal/civicfix/internal/adapters/postgres"
	"github.com/samirrijal/civicfix/internal/adapters/valkey"
	"github.com/samirrijal/civicfix/internal/core/ports"
	"github.com/samirrijal/civicfix/internal/core/usecases"
	"github.com/samirrijal/civicfix/internal/pkg/config"
	"github.com/samirrijal/civicfix/internal/pkg/logging"
	"github.com/samirrijal/civicfix/internal/pkg/metrics"
	"github.com/samirrijal/civicfix/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("civicfix-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("auth.jwt_secret is required")
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache. Interfaces stay nil when valkey is down.
	var (
		cache       ports.CacheService
		cachePinger http.Pinger
	)
	if vc, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache, cachePinger = vc, vc
	}

	// NATS
	var publisher ports.EventPublisher
	if nc, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
		publisher = nc
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Drain()
	}

	// Media storage
	var media ports.MediaStore
	if cfg.Storage.Enabled() {
		store, err := minioadapter.New(ctx, cfg.Storage)
		if err != nil {
			slog.Warn("object storage unavailable", "error", err)
		} else {
			media = store
		}
	}

	// Notification providers
	var (
		sms   ports.SMSSender
		email ports.EmailSender
	)
	if cfg.Notify.SMSEnabled() {
		sms = notify.NewTwilio(cfg.Notify)
	}
	if cfg.Notify.EmailEnabled() {
		email = notify.NewSendGrid(cfg.Notify)
	}

	// Repos
	profileRepo := postgres.NewProfileRepo(db)
	issueRepo := postgres.NewIssueRepo(db)
	reviewRepo := postgres.NewReviewRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)

	// Use cases
	matchSvc := usecases.NewMatchService(profileRepo, cache, cfg.Matching)
	issueSvc := usecases.NewIssueService(issueRepo, profileRepo, matchSvc, publisher, media, cache)
	reviewSvc := usecases.NewReviewService(reviewRepo, issueRepo)
	notificationSvc := usecases.NewNotificationService(notificationRepo, profileRepo, sms, email, cfg.Notify)
	officialSvc := usecases.NewOfficialService(profileRepo, matchSvc)

	deps := &http.Dependencies{
		Matcher:       matchSvc,
		Issues:        issueSvc,
		Reviews:       reviewSvc,
		Notifications: notificationSvc,
		Officials:     officialSvc,
		Auth:          http.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		NATS:          natsConn,
		DB:            db,
		Cache:         cachePinger,
	}

	go reportPoolStats(ctx, db)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    11 * 1024 * 1024, // photos up to 10 MB plus multipart overhead
		AppName:      "CivicFix API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.civicfix.gov.in",
		AllowMethods:     "GET,POST,PUT,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}
