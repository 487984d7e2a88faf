package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/civicfix/internal/adapters/nats"
	"github.com/samirrijal/civicfix/internal/adapters/notify"
	"github.com/samirrijal/civicfix/internal/adapters/postgres"
	"github.com/samirrijal/civicfix/internal/core/ports"
	"github.com/samirrijal/civicfix/internal/core/usecases"
	"github.com/samirrijal/civicfix/internal/pkg/config"
	"github.com/samirrijal/civicfix/internal/pkg/logging"
	"github.com/samirrijal/civicfix/internal/pkg/telemetry"
	"github.com/samirrijal/civicfix/internal/workflows"
)

func main() {
	cfg, err := config.Load("civicfix-notifier")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var (
		sms   ports.SMSSender
		email ports.EmailSender
	)
	if cfg.Notify.SMSEnabled() {
		sms = notify.NewTwilio(cfg.Notify)
	} else {
		slog.Info("twilio not configured, sms channels disabled")
	}
	if cfg.Notify.EmailEnabled() {
		email = notify.NewSendGrid(cfg.Notify)
	} else {
		slog.Info("sendgrid not configured, email channel disabled")
	}

	profileRepo := postgres.NewProfileRepo(db)
	notificationSvc := usecases.NewNotificationService(
		postgres.NewNotificationRepo(db), profileRepo, sms, email, cfg.Notify)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflows & activities
	w.RegisterWorkflow(workflows.NotifyIssueWorkflow)
	w.RegisterWorkflow(workflows.IssueStatusChangedWorkflow)
	w.RegisterActivity(&workflows.NotificationActivities{
		Notifications: notificationSvc,
		Profiles:      profileRepo,
	})

	// Issue events start workflows
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	starter := workflows.NewStarter(c, cfg.Temporal.TaskQueue)
	if err := sub.SubscribeIssueReported(ctx, starter.IssueReported); err != nil {
		log.Fatalf("subscribe issue reported: %v", err)
	}
	if err := sub.SubscribeIssueStatusChanged(ctx, starter.IssueStatusChanged); err != nil {
		log.Fatalf("subscribe issue status: %v", err)
	}

	slog.Info("notifier worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
