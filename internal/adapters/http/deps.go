package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/civicfix/internal/core/usecases"
)

// Pinger is a dependency that can report its own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Matcher       *usecases.MatchService
	Issues        *usecases.IssueService
	Reviews       *usecases.ReviewService
	Notifications *usecases.NotificationService
	Officials     *usecases.OfficialService
	Auth          *Authenticator
	NATS          *nats.Conn
	DB            Pinger
	Cache         Pinger
}
