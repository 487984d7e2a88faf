package ports

import (
	"context"
	"io"

	"github.com/samirrijal/civicfix/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishIssueReported(ctx context.Context, event *domain.IssueReported) error
	PublishIssueStatusChanged(ctx context.Context, event *domain.IssueStatusChanged) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeIssueReported(ctx context.Context, handler func(ctx context.Context, event *domain.IssueReported) error) error
	SubscribeIssueStatusChanged(ctx context.Context, handler func(ctx context.Context, event *domain.IssueStatusChanged) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// MediaStore keeps uploaded issue photos.
type MediaStore interface {
	// Put stores the object and returns its public URL.
	Put(ctx context.Context, key, contentType string, size int64, r io.Reader) (string, error)
}

// SMSSender delivers text messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// EmailSender delivers HTML email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}
