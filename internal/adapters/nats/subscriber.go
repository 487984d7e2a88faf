package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/civicfix/internal/core/domain"
	"github.com/samirrijal/civicfix/internal/pkg/metrics"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js); err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

func (s *Subscriber) SubscribeIssueReported(ctx context.Context, handler func(ctx context.Context, event *domain.IssueReported) error) error {
	return subscribe(ctx, s, SubjectReportedAll, "issue-reported-notifier", handler)
}

func (s *Subscriber) SubscribeIssueStatusChanged(ctx context.Context, handler func(ctx context.Context, event *domain.IssueStatusChanged) error) error {
	return subscribe(ctx, s, SubjectStatusAll, "issue-status-notifier", handler)
}

// subscribe binds a durable push consumer. Undecodable messages are
// terminated; handler failures are redelivered up to MaxDeliver times.
func subscribe[T any](ctx context.Context, s *Subscriber, subject, durable string, handler func(context.Context, *T) error) error {
	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		var event T
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("dropping malformed event", "subject", msg.Subject, "error", err)
			metrics.EventsConsumed.WithLabelValues(subject, "malformed").Inc()
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event); err != nil {
			slog.Warn("event handler failed", "subject", msg.Subject, "error", err)
			metrics.EventsConsumed.WithLabelValues(subject, "retry").Inc()
			_ = msg.Nak()
			return
		}
		metrics.EventsConsumed.WithLabelValues(subject, "ok").Inc()
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(5),
		nats.DeliverNew(),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
