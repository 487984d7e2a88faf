package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/civicfix/internal/core/domain"
)

// Subjects carried by the CIVIC_ISSUES stream.
const (
	StreamName            = "CIVIC_ISSUES"
	SubjectReportedPrefix = "civic.issue.reported."
	SubjectStatusPrefix   = "civic.issue.status."
	SubjectStatusAll      = SubjectStatusPrefix + ">"
	SubjectReportedAll    = SubjectReportedPrefix + ">"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
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

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{"civic.issue.>"},
		Retention:  nats.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Storage:    nats.FileStorage,
		Duplicates: 10 * time.Minute,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// PublishIssueReported publishes on civic.issue.reported.<issue id>. The
// issue id doubles as the JetStream dedup id.
func (p *Publisher) PublishIssueReported(ctx context.Context, event *domain.IssueReported) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectReportedPrefix+event.IssueID, data,
		nats.Context(ctx),
		nats.MsgId("reported:"+event.IssueID),
	)
	return err
}

// PublishIssueStatusChanged publishes on civic.issue.status.<issue id>.
func (p *Publisher) PublishIssueStatusChanged(ctx context.Context, event *domain.IssueStatusChanged) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectStatusPrefix+event.IssueID, data,
		nats.Context(ctx),
		nats.MsgId(fmt.Sprintf("status:%s:%s:%d", event.IssueID, event.To, event.ChangedAt.UnixNano())),
	)
	return err
}

// Healthy reports whether the connection is up.
func (p *Publisher) Healthy() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("civicfix"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
