package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/civicfix/internal/core/domain"
	"github.com/samirrijal/civicfix/internal/core/ports"
	"github.com/samirrijal/civicfix/internal/pkg/config"
	"github.com/samirrijal/civicfix/internal/pkg/metrics"
	"github.com/samirrijal/civicfix/internal/pkg/telemetry"
)

// NotificationService fans an issue event out to in-app, SMS and email
// channels. Every channel is best-effort: a failure is recorded in the
// returned results and never stops the remaining channels.
type NotificationService struct {
	notifications ports.NotificationRepository
	profiles      ports.ProfileRepository
	sms           ports.SMSSender
	email         ports.EmailSender
	cfg           config.NotifyConfig
}

// NewNotificationService creates a new NotificationService. sms and email
// may be nil when the provider is not configured.
func NewNotificationService(
	notifications ports.NotificationRepository,
	profiles ports.ProfileRepository,
	sms ports.SMSSender,
	email ports.EmailSender,
	cfg config.NotifyConfig,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		profiles:      profiles,
		sms:           sms,
		email:         email,
		cfg:           cfg,
	}
}

// DispatchRequest describes a freshly reported issue to notify about.
type DispatchRequest = domain.IssueReported

// Dispatch notifies the assigned official and the citizen about a new issue.
// Only attempted channels appear in the results.
func (s *NotificationService) Dispatch(ctx context.Context, req *DispatchRequest) ([]domain.DeliveryResult, error) {
	if req == nil || req.IssueID == "" {
		return nil, validationErr("issue_id is required")
	}

	ctx, span := tracer.Start(ctx, "NotificationService.Dispatch")
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrIssueID, req.IssueID))

	results := []domain.DeliveryResult{}
	if req.AssignedOfficialID != "" {
		official, err := s.profiles.GetByUserID(ctx, req.AssignedOfficialID)
		if err != nil {
			slog.WarnContext(ctx, "official lookup failed, skipping official channels",
				"issue_id", req.IssueID, "official_id", req.AssignedOfficialID, "error", err)
		} else {
			results = append(results, s.NotifyOfficialInApp(ctx, req, official.UserID))
			if r, ok := s.NotifyOfficialSMS(ctx, req, official.Phone); ok {
				results = append(results, r)
			}
			if r, ok := s.NotifyOfficialEmail(ctx, req, official.Email); ok {
				results = append(results, r)
			}
		}
	}
	if r, ok := s.NotifyCitizenSMS(ctx, req, req.CitizenPhone); ok {
		results = append(results, r)
	}

	slog.InfoContext(ctx, "notifications processed", "issue_id", req.IssueID, "count", len(results))
	return results, nil
}

// NotifyOfficialInApp stores the "New Issue Assigned" dashboard notification.
func (s *NotificationService) NotifyOfficialInApp(ctx context.Context, req *DispatchRequest, officialID string) domain.DeliveryResult {
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    officialID,
		IssueID:   req.IssueID,
		Title:     "New Issue Assigned",
		Message:   assignedMessage(req),
		Type:      domain.NotificationIssueAssigned,
		CreatedAt: time.Now().UTC(),
	}
	return s.record(ctx, domain.ChannelInApp, officialID, s.notifications.Create(ctx, n))
}

// NotifyOfficialSMS texts the official. ok is false when SMS is not
// configured or the official has no phone number.
func (s *NotificationService) NotifyOfficialSMS(ctx context.Context, req *DispatchRequest, phone string) (domain.DeliveryResult, bool) {
	if s.sms == nil || !s.cfg.SMSEnabled() || phone == "" {
		return domain.DeliveryResult{}, false
	}
	err := s.sms.SendSMS(ctx, phone, officialSMSBody(req, s.cfg.SiteURL))
	return s.record(ctx, domain.ChannelSMS, phone, err), true
}

// NotifyOfficialEmail emails the official. ok is false when email is not
// configured or the official has no address.
func (s *NotificationService) NotifyOfficialEmail(ctx context.Context, req *DispatchRequest, to string) (domain.DeliveryResult, bool) {
	if s.email == nil || !s.cfg.EmailEnabled() || to == "" {
		return domain.DeliveryResult{}, false
	}
	html, err := renderAssignedEmail(req, s.cfg.SiteURL)
	if err == nil {
		err = s.email.SendEmail(ctx, to, "New Issue Assigned: "+req.Title, html)
	}
	return s.record(ctx, domain.ChannelEmail, to, err), true
}

// NotifyCitizenSMS sends the submission confirmation to the citizen.
func (s *NotificationService) NotifyCitizenSMS(ctx context.Context, req *DispatchRequest, phone string) (domain.DeliveryResult, bool) {
	if s.sms == nil || !s.cfg.SMSEnabled() || phone == "" {
		return domain.DeliveryResult{}, false
	}
	err := s.sms.SendSMS(ctx, phone, citizenSMSBody(req, s.cfg.SiteURL))
	return s.record(ctx, domain.ChannelCitizenSMS, phone, err), true
}

// NotifyStatusChange tells the reporter their issue moved.
func (s *NotificationService) NotifyStatusChange(ctx context.Context, ev *domain.IssueStatusChanged) domain.DeliveryResult {
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    ev.ReporterID,
		IssueID:   ev.IssueID,
		Title:     "Issue Status Updated",
		Message:   statusChangedMessage(ev),
		Type:      domain.NotificationStatusChanged,
		CreatedAt: time.Now().UTC(),
	}
	return s.record(ctx, domain.ChannelInApp, ev.ReporterID, s.notifications.Create(ctx, n))
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notifications.ListByUser(ctx, userID, unreadOnly, limit)
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return validationErr("invalid notification id %q", id)
	}
	return s.notifications.MarkRead(ctx, id, userID)
}

func (s *NotificationService) record(ctx context.Context, channel, recipient string, err error) domain.DeliveryResult {
	r := domain.DeliveryResult{Channel: channel, Status: domain.DeliverySent, Recipient: recipient}
	if err != nil {
		r = domain.DeliveryResult{Channel: channel, Status: domain.DeliveryFailed, Error: err.Error()}
		slog.WarnContext(ctx, "notification delivery failed", "channel", channel, "error", err)
	}
	metrics.NotificationsSent.WithLabelValues(channel, r.Status).Inc()
	trace.SpanFromContext(ctx).AddEvent("notification", trace.WithAttributes(
		attribute.String(telemetry.AttrChannel, channel),
		attribute.String(telemetry.AttrStatus, r.Status),
	))
	return r
}

// DeliveryError turns a failed result into an error, for callers that retry.
func DeliveryError(r domain.DeliveryResult) error {
	if r.Status == domain.DeliveryFailed {
		return fmt.Errorf("%s delivery failed: %s", r.Channel, r.Error)
	}
	return nil
}
