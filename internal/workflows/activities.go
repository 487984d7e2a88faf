package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/civicfix/internal/core/domain"
	"github.com/samirrijal/civicfix/internal/core/ports"
	"github.com/samirrijal/civicfix/internal/core/usecases"
)

// Activity names, as registered from NotificationActivities.
const (
	ActivityLookupOfficial     = "LookupOfficial"
	ActivitySendOfficialInApp  = "SendOfficialInApp"
	ActivitySendOfficialSMS    = "SendOfficialSMS"
	ActivitySendOfficialEmail  = "SendOfficialEmail"
	ActivitySendCitizenSMS     = "SendCitizenSMS"
	ActivityNotifyStatusChange = "NotifyStatusChange"
)

// OfficialContact is what the channels need to reach an official.
type OfficialContact struct {
	UserID string
	Phone  string
	Email  string
}

// NotificationActivities delivers one channel per call. A failed delivery
// is returned as an error so Temporal retries it. A skipped channel returns
// a zero DeliveryResult.
type NotificationActivities struct {
	Notifications *usecases.NotificationService
	Profiles      ports.ProfileRepository
}

// LookupOfficial loads the assigned official's contact details. A missing
// profile is not retried.
func (a *NotificationActivities) LookupOfficial(ctx context.Context, officialID string) (OfficialContact, error) {
	p, err := a.Profiles.GetByUserID(ctx, officialID)
	if errors.Is(err, domain.ErrNotFound) {
		return OfficialContact{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("official %s not found", officialID), "OfficialNotFound", err)
	}
	if err != nil {
		return OfficialContact{}, fmt.Errorf("lookup official %s: %w", officialID, err)
	}
	return OfficialContact{UserID: p.UserID, Phone: p.Phone, Email: p.Email}, nil
}

func (a *NotificationActivities) SendOfficialInApp(ctx context.Context, ev domain.IssueReported, officialID string) (domain.DeliveryResult, error) {
	r := a.Notifications.NotifyOfficialInApp(ctx, &ev, officialID)
	return r, usecases.DeliveryError(r)
}

func (a *NotificationActivities) SendOfficialSMS(ctx context.Context, ev domain.IssueReported, phone string) (domain.DeliveryResult, error) {
	r, ok := a.Notifications.NotifyOfficialSMS(ctx, &ev, phone)
	if !ok {
		return domain.DeliveryResult{}, nil
	}
	return r, usecases.DeliveryError(r)
}

func (a *NotificationActivities) SendOfficialEmail(ctx context.Context, ev domain.IssueReported, to string) (domain.DeliveryResult, error) {
	r, ok := a.Notifications.NotifyOfficialEmail(ctx, &ev, to)
	if !ok {
		return domain.DeliveryResult{}, nil
	}
	return r, usecases.DeliveryError(r)
}

func (a *NotificationActivities) SendCitizenSMS(ctx context.Context, ev domain.IssueReported) (domain.DeliveryResult, error) {
	r, ok := a.Notifications.NotifyCitizenSMS(ctx, &ev, ev.CitizenPhone)
	if !ok {
		return domain.DeliveryResult{}, nil
	}
	return r, usecases.DeliveryError(r)
}

func (a *NotificationActivities) NotifyStatusChange(ctx context.Context, ev domain.IssueStatusChanged) (domain.DeliveryResult, error) {
	r := a.Notifications.NotifyStatusChange(ctx, &ev)
	return r, usecases.DeliveryError(r)
}
