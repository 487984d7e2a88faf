package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/civicfix/internal/core/domain"
	"github.com/samirrijal/civicfix/internal/core/usecases"
	"github.com/samirrijal/civicfix/internal/pkg/config"
)

var notifyCfg = config.NotifyConfig{
	TwilioAccountSID: "AC123",
	TwilioAuthToken:  "token",
	TwilioFromPhone:  "+15550000000",
	SendGridAPIKey:   "SG.key",
	FromEmail:        "noreply@civicfix.gov.in",
	SiteURL:          "https://civicfix.gov.in",
}

type notifyFixture struct {
	repo  *mockNotificationRepo
	sms   *mockSMS
	email *mockEmail
	svc   *usecases.NotificationService
}

func newNotifyFixture(cfg config.NotifyConfig) *notifyFixture {
	o := official(officialID, "Asha", domain.Location{City: "Pune"})
	o.Phone = "+919800000001"
	o.Email = "asha@pune.gov.in"
	f := &notifyFixture{repo: &mockNotificationRepo{}, sms: &mockSMS{}, email: &mockEmail{}}
	f.svc = usecases.NewNotificationService(f.repo, &mockProfileRepo{getFn: profilesByID(o)}, f.sms, f.email, cfg)
	return f
}

func reportedEvent() *usecases.DispatchRequest {
	return &usecases.DispatchRequest{
		IssueID:            issueID,
		Title:              "Overflowing bin",
		Type:               domain.TypeGarbage,
		Location:           domain.Location{City: "Pune", State: "Maharashtra", Area: "Kothrud", Ward: "W7"},
		AssignedOfficialID: officialID,
		CitizenPhone:       "+919800000002",
	}
}

func channels(results []domain.DeliveryResult) map[string]string {
	out := map[string]string{}
	for _, r := range results {
		out[r.Channel] = r.Status
	}
	return out
}

func TestNotificationService_Dispatch_AllChannels(t *testing.T) {
	f := newNotifyFixture(notifyCfg)

	results, err := f.svc.Dispatch(context.Background(), reportedEvent())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		domain.ChannelInApp:      "sent",
		domain.ChannelSMS:        "sent",
		domain.ChannelEmail:      "sent",
		domain.ChannelCitizenSMS: "sent",
	}, channels(results))

	require.Len(t, f.repo.created, 1)
	n := f.repo.created[0]
	assert.Equal(t, officialID, n.UserID)
	assert.Equal(t, domain.NotificationIssueAssigned, n.Type)
	assert.Equal(t, "A new garbage issue has been assigned to you: Overflowing bin", n.Message)

	require.Len(t, f.sms.sent, 2)
	assert.Equal(t, "+919800000001", f.sms.sent[0].to)
	assert.Equal(t, "CivicFix: New issue assigned - Overflowing bin in Kothrud. Check your dashboard: https://civicfix.gov.in/dashboard", f.sms.sent[0].body)
	assert.Equal(t, "+919800000002", f.sms.sent[1].to)
	assert.Contains(t, f.sms.sent[1].body, "https://civicfix.gov.in/track")

	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "New Issue Assigned: Overflowing bin", f.email.sent[0].subject)
	assert.Contains(t, f.email.sent[0].body, "Kothrud, Pune, Maharashtra")
	assert.Contains(t, f.email.sent[0].body, "<strong>Ward:</strong> W7")
	assert.NotContains(t, f.email.sent[0].body, "Pincode")
}

func TestNotificationService_Dispatch_UnconfiguredProvidersAreOmitted(t *testing.T) {
	f := newNotifyFixture(config.NotifyConfig{SiteURL: "https://civicfix.gov.in"})

	results, err := f.svc.Dispatch(context.Background(), reportedEvent())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{domain.ChannelInApp: "sent"}, channels(results))
	assert.Empty(t, f.sms.sent)
	assert.Empty(t, f.email.sent)
}

func TestNotificationService_Dispatch_FailuresDoNotAbort(t *testing.T) {
	f := newNotifyFixture(notifyCfg)
	f.sms.err = errors.New("twilio 500")

	results, err := f.svc.Dispatch(context.Background(), reportedEvent())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		domain.ChannelInApp:      "sent",
		domain.ChannelSMS:        "failed",
		domain.ChannelEmail:      "sent",
		domain.ChannelCitizenSMS: "failed",
	}, channels(results))
	for _, r := range results {
		if r.Status == "failed" {
			assert.Contains(t, r.Error, "twilio 500")
			assert.Error(t, usecases.DeliveryError(r))
		}
	}
}

func TestNotificationService_Dispatch_CitizenOnly(t *testing.T) {
	f := newNotifyFixture(notifyCfg)
	ev := reportedEvent()
	ev.AssignedOfficialID = ""

	results, err := f.svc.Dispatch(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{domain.ChannelCitizenSMS: "sent"}, channels(results))
	assert.Empty(t, f.repo.created)
}

func TestNotificationService_Dispatch_EscapesEmail(t *testing.T) {
	f := newNotifyFixture(notifyCfg)
	ev := reportedEvent()
	ev.Title = "<script>alert(1)</script>"

	_, err := f.svc.Dispatch(context.Background(), ev)
	require.NoError(t, err)
	require.Len(t, f.email.sent, 1)
	assert.NotContains(t, f.email.sent[0].body, "<script>")
}

func TestNotificationService_Dispatch_RequiresIssue(t *testing.T) {
	f := newNotifyFixture(notifyCfg)
	_, err := f.svc.Dispatch(context.Background(), &usecases.DispatchRequest{})
	assert.ErrorIs(t, err, usecases.ErrValidation)
}

func TestNotificationService_NotifyStatusChange(t *testing.T) {
	f := newNotifyFixture(notifyCfg)

	r := f.svc.NotifyStatusChange(context.Background(), &domain.IssueStatusChanged{
		IssueID:    issueID,
		ReporterID: reporterID,
		Title:      "Overflowing bin",
		From:       domain.StatusAssigned,
		To:         domain.StatusInProgress,
	})
	assert.Equal(t, "sent", r.Status)
	require.Len(t, f.repo.created, 1)
	assert.Equal(t, reporterID, f.repo.created[0].UserID)
	assert.Equal(t, domain.NotificationStatusChanged, f.repo.created[0].Type)
	assert.Equal(t, `Your issue "Overflowing bin" is now in progress`, f.repo.created[0].Message)
}

func TestNotificationService_MarkRead_ValidatesID(t *testing.T) {
	f := newNotifyFixture(notifyCfg)
	assert.ErrorIs(t, f.svc.MarkRead(context.Background(), "nope", reporterID), usecases.ErrValidation)
	assert.NoError(t, f.svc.MarkRead(context.Background(), issueID, reporterID))
}
