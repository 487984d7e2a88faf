package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/civicfix/internal/core/domain"
)

// DefaultTaskQueue is used when configuration does not name one.
const DefaultTaskQueue = "civicfix-notifications"

// NotifyIssueWorkflowID is stable per issue so a redelivered event does not
// notify twice while the first run is in flight.
func NotifyIssueWorkflowID(issueID string) string {
	return "notify-issue-" + issueID
}

// StatusChangedWorkflowID identifies one status transition.
func StatusChangedWorkflowID(ev domain.IssueStatusChanged) string {
	return fmt.Sprintf("issue-status-%s-%s-%d", ev.IssueID, ev.To, ev.ChangedAt.UnixNano())
}

func channelOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    5,
		},
	}
}

// NotifyIssueWorkflow delivers the new-issue notifications. Channels run in
// parallel and each one is retried on its own. A channel that still fails is
// reported as failed; the workflow itself only fails on a bad input.
func NotifyIssueWorkflow(ctx workflow.Context, ev domain.IssueReported) ([]domain.DeliveryResult, error) {
	logger := workflow.GetLogger(ctx)
	if ev.IssueID == "" {
		return nil, temporal.NewNonRetryableApplicationError("issue_id is required", "InvalidInput", nil)
	}
	logger.Info("Starting issue notification workflow", "issueID", ev.IssueID)
	ctx = workflow.WithActivityOptions(ctx, channelOptions())

	type pending struct {
		channel string
		future  workflow.Future
	}
	var futures []pending

	if ev.AssignedOfficialID != "" {
		var official OfficialContact
		err := workflow.ExecuteActivity(ctx, ActivityLookupOfficial, ev.AssignedOfficialID).Get(ctx, &official)
		if err != nil {
			logger.Warn("official lookup failed, skipping official channels", "officialID", ev.AssignedOfficialID, "error", err)
		} else {
			futures = append(futures,
				pending{domain.ChannelInApp, workflow.ExecuteActivity(ctx, ActivitySendOfficialInApp, ev, official.UserID)},
				pending{domain.ChannelSMS, workflow.ExecuteActivity(ctx, ActivitySendOfficialSMS, ev, official.Phone)},
				pending{domain.ChannelEmail, workflow.ExecuteActivity(ctx, ActivitySendOfficialEmail, ev, official.Email)},
			)
		}
	}
	if ev.CitizenPhone != "" {
		futures = append(futures, pending{domain.ChannelCitizenSMS, workflow.ExecuteActivity(ctx, ActivitySendCitizenSMS, ev)})
	}

	results := []domain.DeliveryResult{}
	for _, p := range futures {
		var r domain.DeliveryResult
		if err := p.future.Get(ctx, &r); err != nil {
			logger.Warn("channel gave up", "channel", p.channel, "error", err)
			results = append(results, domain.DeliveryResult{Channel: p.channel, Status: domain.DeliveryFailed, Error: err.Error()})
			continue
		}
		if r.Channel == "" {
			continue // not configured for this recipient
		}
		results = append(results, r)
	}

	logger.Info("Issue notifications processed", "issueID", ev.IssueID, "count", len(results))
	return results, nil
}

// IssueStatusChangedWorkflow tells the reporter that their issue moved.
func IssueStatusChangedWorkflow(ctx workflow.Context, ev domain.IssueStatusChanged) (domain.DeliveryResult, error) {
	ctx = workflow.WithActivityOptions(ctx, channelOptions())

	var r domain.DeliveryResult
	if err := workflow.ExecuteActivity(ctx, ActivityNotifyStatusChange, ev).Get(ctx, &r); err != nil {
		workflow.GetLogger(ctx).Warn("status notification gave up", "issueID", ev.IssueID, "error", err)
		return domain.DeliveryResult{Channel: domain.ChannelInApp, Status: domain.DeliveryFailed, Error: err.Error()}, nil
	}
	return r, nil
}
