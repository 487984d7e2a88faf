package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/civicfix/internal/core/domain"
)

// Starter turns issue events into workflow executions. Its methods match the
// ports.EventSubscriber handler signatures.
type Starter struct {
	client    client.Client
	taskQueue string
}

// NewStarter creates a Starter for the given task queue.
func NewStarter(c client.Client, taskQueue string) *Starter {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	return &Starter{client: c, taskQueue: taskQueue}
}

// IssueReported starts NotifyIssueWorkflow for a new issue.
func (s *Starter) IssueReported(ctx context.Context, ev *domain.IssueReported) error {
	opts := client.StartWorkflowOptions{
		ID:        NotifyIssueWorkflowID(ev.IssueID),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, NotifyIssueWorkflow, *ev)
	if err != nil {
		return fmt.Errorf("start notify workflow for %s: %w", ev.IssueID, err)
	}
	slog.InfoContext(ctx, "notify workflow started", "issue_id", ev.IssueID, "run_id", run.GetRunID())
	return nil
}

// IssueStatusChanged starts IssueStatusChangedWorkflow for a transition.
func (s *Starter) IssueStatusChanged(ctx context.Context, ev *domain.IssueStatusChanged) error {
	if ev.ReporterID == "" {
		return nil
	}
	opts := client.StartWorkflowOptions{
		ID:        StatusChangedWorkflowID(*ev),
		TaskQueue: s.taskQueue,
	}
	if _, err := s.client.ExecuteWorkflow(ctx, opts, IssueStatusChangedWorkflow, *ev); err != nil {
		return fmt.Errorf("start status workflow for %s: %w", ev.IssueID, err)
	}
	return nil
}
