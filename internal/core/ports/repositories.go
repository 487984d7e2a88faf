package ports

import (
	"context"

	"github.com/samirrijal/civicfix/internal/core/domain"
)

// ProfileRepository is the profile directory.
type ProfileRepository interface {
	Upsert(ctx context.Context, p *domain.Profile) error
	UpsertBatch(ctx context.Context, profiles []domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	// ListVerifiedOfficials returns role=official, verified profiles in a
	// stable order.
	ListVerifiedOfficials(ctx context.Context) ([]domain.Profile, error)
	SetVerified(ctx context.Context, userID string, verified bool) error
}

// IssueRepository persists issues.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	ListByReporter(ctx context.Context, reporterID string, limit, offset int) ([]domain.Issue, error)
	ListByOfficial(ctx context.Context, officialID string, status domain.IssueStatus, limit, offset int) ([]domain.Issue, error)
	// ListInBox returns issues whose coordinates fall inside the box.
	ListInBox(ctx context.Context, minLat, minLon, maxLat, maxLon float64, limit int) ([]domain.Issue, error)
	UpdateStatus(ctx context.Context, issue *domain.Issue) error
	AppendMedia(ctx context.Context, id, url string) error
}

// ReviewRepository persists reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	ListByIssue(ctx context.Context, issueID string) ([]domain.Review, error)
	RatingForOfficial(ctx context.Context, officialID string) (*domain.OfficialRating, error)
}

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}
