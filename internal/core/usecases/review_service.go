package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/civicfix/internal/core/domain"
	"github.com/samirrijal/civicfix/internal/core/ports"
)

// SubmitReviewInput is a citizen's rating of a handled issue.
type SubmitReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// ReviewService handles citizen feedback on resolved issues.
type ReviewService struct {
	reviews ports.ReviewRepository
	issues  ports.IssueRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews ports.ReviewRepository, issues ports.IssueRepository) *ReviewService {
	return &ReviewService{reviews: reviews, issues: issues}
}

// Submit records the reporter's review. Each reporter reviews an issue once.
func (s *ReviewService) Submit(ctx context.Context, issueID, userID string, in SubmitReviewInput) (*domain.Review, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue.ReporterID != userID {
		return nil, fmt.Errorf("%w: only the reporter may review this issue", ErrForbidden)
	}
	if !issue.Status.Reviewable() {
		return nil, fmt.Errorf("%w: issue is %s, reviews open once it is resolved", ErrInvalidTransition, issue.Status)
	}

	review := &domain.Review{
		ID:        uuid.NewString(),
		IssueID:   issue.ID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

// List returns the reviews left on an issue.
func (s *ReviewService) List(ctx context.Context, issueID string) ([]domain.Review, error) {
	return s.reviews.ListByIssue(ctx, issueID)
}

// OfficialRating returns the average rating across an official's issues.
func (s *ReviewService) OfficialRating(ctx context.Context, officialID string) (*domain.OfficialRating, error) {
	return s.reviews.RatingForOfficial(ctx, officialID)
}
