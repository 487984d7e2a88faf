package postgres

import (
	"context"

	"github.com/samirrijal/civicfix/internal/core/domain"
)

// ReviewRepo implements ports.ReviewRepository with pgx.
type ReviewRepo struct {
	db *DB
}

// NewReviewRepo creates a new ReviewRepo.
func NewReviewRepo(db *DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Create inserts a review. A second review of the same issue by the same
// user fails with domain.ErrConflict.
func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO reviews (id, issue_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rv.ID, rv.IssueID, rv.UserID, rv.Rating, nullable(rv.Comment), rv.CreatedAt)
	return mapErr(err)
}

// ListByIssue returns an issue's reviews, newest first.
func (r *ReviewRepo) ListByIssue(ctx context.Context, issueID string) ([]domain.Review, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, issue_id, user_id, rating, COALESCE(comment, ''), created_at
		FROM reviews
		WHERE issue_id = $1
		ORDER BY created_at DESC
	`, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.IssueID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// RatingForOfficial averages the reviews of issues assigned to an official.
func (r *ReviewRepo) RatingForOfficial(ctx context.Context, officialID string) (*domain.OfficialRating, error) {
	rating := domain.OfficialRating{OfficialID: officialID}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(rv.rating), 0)::float8, COUNT(rv.id)
		FROM reviews rv
		JOIN issues i ON i.id = rv.issue_id
		WHERE i.assigned_official_id = $1
	`, officialID).Scan(&rating.Average, &rating.Count)
	if err != nil {
		return nil, mapErr(err)
	}
	return &rating, nil
}
