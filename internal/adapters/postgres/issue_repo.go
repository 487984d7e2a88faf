package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/civicfix/internal/core/domain"
)

// IssueRepo implements ports.IssueRepository with pgx.
type IssueRepo struct {
	db *DB
}

// NewIssueRepo creates a new IssueRepo.
func NewIssueRepo(db *DB) *IssueRepo {
	return &IssueRepo{db: db}
}

const issueColumns = `
	id, user_id, title, description, issue_type, status, priority,
	latitude, longitude, COALESCE(address, ''),
	COALESCE(city, ''), COALESCE(state, ''), COALESCE(district, ''),
	COALESCE(pincode, ''), COALESCE(ward, ''), COALESCE(area, ''),
	media_urls, COALESCE(assigned_official_id::text, ''), COALESCE(suggested_official_id::text, ''),
	COALESCE(resolution_notes, ''), resolution_media_urls, resolved_at,
	created_at, updated_at`

// Create inserts a new issue.
func (r *IssueRepo) Create(ctx context.Context, i *domain.Issue) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO issues (id, user_id, title, description, issue_type, status, priority,
		                    latitude, longitude, address, city, state, district, pincode, ward, area,
		                    media_urls, assigned_official_id, suggested_official_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`, i.ID, i.ReporterID, i.Title, i.Description, string(i.Type), string(i.Status), i.Priority,
		i.Point.Lat, i.Point.Lon, nullable(i.Address),
		nullable(i.City), nullable(i.State), nullable(i.District),
		nullable(i.Pincode), nullable(i.Ward), nullable(i.Area),
		i.MediaURLs, nullable(i.AssignedOfficialID), nullable(i.SuggestedOfficialID),
		i.CreatedAt, i.UpdatedAt)
	return mapErr(err)
}

// GetByID returns an issue by id.
func (r *IssueRepo) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id)
	issue, err := scanIssue(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return issue, nil
}

// ListByReporter returns a citizen's issues, newest first.
func (r *IssueRepo) ListByReporter(ctx context.Context, reporterID string, limit, offset int) ([]domain.Issue, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+issueColumns+`
		FROM issues
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, reporterID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectIssues(rows)
}

// ListByOfficial returns issues assigned to an official, optionally by status.
func (r *IssueRepo) ListByOfficial(ctx context.Context, officialID string, status domain.IssueStatus, limit, offset int) ([]domain.Issue, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+issueColumns+`
		FROM issues
		WHERE assigned_official_id = $1
		  AND ($2 = '' OR status::text = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, officialID, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	return collectIssues(rows)
}

// ListInBox returns issues inside a lat/lon envelope using the GiST index.
func (r *IssueRepo) ListInBox(ctx context.Context, minLat, minLon, maxLat, maxLon float64, limit int) ([]domain.Issue, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+issueColumns+`
		FROM issues
		WHERE location && ST_MakeEnvelope($1, $2, $3, $4, 4326)::geography
		ORDER BY created_at DESC
		LIMIT $5
	`, minLon, minLat, maxLon, maxLat, limit)
	if err != nil {
		return nil, err
	}
	return collectIssues(rows)
}

// UpdateStatus persists the lifecycle fields of an issue.
func (r *IssueRepo) UpdateStatus(ctx context.Context, i *domain.Issue) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE issues
		SET status = $2, assigned_official_id = $3, resolution_notes = $4,
		    resolution_media_urls = $5, resolved_at = $6, updated_at = $7
		WHERE id = $1
	`, i.ID, string(i.Status), nullable(i.AssignedOfficialID), nullable(i.ResolutionNotes),
		nonNil(i.ResolutionMediaURLs), i.ResolvedAt, i.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendMedia adds a photo URL to an issue.
func (r *IssueRepo) AppendMedia(ctx context.Context, id, url string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE issues SET media_urls = array_append(media_urls, $2), updated_at = $3 WHERE id = $1
	`, id, url, time.Now().UTC())
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectIssues(rows pgx.Rows) ([]domain.Issue, error) {
	defer rows.Close()
	issues := []domain.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *issue)
	}
	return issues, rows.Err()
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var i domain.Issue
	var issueType, status string
	if err := row.Scan(
		&i.ID, &i.ReporterID, &i.Title, &i.Description, &issueType, &status, &i.Priority,
		&i.Point.Lat, &i.Point.Lon, &i.Address,
		&i.City, &i.State, &i.District,
		&i.Pincode, &i.Ward, &i.Area,
		&i.MediaURLs, &i.AssignedOfficialID, &i.SuggestedOfficialID,
		&i.ResolutionNotes, &i.ResolutionMediaURLs, &i.ResolvedAt,
		&i.CreatedAt, &i.UpdatedAt,
	); err != nil {
		return nil, err
	}
	i.Type = domain.IssueType(issueType)
	i.Status = domain.IssueStatus(status)
	return &i, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
