package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/civicfix/internal/core/domain"
	"github.com/samirrijal/civicfix/internal/core/matching"
	"github.com/samirrijal/civicfix/internal/core/ports"
	"github.com/samirrijal/civicfix/internal/pkg/geospatial"
	"github.com/samirrijal/civicfix/internal/pkg/metrics"
)

// MaxMediaBytes caps a single uploaded photo.
const MaxMediaBytes = 10 << 20

var mediaExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ReportIssueInput is a citizen's new issue report.
type ReportIssueInput struct {
	ReporterID         string           `json:"-" validate:"required"`
	Title              string           `json:"title" validate:"required,max=200"`
	Description        string           `json:"description" validate:"required,max=5000"`
	Type               domain.IssueType `json:"issue_type" validate:"required,oneof=road water electricity garbage streetlight sewage other"`
	Priority           int              `json:"priority" validate:"gte=0,lte=5"`
	Latitude           *float64         `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude          *float64         `json:"longitude" validate:"required,gte=-180,lte=180"`
	Address            string           `json:"address" validate:"max=500"`
	City               string           `json:"city" validate:"max=200"`
	State              string           `json:"state" validate:"max=200"`
	District           string           `json:"district" validate:"max=200"`
	Pincode            string           `json:"pincode" validate:"max=20"`
	Ward               string           `json:"ward" validate:"max=200"`
	Area               string           `json:"area" validate:"max=200"`
	MediaURLs          []string         `json:"media_urls" validate:"max=10,dive,url"`
	AssignedOfficialID string           `json:"assigned_official_id" validate:"omitempty,uuid"`
}

func (in ReportIssueInput) query() matching.LocationQuery {
	return matching.LocationQuery{
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		City:      optional(in.City),
		State:     optional(in.State),
		District:  optional(in.District),
		Pincode:   optional(in.Pincode),
		Ward:      optional(in.Ward),
		Area:      optional(in.Area),
	}
}

// UpdateStatusInput is an official's status change.
type UpdateStatusInput struct {
	Status              domain.IssueStatus `json:"status" validate:"required,oneof=pending assigned in_progress resolved closed"`
	ResolutionNotes     string             `json:"resolution_notes" validate:"max=5000"`
	ResolutionMediaURLs []string           `json:"resolution_media_urls" validate:"max=10,dive,url"`
}

// IssueService handles the issue lifecycle.
type IssueService struct {
	issues    ports.IssueRepository
	profiles  ports.ProfileRepository
	matcher   *MatchService
	publisher ports.EventPublisher
	media     ports.MediaStore
	cache     ports.CacheService
}

// NewIssueService creates a new IssueService. publisher, media and cache may be nil.
func NewIssueService(
	issues ports.IssueRepository,
	profiles ports.ProfileRepository,
	matcher *MatchService,
	publisher ports.EventPublisher,
	media ports.MediaStore,
	cache ports.CacheService,
) *IssueService {
	return &IssueService{
		issues:    issues,
		profiles:  profiles,
		matcher:   matcher,
		publisher: publisher,
		media:     media,
		cache:     cache,
	}
}

// Report stores a new issue and routes it to an official. The citizen's
// explicit choice wins over the best match. When the directory cannot be
// read the issue is still stored, unassigned, and the returned result is nil.
func (s *IssueService) Report(ctx context.Context, in ReportIssueInput) (*domain.Issue, *matching.Result, error) {
	if err := validateStruct(in); err != nil {
		return nil, nil, err
	}
	log := slog.Default().With("reporter_id", in.ReporterID)

	if in.AssignedOfficialID != "" {
		official, err := s.profiles.GetByUserID(ctx, in.AssignedOfficialID)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && !official.Eligible()) {
			return nil, nil, validationErr("assigned_official_id is not a verified official")
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
	}

	var result *matching.Result
	outcome, err := s.matcher.MatchOfficial(ctx, in.query())
	switch {
	case errors.Is(err, ErrUpstreamUnavailable):
		log.WarnContext(ctx, "official matching unavailable, storing issue unassigned", "error", err)
	case err != nil:
		return nil, nil, err
	default:
		result = &outcome.Result
	}

	now := time.Now().UTC()
	issue := &domain.Issue{
		ID:          uuid.NewString(),
		ReporterID:  in.ReporterID,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Status:      domain.StatusPending,
		Priority:    in.Priority,
		Point:       domain.GeoPoint{Lat: *in.Latitude, Lon: *in.Longitude},
		Address:     in.Address,
		Location: domain.Location{
			City:     in.City,
			State:    in.State,
			District: in.District,
			Pincode:  in.Pincode,
			Ward:     in.Ward,
			Area:     in.Area,
		},
		MediaURLs: in.MediaURLs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if issue.MediaURLs == nil {
		issue.MediaURLs = []string{}
	}
	if result != nil && result.BestMatch != nil {
		issue.SuggestedOfficialID = result.BestMatch.OfficialID
	}
	issue.AssignedOfficialID = in.AssignedOfficialID
	if issue.AssignedOfficialID == "" {
		issue.AssignedOfficialID = issue.SuggestedOfficialID
	}
	if issue.AssignedOfficialID != "" {
		issue.Status = domain.StatusAssigned
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, nil, fmt.Errorf("create issue: %w", err)
	}
	metrics.IssuesReported.WithLabelValues(string(issue.Type), string(issue.Status)).Inc()
	log.InfoContext(ctx, "issue reported",
		"issue_id", issue.ID,
		"status", issue.Status,
		"assigned_official_id", issue.AssignedOfficialID,
	)

	if s.publisher != nil {
		event := &domain.IssueReported{
			IssueID:            issue.ID,
			Title:              issue.Title,
			Type:               issue.Type,
			Location:           issue.Location,
			AssignedOfficialID: issue.AssignedOfficialID,
			CitizenPhone:       s.reporterPhone(ctx, in.ReporterID),
			ReportedAt:         now,
		}
		if err := s.publisher.PublishIssueReported(ctx, event); err != nil {
			log.WarnContext(ctx, "publish issue reported", "issue_id", issue.ID, "error", err)
		}
	}

	return issue, result, nil
}

func (s *IssueService) reporterPhone(ctx context.Context, userID string) string {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return ""
	}
	return p.Phone
}

// Get returns a single issue.
func (s *IssueService) Get(ctx context.Context, id string) (*domain.Issue, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, validationErr("invalid issue id %q", id)
	}

	cacheKey := issueCacheKey(id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var issue domain.Issue
			if err := json.Unmarshal(data, &issue); err == nil {
				metrics.CacheHits.WithLabelValues("issue").Inc()
				return &issue, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("issue").Inc()
	}

	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(issue); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 30)
		}
	}
	return issue, nil
}

// ListByReporter returns a citizen's issues, newest first.
func (s *IssueService) ListByReporter(ctx context.Context, reporterID string, limit, offset int) ([]domain.Issue, error) {
	limit, offset = clampPage(limit, offset)
	return s.issues.ListByReporter(ctx, reporterID, limit, offset)
}

// ListByOfficial returns the issues assigned to an official. An empty status
// means every status.
func (s *IssueService) ListByOfficial(ctx context.Context, officialID string, status domain.IssueStatus, limit, offset int) ([]domain.Issue, error) {
	if status != "" && !status.Valid() {
		return nil, validationErr("unknown status %q", status)
	}
	limit, offset = clampPage(limit, offset)
	return s.issues.ListByOfficial(ctx, officialID, status, limit, offset)
}

// ListNearby returns issues within radiusMeters of a point, closest first.
func (s *IssueService) ListNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Issue, error) {
	if !(domain.GeoPoint{Lat: lat, Lon: lon}).Valid() {
		return nil, validationErr("coordinates out of range")
	}
	if radiusMeters <= 0 {
		radiusMeters = 2000
	}
	if radiusMeters > 10000 {
		radiusMeters = 10000
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	boxed, err := s.issues.ListInBox(ctx, minLat, minLon, maxLat, maxLon, limit*4)
	if err != nil {
		return nil, err
	}

	nearby := make([]domain.Issue, 0, len(boxed))
	for _, issue := range boxed {
		d := geospatial.Haversine(lat, lon, issue.Point.Lat, issue.Point.Lon)
		if d > radiusMeters {
			continue
		}
		issue.Distance = &d
		nearby = append(nearby, issue)
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return *nearby[i].Distance < *nearby[j].Distance
	})
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

// UpdateStatus moves an issue along its lifecycle on behalf of an official.
// Only the assigned official may do so; a verified official may claim an
// unassigned issue by moving it to assigned.
func (s *IssueService) UpdateStatus(ctx context.Context, issueID, officialID string, in UpdateStatusInput) (*domain.Issue, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	switch {
	case issue.AssignedOfficialID == officialID:
	case issue.AssignedOfficialID == "" && in.Status == domain.StatusAssigned:
		official, err := s.profiles.GetByUserID(ctx, officialID)
		if err != nil || !official.Eligible() {
			return nil, fmt.Errorf("%w: only verified officials may claim issues", ErrForbidden)
		}
		issue.AssignedOfficialID = officialID
	default:
		return nil, fmt.Errorf("%w: issue is not assigned to you", ErrForbidden)
	}

	from := issue.Status
	if !from.CanTransition(in.Status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, in.Status)
	}

	now := time.Now().UTC()
	issue.Status = in.Status
	issue.UpdatedAt = now
	if in.Status == domain.StatusResolved {
		issue.ResolvedAt = &now
		issue.ResolutionNotes = in.ResolutionNotes
		issue.ResolutionMediaURLs = in.ResolutionMediaURLs
	}

	if err := s.issues.UpdateStatus(ctx, issue); err != nil {
		return nil, fmt.Errorf("update issue status: %w", err)
	}
	s.invalidate(ctx, issue.ID)
	metrics.StatusTransitions.WithLabelValues(string(in.Status)).Inc()

	if s.publisher != nil {
		event := &domain.IssueStatusChanged{
			IssueID:    issue.ID,
			ReporterID: issue.ReporterID,
			OfficialID: officialID,
			Title:      issue.Title,
			From:       from,
			To:         in.Status,
			ChangedAt:  now,
		}
		if err := s.publisher.PublishIssueStatusChanged(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish status change", "issue_id", issue.ID, "error", err)
		}
	}
	return issue, nil
}

// AttachMedia uploads a photo for the reporter's issue and returns its URL.
func (s *IssueService) AttachMedia(ctx context.Context, issueID, reporterID, contentType string, size int64, r io.Reader) (string, error) {
	if s.media == nil {
		return "", ErrStorageUnavailable
	}
	ext, ok := mediaExtensions[contentType]
	if !ok {
		return "", validationErr("unsupported media type %q", contentType)
	}
	if size <= 0 || size > MaxMediaBytes {
		return "", validationErr("media must be between 1 byte and %d bytes", MaxMediaBytes)
	}

	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return "", err
	}
	if issue.ReporterID != reporterID {
		return "", fmt.Errorf("%w: only the reporter may attach media", ErrForbidden)
	}

	key := fmt.Sprintf("issues/%s/%s%s", issue.ID, uuid.NewString(), ext)
	url, err := s.media.Put(ctx, key, contentType, size, r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := s.issues.AppendMedia(ctx, issue.ID, url); err != nil {
		return "", fmt.Errorf("append media: %w", err)
	}
	s.invalidate(ctx, issue.ID)
	return url, nil
}

func (s *IssueService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, issueCacheKey(id))
	}
}

func issueCacheKey(id string) string {
	return "issues:id:" + id
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
