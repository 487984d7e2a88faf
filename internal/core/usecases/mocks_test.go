package usecases_test

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/samirrijal/civicfix/internal/core/domain"
)

// --- Mock ProfileRepository ---

type mockProfileRepo struct {
	listVerifiedFn func(ctx context.Context) ([]domain.Profile, error)
	getFn          func(ctx context.Context, userID string) (*domain.Profile, error)
	setVerifiedFn  func(ctx context.Context, userID string, verified bool) error
	upsertBatchFn  func(ctx context.Context, profiles []domain.Profile) error
	listCalls      int
}

func (m *mockProfileRepo) Upsert(ctx context.Context, p *domain.Profile) error { return nil }

func (m *mockProfileRepo) UpsertBatch(ctx context.Context, profiles []domain.Profile) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, profiles)
	}
	return nil
}

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockProfileRepo) ListVerifiedOfficials(ctx context.Context) ([]domain.Profile, error) {
	m.listCalls++
	if m.listVerifiedFn != nil {
		return m.listVerifiedFn(ctx)
	}
	return nil, nil
}

func (m *mockProfileRepo) SetVerified(ctx context.Context, userID string, verified bool) error {
	if m.setVerifiedFn != nil {
		return m.setVerifiedFn(ctx, userID, verified)
	}
	return nil
}

// profilesByID serves GetByUserID from a fixed set.
func profilesByID(profiles ...domain.Profile) func(context.Context, string) (*domain.Profile, error) {
	return func(_ context.Context, id string) (*domain.Profile, error) {
		for i := range profiles {
			if profiles[i].UserID == id {
				p := profiles[i]
				return &p, nil
			}
		}
		return nil, domain.ErrNotFound
	}
}

// --- Mock IssueRepository ---

type mockIssueRepo struct {
	mu       sync.Mutex
	issues   map[string]*domain.Issue
	createFn func(ctx context.Context, issue *domain.Issue) error
	boxFn    func(ctx context.Context, minLat, minLon, maxLat, maxLon float64, limit int) ([]domain.Issue, error)
	listFn   func(ctx context.Context, id string, status domain.IssueStatus, limit, offset int) ([]domain.Issue, error)
	media    []string
}

func newIssueRepo(issues ...domain.Issue) *mockIssueRepo {
	m := &mockIssueRepo{issues: map[string]*domain.Issue{}}
	for i := range issues {
		issue := issues[i]
		m.issues[issue.ID] = &issue
	}
	return m
}

func (m *mockIssueRepo) Create(ctx context.Context, issue *domain.Issue) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, issue); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *issue
	m.issues[issue.ID] = &cp
	return nil
}

func (m *mockIssueRepo) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *issue
	return &cp, nil
}

func (m *mockIssueRepo) ListByReporter(ctx context.Context, reporterID string, limit, offset int) ([]domain.Issue, error) {
	if m.listFn != nil {
		return m.listFn(ctx, reporterID, "", limit, offset)
	}
	return nil, nil
}

func (m *mockIssueRepo) ListByOfficial(ctx context.Context, officialID string, status domain.IssueStatus, limit, offset int) ([]domain.Issue, error) {
	if m.listFn != nil {
		return m.listFn(ctx, officialID, status, limit, offset)
	}
	return nil, nil
}

func (m *mockIssueRepo) ListInBox(ctx context.Context, minLat, minLon, maxLat, maxLon float64, limit int) ([]domain.Issue, error) {
	if m.boxFn != nil {
		return m.boxFn(ctx, minLat, minLon, maxLat, maxLon, limit)
	}
	return nil, nil
}

func (m *mockIssueRepo) UpdateStatus(ctx context.Context, issue *domain.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *issue
	m.issues[issue.ID] = &cp
	return nil
}

func (m *mockIssueRepo) AppendMedia(ctx context.Context, id, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.media = append(m.media, url)
	if issue, ok := m.issues[id]; ok {
		issue.MediaURLs = append(issue.MediaURLs, url)
	}
	return nil
}

// --- Mock ReviewRepository ---

type mockReviewRepo struct {
	created  []domain.Review
	createFn func(ctx context.Context, r *domain.Review) error
}

func (m *mockReviewRepo) Create(ctx context.Context, r *domain.Review) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, r); err != nil {
			return err
		}
	}
	m.created = append(m.created, *r)
	return nil
}

func (m *mockReviewRepo) ListByIssue(ctx context.Context, issueID string) ([]domain.Review, error) {
	return m.created, nil
}

func (m *mockReviewRepo) RatingForOfficial(ctx context.Context, officialID string) (*domain.OfficialRating, error) {
	return &domain.OfficialRating{OfficialID: officialID}, nil
}

// --- Mock NotificationRepository ---

type mockNotificationRepo struct {
	created  []domain.Notification
	createFn func(ctx context.Context, n *domain.Notification) error
	markFn   func(ctx context.Context, id, userID string) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, n); err != nil {
			return err
		}
	}
	m.created = append(m.created, *n)
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	return m.created, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	if m.markFn != nil {
		return m.markFn(ctx, id, userID)
	}
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	reported []domain.IssueReported
	changed  []domain.IssueStatusChanged
	err      error
}

func (m *mockPublisher) PublishIssueReported(ctx context.Context, ev *domain.IssueReported) error {
	m.reported = append(m.reported, *ev)
	return m.err
}

func (m *mockPublisher) PublishIssueStatusChanged(ctx context.Context, ev *domain.IssueStatusChanged) error {
	m.changed = append(m.changed, *ev)
	return m.err
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	data map[string][]byte
}

func newCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Mock MediaStore ---

type mockMedia struct {
	keys []string
	err  error
}

func (m *mockMedia) Put(ctx context.Context, key, contentType string, size int64, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.keys = append(m.keys, key)
	return "https://media.example.test/" + key, nil
}

// --- Mock senders ---

type sentMessage struct {
	to, subject, body string
}

type mockSMS struct {
	sent []sentMessage
	err  error
}

func (m *mockSMS) SendSMS(ctx context.Context, to, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{to: to, body: body})
	return nil
}

type mockEmail struct {
	sent []sentMessage
	err  error
}

func (m *mockEmail) SendEmail(ctx context.Context, to, subject, html string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{to: to, subject: subject, body: html})
	return nil
}
