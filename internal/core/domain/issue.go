package domain

import (
	"time"
)

// IssueStatus is the lifecycle state of a reported issue.
type IssueStatus string

const (
	StatusPending    IssueStatus = "pending"
	StatusAssigned   IssueStatus = "assigned"
	StatusInProgress IssueStatus = "in_progress"
	StatusResolved   IssueStatus = "resolved"
	StatusClosed     IssueStatus = "closed"
)

var issueTransitions = map[IssueStatus][]IssueStatus{
	StatusPending:    {StatusAssigned, StatusInProgress, StatusClosed},
	StatusAssigned:   {StatusInProgress, StatusResolved, StatusClosed},
	StatusInProgress: {StatusResolved, StatusClosed},
	StatusResolved:   {StatusClosed, StatusInProgress},
}

// Valid reports whether s is a known status.
func (s IssueStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// CanTransition reports whether an issue in status s may move to next.
func (s IssueStatus) CanTransition(next IssueStatus) bool {
	for _, allowed := range issueTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reviewable reports whether citizens may leave a review in this status.
func (s IssueStatus) Reviewable() bool {
	return s == StatusResolved || s == StatusClosed
}

// IssueType categorises a report.
type IssueType string

const (
	TypeRoad        IssueType = "road"
	TypeWater       IssueType = "water"
	TypeElectricity IssueType = "electricity"
	TypeGarbage     IssueType = "garbage"
	TypeStreetlight IssueType = "streetlight"
	TypeSewage      IssueType = "sewage"
	TypeOther       IssueType = "other"
)

// Valid reports whether t is a known issue type.
func (t IssueType) Valid() bool {
	switch t {
	case TypeRoad, TypeWater, TypeElectricity, TypeGarbage, TypeStreetlight, TypeSewage, TypeOther:
		return true
	}
	return false
}

// Issue is a citizen report.
type Issue struct {
	ID                  string      `json:"id"`
	ReporterID          string      `json:"user_id"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	Type                IssueType   `json:"issue_type"`
	Status              IssueStatus `json:"status"`
	Priority            int         `json:"priority"`
	Point               GeoPoint    `json:"location"`
	Address             string      `json:"address,omitempty"`
	Location
	MediaURLs           []string    `json:"media_urls"`
	AssignedOfficialID  string      `json:"assigned_official_id,omitempty"`
	SuggestedOfficialID string      `json:"suggested_official_id,omitempty"`
	ResolutionNotes     string      `json:"resolution_notes,omitempty"`
	ResolutionMediaURLs []string    `json:"resolution_media_urls,omitempty"`
	ResolvedAt          *time.Time  `json:"resolved_at,omitempty"`
	Distance            *float64    `json:"distance,omitempty"` // computed field
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// Review is a citizen's rating of how an issue was handled.
type Review struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification types.
const (
	NotificationIssueAssigned = "issue_assigned"
	NotificationStatusChanged = "status_changed"
)

// Notification is an in-app message shown on a user's dashboard.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	IssueID   string    `json:"issue_id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"notification_type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Delivery channels.
const (
	ChannelInApp      = "in_app"
	ChannelSMS        = "sms"
	ChannelEmail      = "email"
	ChannelCitizenSMS = "citizen_sms"
)

// Delivery statuses.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// DeliveryResult records one attempted notification delivery.
type DeliveryResult struct {
	Channel   string `json:"type"`
	Status    string `json:"status"`
	Recipient string `json:"recipient,omitempty"`
	Error     string `json:"error,omitempty"`
}

// IssueReported is published after a new issue is stored.
type IssueReported struct {
	IssueID            string    `json:"issue_id"`
	Title              string    `json:"title"`
	Type               IssueType `json:"issue_type"`
	Location           Location  `json:"location"`
	AssignedOfficialID string    `json:"assigned_official_id,omitempty"`
	CitizenPhone       string    `json:"citizen_phone,omitempty"`
	ReportedAt         time.Time `json:"reported_at"`
}

// IssueStatusChanged is published after an official updates an issue.
type IssueStatusChanged struct {
	IssueID    string      `json:"issue_id"`
	ReporterID string      `json:"reporter_id"`
	OfficialID string      `json:"official_id"`
	Title      string      `json:"title"`
	From       IssueStatus `json:"from"`
	To         IssueStatus `json:"to"`
	ChangedAt  time.Time   `json:"changed_at"`
}
