package telemetry

// Span attribute keys shared across services.
const (
	AttrIssueID    = "civicfix.issue_id"
	AttrOfficialID = "civicfix.official_id"
	AttrChannel    = "civicfix.notification_channel"
	AttrStatus     = "civicfix.delivery_status"
)
