package usecases

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/samirrijal/civicfix/internal/core/domain"
)

var assignedEmailTmpl = template.Must(template.New("assigned").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #FF9933;">New Civic Issue Assigned</h2>
  <div style="background: #f5f5f5; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #FF9933; margin-top: 0;">Issue Details</h3>
    <p><strong>Title:</strong> {{.Title}}</p>
    <p><strong>Type:</strong> {{.Type}}</p>
    <p><strong>Location:</strong> {{.Location}}</p>
    {{- if .Ward}}
    <p><strong>Ward:</strong> {{.Ward}}</p>
    {{- end}}
    {{- if .Pincode}}
    <p><strong>Pincode:</strong> {{.Pincode}}</p>
    {{- end}}
  </div>
  <p>Please log in to your CivicFix dashboard to review and take action on this issue.</p>
  <div style="margin: 20px 0;">
    <a href="{{.DashboardURL}}" style="background: #FF9933; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Dashboard</a>
  </div>
  <p style="color: #666; font-size: 12px;">This is an automated notification from CivicFix. Please do not reply to this email.</p>
</div>`))

func renderAssignedEmail(ev *domain.IssueReported, siteURL string) (string, error) {
	var buf bytes.Buffer
	err := assignedEmailTmpl.Execute(&buf, map[string]string{
		"Title":        ev.Title,
		"Type":         strings.ToUpper(humanType(ev.Type)),
		"Location":     ev.Location.Label(),
		"Ward":         ev.Location.Ward,
		"Pincode":      ev.Location.Pincode,
		"DashboardURL": siteURL + "/dashboard",
	})
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

func assignedMessage(ev *domain.IssueReported) string {
	return fmt.Sprintf("A new %s issue has been assigned to you: %s", humanType(ev.Type), ev.Title)
}

func officialSMSBody(ev *domain.IssueReported, siteURL string) string {
	where := ev.Location.Area
	if where == "" {
		where = ev.Location.City
	}
	return fmt.Sprintf("CivicFix: New issue assigned - %s in %s. Check your dashboard: %s/dashboard", ev.Title, where, siteURL)
}

func citizenSMSBody(ev *domain.IssueReported, siteURL string) string {
	return fmt.Sprintf("CivicFix: Your issue %q has been submitted and assigned to a local official. Track progress at %s/track", ev.Title, siteURL)
}

func statusChangedMessage(ev *domain.IssueStatusChanged) string {
	return fmt.Sprintf("Your issue %q is now %s", ev.Title, strings.ReplaceAll(string(ev.To), "_", " "))
}

func humanType(t domain.IssueType) string {
	return strings.ReplaceAll(string(t), "_", " ")
}
