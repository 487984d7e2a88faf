package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/civicfix/internal/pkg/config"
)

const sendGridBaseURL = "https://api.sendgrid.com"

// SendGrid implements ports.EmailSender with the SendGrid v3 mail API.
type SendGrid struct {
	http     *httpClient
	baseURL  string
	apiKey   string
	from     string
	fromName string
}

// NewSendGrid creates a SendGrid sender from the notify configuration.
func NewSendGrid(cfg config.NotifyConfig) *SendGrid {
	return &SendGrid{
		http:     newHTTPClient(time.Duration(cfg.TimeoutSeconds) * time.Second),
		baseURL:  sendGridBaseURL,
		apiKey:   cfg.SendGridAPIKey,
		from:     cfg.FromEmail,
		fromName: "CivicFix",
	}
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgPersonalization struct {
	To      []sgAddress `json:"to"`
	Subject string      `json:"subject"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgMail struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Content          []sgContent         `json:"content"`
}

// SendEmail sends a single HTML message.
func (s *SendGrid) SendEmail(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(sgMail{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: to}}, Subject: subject}},
		From:             sgAddress{Email: s.from, Name: s.fromName},
		Content:          []sgContent{{Type: "text/html", Value: html}},
	})
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(s.baseURL + "/v3/mail/send")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+s.apiKey)
	req.SetBody(body)

	return s.http.do(ctx, req, "sendgrid")
}
