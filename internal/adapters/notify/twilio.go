package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/civicfix/internal/pkg/config"
)

const twilioBaseURL = "https://api.twilio.com"

// Twilio implements ports.SMSSender with the Twilio Messages API.
type Twilio struct {
	http    *httpClient
	baseURL string
	sid     string
	auth    string
	from    string
}

// NewTwilio creates a Twilio sender from the notify configuration.
func NewTwilio(cfg config.NotifyConfig) *Twilio {
	return &Twilio{
		http:    newHTTPClient(time.Duration(cfg.TimeoutSeconds) * time.Second),
		baseURL: twilioBaseURL,
		sid:     cfg.TwilioAccountSID,
		auth:    base64.StdEncoding.EncodeToString([]byte(cfg.TwilioAccountSID + ":" + cfg.TwilioAuthToken)),
		from:    cfg.TwilioFromPhone,
	}
}

// SendSMS posts a form-encoded message to Twilio.
func (t *Twilio) SendSMS(ctx context.Context, to, body string) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("To", to)
	args.Set("From", t.from)
	args.Set("Body", body)

	req.SetRequestURI(fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.sid))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.Header.Set(fasthttp.HeaderAuthorization, "Basic "+t.auth)
	req.SetBody(args.QueryString())

	return t.http.do(ctx, req, "twilio")
}
