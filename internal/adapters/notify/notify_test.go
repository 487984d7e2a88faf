package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/samirrijal/civicfix/internal/pkg/config"
)

type captured struct {
	method, path, contentType, auth string
	body                            []byte
}

// fakeProvider serves handler on an in-memory listener and points client at it.
func fakeProvider(t *testing.T, status int, client *httpClient) *captured {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	got := &captured{}
	srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		got.method = string(ctx.Method())
		got.path = string(ctx.Path())
		got.contentType = string(ctx.Request.Header.ContentType())
		got.auth = string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
		got.body = append([]byte(nil), ctx.PostBody()...)
		ctx.SetStatusCode(status)
		ctx.SetBodyString(`{"message":"ok"}`)
	}}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	client.client.Dial = func(string) (net.Conn, error) { return ln.Dial() }
	return got
}

var testCfg = config.NotifyConfig{
	TwilioAccountSID: "AC42",
	TwilioAuthToken:  "secret",
	TwilioFromPhone:  "+15550001111",
	SendGridAPIKey:   "SG.test",
	FromEmail:        "noreply@civicfix.gov.in",
	TimeoutSeconds:   5,
}

func TestTwilio_SendSMS(t *testing.T) {
	tw := NewTwilio(testCfg)
	tw.baseURL = "http://twilio.test"
	got := fakeProvider(t, fasthttp.StatusCreated, tw.http)

	require.NoError(t, tw.SendSMS(context.Background(), "+919800000001", "CivicFix: hello & welcome"))

	assert.Equal(t, fasthttp.MethodPost, got.method)
	assert.Equal(t, "/2010-04-01/Accounts/AC42/Messages.json", got.path)
	assert.Equal(t, "application/x-www-form-urlencoded", got.contentType)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("AC42:secret")), got.auth)

	form, err := url.ParseQuery(string(got.body))
	require.NoError(t, err)
	assert.Equal(t, "+919800000001", form.Get("To"))
	assert.Equal(t, "+15550001111", form.Get("From"))
	assert.Equal(t, "CivicFix: hello & welcome", form.Get("Body"))
}

func TestTwilio_SendSMS_ErrorStatus(t *testing.T) {
	tw := NewTwilio(testCfg)
	tw.baseURL = "http://twilio.test"
	fakeProvider(t, fasthttp.StatusUnauthorized, tw.http)

	err := tw.SendSMS(context.Background(), "+919800000001", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twilio returned 401")
}

func TestSendGrid_SendEmail(t *testing.T) {
	sg := NewSendGrid(testCfg)
	sg.baseURL = "http://sendgrid.test"
	got := fakeProvider(t, fasthttp.StatusAccepted, sg.http)

	require.NoError(t, sg.SendEmail(context.Background(), "asha@pune.gov.in", "New Issue Assigned: Pothole", "<p>hi</p>"))

	assert.Equal(t, "/v3/mail/send", got.path)
	assert.Equal(t, "Bearer SG.test", got.auth)
	assert.Equal(t, "application/json", got.contentType)

	var mail sgMail
	require.NoError(t, json.Unmarshal(got.body, &mail))
	require.Len(t, mail.Personalizations, 1)
	assert.Equal(t, "asha@pune.gov.in", mail.Personalizations[0].To[0].Email)
	assert.Equal(t, "New Issue Assigned: Pothole", mail.Personalizations[0].Subject)
	assert.Equal(t, sgAddress{Email: "noreply@civicfix.gov.in", Name: "CivicFix"}, mail.From)
	assert.Equal(t, []sgContent{{Type: "text/html", Value: "<p>hi</p>"}}, mail.Content)
}

func TestSendGrid_SendEmail_ErrorStatus(t *testing.T) {
	sg := NewSendGrid(testCfg)
	sg.baseURL = "http://sendgrid.test"
	fakeProvider(t, fasthttp.StatusBadRequest, sg.http)

	err := sg.SendEmail(context.Background(), "asha@pune.gov.in", "s", "b")
	assert.ErrorContains(t, err, "sendgrid returned 400")
}
