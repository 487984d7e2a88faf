// Package notify delivers SMS through Twilio and email through SendGrid.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// httpClient wraps a fasthttp client with context-aware deadlines.
type httpClient struct {
	client  *fasthttp.Client
	timeout time.Duration
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{
		client: &fasthttp.Client{
			Name:                "civicfix-notify",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		timeout: timeout,
	}
}

// do sends req and fails on any non-2xx status.
func (c *httpClient) do(ctx context.Context, req *fasthttp.Request, provider string) error {
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%s request: %w", provider, err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		body := resp.Body()
		if len(body) > 256 {
			body = body[:256]
		}
		return fmt.Errorf("%s returned %d: %s", provider, code, body)
	}
	return nil
}
