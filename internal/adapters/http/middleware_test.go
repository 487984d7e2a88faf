package http_test

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDocs_ServesOpenAPIWithETag(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	resp, err := app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(readBody(t, resp.Body)), "CivicFix API") {
		t.Error("expected the CivicFix OpenAPI document")
	}
	etag := resp.Header.Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak ETag, got %q", etag)
	}

	req := httptest.NewRequest("GET", "/docs/openapi.yaml", nil)
	req.Header.Set("If-None-Match", `W/"stale", `+etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}
}

func TestMatch_NotTaggedOrCached(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	resp, _ := app.Test(jsonRequest("POST", "/v1/officials/match", `{"city":"Pune"}`, ""), -1)
	if resp.Header.Get("ETag") != "" {
		t.Error("POST responses must not carry an ETag")
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-store" {
		t.Errorf("expected no-store, got %q", got)
	}
}

func TestRequestIDEchoedInErrors(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	req := httptest.NewRequest("GET", "/v1/issues/not-a-uuid", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, _ := app.Test(req, -1)

	if resp.Header.Get("X-Request-ID") != "req-42" {
		t.Errorf("expected request id echoed, got %q", resp.Header.Get("X-Request-ID"))
	}
	if apiErr := decodeError(t, resp.Body); apiErr.RequestID != "req-42" {
		t.Errorf("expected request_id in body, got %q", apiErr.RequestID)
	}
}
