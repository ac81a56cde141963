package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
)

// MockRoundTripper implements http.RoundTripper for testing
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(rt http.RoundTripper, token string) *Client {
	client := NewClient(StaticToken(token), ClientConfig{
		BaseURL:   "https://cursor.test",
		UserAgent: "test-agent",
	})
	client.SetHTTPClient(&http.Client{Transport: rt})
	return client
}

func TestClient_AttachesCookieAndUserAgent(t *testing.T) {
	var captured *http.Request
	transport := &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			captured = req
			return jsonResponse(http.StatusOK, `{"email":"u@example.com"}`), nil
		},
	}

	client := newTestClient(transport, "tok-123")
	if _, err := client.CheckIdentity(context.Background()); err != nil {
		t.Fatalf("CheckIdentity failed: %v", err)
	}

	if captured == nil {
		t.Fatal("no request captured")
	}
	cookie := captured.Header.Get("Cookie")
	if cookie != "WorkosCursorSessionToken=tok-123" {
		t.Errorf("Cookie = %q, want session token cookie", cookie)
	}
	if ua := captured.Header.Get("User-Agent"); ua != "test-agent" {
		t.Errorf("User-Agent = %q, want %q", ua, "test-agent")
	}
}

func TestClient_WithTokenOverride(t *testing.T) {
	var captured *http.Request
	transport := &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			captured = req
			return jsonResponse(http.StatusOK, `{"email":"u@example.com"}`), nil
		},
	}

	client := newTestClient(transport, "stored-token")
	override := client.WithToken("candidate-token")
	if _, err := override.CheckIdentity(context.Background()); err != nil {
		t.Fatalf("CheckIdentity failed: %v", err)
	}

	if cookie := captured.Header.Get("Cookie"); cookie != "WorkosCursorSessionToken=candidate-token" {
		t.Errorf("Cookie = %q, want candidate token", cookie)
	}
	// Original client unaffected
	if client.tokens.Token() != "stored-token" {
		t.Errorf("original token = %q, want %q", client.tokens.Token(), "stored-token")
	}
}

func TestClient_NetworkErrorKind(t *testing.T) {
	transport := &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			return nil, io.ErrUnexpectedEOF
		},
	}

	client := newTestClient(transport, "tok")
	_, err := client.FetchUsage(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := KindOf(err); kind != KindNetwork {
		t.Errorf("KindOf = %v, want KindNetwork", kind)
	}
}
