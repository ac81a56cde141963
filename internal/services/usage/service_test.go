package usage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/cursor-dashboard-tui/internal/services/api"
)

// staticCreds is a CredentialSource with a fixed token.
type staticCreds string

func (c staticCreds) Token() string { return string(c) }

// routeTripper dispatches requests by path and records every call.
type routeTripper struct {
	mu     sync.Mutex
	calls  []string
	routes map[string]func(req *http.Request) (*http.Response, error)
}

func newRouteTripper() *routeTripper {
	return &routeTripper{routes: make(map[string]func(req *http.Request) (*http.Response, error))}
}

func (rt *routeTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.calls = append(rt.calls, req.URL.Path)
	handler := rt.routes[req.URL.Path]
	rt.mu.Unlock()

	if handler == nil {
		return jsonResponse(http.StatusNotFound, `{}`), nil
	}
	return handler(req)
}

func (rt *routeTripper) callCount() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.calls)
}

func (rt *routeTripper) callPaths() []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]string, len(rt.calls))
	copy(out, rt.calls)
	return out
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func respondJSON(status int, body string) func(req *http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		return jsonResponse(status, body), nil
	}
}

// happyRoutes installs a full successful endpoint set: 320/500 premium
// requests, a $50 hard limit, and a $12.45 invoice.
func happyRoutes(rt *routeTripper) {
	rt.routes["/api/auth/me"] = respondJSON(http.StatusOK, `{"email":"dev@example.com"}`)
	rt.routes["/api/usage"] = respondJSON(http.StatusOK, `{
		"gpt-4": {"numRequests": 320, "numRequestsTotal": 890, "maxRequestUsage": 500},
		"gpt-3.5-turbo": {"numRequests": 42},
		"startOfMonth": "2024-03-01T00:00:00Z"
	}`)
	rt.routes["/api/auth/stripe"] = respondJSON(http.StatusOK, `{"membershipType":"pro","subscriptionStatus":"active"}`)
	rt.routes["/api/dashboard/get-hard-limit"] = respondJSON(http.StatusOK, `{"hardLimit": 50}`)
	rt.routes["/api/dashboard/get-monthly-invoice"] = respondJSON(http.StatusOK, `{"items":[{"cents":1000},{"cents":245}]}`)
}

func newTestService(t *testing.T, rt *routeTripper, token string) *Service {
	t.Helper()
	creds := staticCreds(token)
	client := api.NewClient(creds, api.ClientConfig{BaseURL: "https://cursor.test", UserAgent: "test"})
	client.SetHTTPClient(&http.Client{Transport: rt})

	svc := New(creds, client, time.Hour)
	svc.now = func() time.Time { return time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestService_NoCredential(t *testing.T) {
	rt := newRouteTripper()
	happyRoutes(rt)
	svc := newTestService(t, rt, "")

	err := svc.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected error without credential")
	}
	if kind := api.KindOf(err); kind != api.KindConfiguration {
		t.Errorf("KindOf = %v, want KindConfiguration", kind)
	}
	if rt.callCount() != 0 {
		t.Errorf("network calls = %d, want 0", rt.callCount())
	}
	if svc.LastError() == nil {
		t.Error("LastError() = nil, want configuration error")
	}
}

func TestService_RefreshEndToEnd(t *testing.T) {
	rt := newRouteTripper()
	happyRoutes(rt)
	svc := newTestService(t, rt, "tok")

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap := svc.Snapshot()
	if snap == nil {
		t.Fatal("Snapshot() = nil after successful refresh")
	}
	if snap.PremiumRequestsUsed == nil || *snap.PremiumRequestsUsed != 320 {
		t.Errorf("PremiumRequestsUsed = %v, want 320", snap.PremiumRequestsUsed)
	}
	if snap.PremiumRequestsLimit == nil || *snap.PremiumRequestsLimit != 500 {
		t.Errorf("PremiumRequestsLimit = %v, want 500", snap.PremiumRequestsLimit)
	}
	if snap.FastRequestsUsed == nil || *snap.FastRequestsUsed != 42 {
		t.Errorf("FastRequestsUsed = %v, want 42", snap.FastRequestsUsed)
	}
	if snap.CurrentSpend == nil || *snap.CurrentSpend != 12.45 {
		t.Errorf("CurrentSpend = %v, want 12.45", snap.CurrentSpend)
	}
	if snap.SpendLimit == nil || *snap.SpendLimit != 50 {
		t.Errorf("SpendLimit = %v, want 50", snap.SpendLimit)
	}
	// 2024-03-13 is 12 days into a cycle starting 2024-03-01
	if snap.DaysUntilRefresh == nil || *snap.DaysUntilRefresh != 18 {
		t.Errorf("DaysUntilRefresh = %v, want 18", snap.DaysUntilRefresh)
	}
	if snap.OverLimit() {
		t.Error("OverLimit() = true for 320/500")
	}

	if svc.DisplayName() != "dev@example.com" {
		t.Errorf("DisplayName() = %q, want account email", svc.DisplayName())
	}
	if svc.LastError() != nil {
		t.Errorf("LastError() = %v, want nil", svc.LastError())
	}
	if svc.LastUpdated().IsZero() {
		t.Error("LastUpdated() is zero after refresh")
	}
	if svc.History().Len() != 1 {
		t.Errorf("history length = %d, want 1", svc.History().Len())
	}

	// Strictly sequential call order
	want := []string{
		"/api/auth/me",
		"/api/usage",
		"/api/auth/stripe",
		"/api/dashboard/get-hard-limit",
		"/api/dashboard/get-monthly-invoice",
	}
	got := rt.callPaths()
	if len(got) != len(want) {
		t.Fatalf("call paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestService_OverLimitSwitchesToSpendMode(t *testing.T) {
	rt := newRouteTripper()
	happyRoutes(rt)
	rt.routes["/api/usage"] = respondJSON(http.StatusOK, `{
		"gpt-4": {"numRequests": 520, "numRequestsTotal": 1090, "maxRequestUsage": 500},
		"gpt-3.5-turbo": {"numRequests": 0},
		"startOfMonth": "2024-03-01T00:00:00Z"
	}`)
	svc := newTestService(t, rt, "tok")

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap := svc.Snapshot()
	if !snap.OverLimit() {
		t.Error("OverLimit() = false for 520/500")
	}
}

func TestService_AuthFailureAbortsAndResets(t *testing.T) {
	rt := newRouteTripper()
	happyRoutes(rt)
	svc := newTestService(t, rt, "tok")

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	if svc.Snapshot() == nil {
		t.Fatal("no snapshot after first refresh")
	}

	rt.routes["/api/auth/me"] = respondJSON(http.StatusUnauthorized, `{"error":"unauthorized"}`)
	before := rt.callCount()

	err := svc.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected auth error")
	}
	if kind := api.KindOf(err); kind != api.KindAuth {
		t.Errorf("KindOf = %v, want KindAuth", kind)
	}

	// Identity failed, nothing else was called
	if calls := rt.callCount() - before; calls != 1 {
		t.Errorf("calls after identity failure = %d, want 1", calls)
	}
	if svc.Snapshot() != nil {
		t.Error("snapshot not reset after auth failure")
	}
	if svc.DisplayName() != "" {
		t.Errorf("DisplayName() = %q after auth failure, want empty", svc.DisplayName())
	}
}

func TestService_TransientFailureRetainsSnapshot(t *testing.T) {
	rt := newRouteTripper()
	happyRoutes(rt)
	svc := newTestService(t, rt, "tok")

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	rt.routes["/api/usage"] = respondJSON(http.StatusInternalServerError, `{}`)

	err := svc.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected usage endpoint error")
	}

	snap := svc.Snapshot()
	if snap == nil {
		t.Fatal("snapshot dropped on transient failure")
	}
	if snap.PremiumRequestsUsed == nil || *snap.PremiumRequestsUsed != 320 {
		t.Errorf("retained PremiumRequestsUsed = %v, want 320", snap.PremiumRequestsUsed)
	}
	if svc.LastError() == nil {
		t.Error("LastError() = nil, want the fatal error")
	}
}

func TestService_MissingInvoiceKeepsPriorSpend(t *testing.T) {
	rt := newRouteTripper()
	happyRoutes(rt)
	svc := newTestService(t, rt, "tok")

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	rt.routes["/api/dashboard/get-monthly-invoice"] = respondJSON(http.StatusOK, `{}`)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}

	snap := svc.Snapshot()
	if snap.CurrentSpend == nil || *snap.CurrentSpend != 12.45 {
		t.Errorf("CurrentSpend = %v, want prior 12.45", snap.CurrentSpend)
	}
}

func TestService_ConcurrentRefreshIsNoOp(t *testing.T) {
	rt := newRouteTripper()
	happyRoutes(rt)

	// Hold the identity call open until released
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	rt.routes["/api/auth/me"] = func(req *http.Request) (*http.Response, error) {
		once.Do(func() { close(started) })
		<-release
		return jsonResponse(http.StatusOK, `{"email":"dev@example.com"}`), nil
	}

	svc := newTestService(t, rt, "tok")

	done := make(chan error, 1)
	go func() { done <- svc.Refresh(context.Background()) }()

	<-started
	if !svc.IsLoading() {
		t.Error("IsLoading() = false during in-flight refresh")
	}

	// Second call while in flight is a no-op
	if err := svc.Refresh(context.Background()); err != nil {
		t.Errorf("concurrent Refresh returned error: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	// Exactly one network sequence ran
	if rt.callCount() != 5 {
		t.Errorf("network calls = %d, want 5", rt.callCount())
	}
	if svc.IsLoading() {
		t.Error("IsLoading() = true after refresh completed")
	}
}

func TestService_VerifyCredential(t *testing.T) {
	rt := newRouteTripper()
	rt.routes["/api/auth/me"] = func(req *http.Request) (*http.Response, error) {
		if cookie := req.Header.Get("Cookie"); cookie != "WorkosCursorSessionToken=candidate" {
			t.Errorf("Cookie = %q, want candidate token", cookie)
		}
		return jsonResponse(http.StatusOK, `{"email":"dev@example.com"}`), nil
	}

	svc := newTestService(t, rt, "stored")

	email, err := svc.VerifyCredential(context.Background(), "candidate")
	if err != nil {
		t.Fatalf("VerifyCredential failed: %v", err)
	}
	if email != "dev@example.com" {
		t.Errorf("email = %q, want %q", email, "dev@example.com")
	}
}

func TestService_VerifyCredentialRejected(t *testing.T) {
	rt := newRouteTripper()
	rt.routes["/api/auth/me"] = respondJSON(http.StatusUnauthorized, `{}`)

	svc := newTestService(t, rt, "stored")

	if _, err := svc.VerifyCredential(context.Background(), "bad"); err == nil {
		t.Fatal("expected error for rejected candidate")
	}
}
