package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/abbasi303/Marketting-dashboard/internal/config"
)

func authConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:    true,
		ViewerKeys: []string{"view-key"},
		EditorKeys: []string{"edit-key"},
		AdminKeys:  []string{"admin-key"},
		SkipPaths:  []string{"/health"},
	}
}

func roleProbe(t *testing.T, am *AuthMiddleware, key string) (int, Role) {
	t.Helper()
	var got Role
	handler := am.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	if key != "" {
		req.Header.Set(AuthHeaderName, key)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code, got
}

func TestAuthMiddlewareRoles(t *testing.T) {
	am := NewAuthMiddleware(authConfig(), zap.NewNop())

	cases := []struct {
		key        string
		wantStatus int
		wantRole   Role
	}{
		{"view-key", http.StatusOK, RoleViewer},
		{"edit-key", http.StatusOK, RoleEditor},
		{"admin-key", http.StatusOK, RoleAdmin},
		{"wrong-key", http.StatusUnauthorized, RoleNone},
		{"", http.StatusUnauthorized, RoleNone},
	}
	for _, tc := range cases {
		status, role := roleProbe(t, am, tc.key)
		if status != tc.wantStatus || role != tc.wantRole {
			t.Errorf("key %q: status %d role %v, want %d %v", tc.key, status, role, tc.wantStatus, tc.wantRole)
		}
	}
}

func TestAuthMiddlewareSkipPaths(t *testing.T) {
	am := NewAuthMiddleware(authConfig(), zap.NewNop())
	handler := am.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("skip path status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddlewareDisabledGrantsAdmin(t *testing.T) {
	cfg := authConfig()
	cfg.Enabled = false
	am := NewAuthMiddleware(cfg, zap.NewNop())

	status, role := roleProbe(t, am, "")
	if status != http.StatusOK || role != RoleAdmin {
		t.Errorf("disabled auth: status %d role %v, want 200 admin", status, role)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	// Per-IP buckets are a tenth of the global budget: burst 1 here.
	rl := NewRateLimitMiddleware(config.RateLimitConfig{
		Enabled: true,
		RPS:     10,
		Burst:   10,
	}, zap.NewNop())
	handler := rl.HandlerPerIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("10.0.0.1:1234"); got != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", got)
	}
	if got := send("10.0.0.1:5678"); got != http.StatusTooManyRequests {
		t.Errorf("second request from same IP status = %d, want 429", got)
	}
	// A different client has its own bucket.
	if got := send("10.0.0.2:1234"); got != http.StatusOK {
		t.Errorf("request from fresh IP status = %d, want 200", got)
	}

	// Cleanup drops the exhausted bucket, so the client starts over.
	rl.CleanupIPLimiters()
	if got := send("10.0.0.1:1234"); got != http.StatusOK {
		t.Errorf("post-cleanup request status = %d, want 200", got)
	}
}

func TestRateLimitPerIPDisabled(t *testing.T) {
	rl := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: false}, zap.NewNop())
	handler := rl.HandlerPerIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	am := NewAuthMiddleware(authConfig(), zap.NewNop())
	protected := am.Handler(am.RequireRole(RoleEditor, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	cases := []struct {
		key        string
		wantStatus int
	}{
		{"view-key", http.StatusForbidden},
		{"edit-key", http.StatusOK},
		{"admin-key", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
		req.Header.Set(AuthHeaderName, tc.key)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != tc.wantStatus {
			t.Errorf("key %q: status = %d, want %d", tc.key, rec.Code, tc.wantStatus)
		}
	}
}
