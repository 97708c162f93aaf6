package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"paws/internal/auth"
)

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	handler := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appraisals", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d blocked early: %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appraisals", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("429 without Retry-After")
	}
}

func TestRateLimitKeyedByActor(t *testing.T) {
	handler := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appraisals", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		ctx := context.WithValue(req.Context(), ctxKeyUser, auth.UserContext{UserID: userID, Role: "Employee"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))
		return rec.Code
	}

	if code := send("u-1"); code != http.StatusOK {
		t.Fatalf("first u-1 request: %d", code)
	}
	if code := send("u-1"); code != http.StatusTooManyRequests {
		t.Fatalf("second u-1 request: %d, want 429", code)
	}
	// A different actor from the same IP has their own bucket.
	if code := send("u-2"); code != http.StatusOK {
		t.Fatalf("u-2 request: %d, want 200", code)
	}
}

func TestSensitiveScopeCoversLoginAndTransitions(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   sensitiveScope
	}{
		{http.MethodPost, "/api/v1/auth/login", sensitiveScopeAuth},
		{http.MethodPost, "/api/v1/auth/signup", sensitiveScopeAuth},
		{http.MethodPost, "/api/v1/appraisals/abc/submit", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/appraisals/abc/approve", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/appraisals/abc/reject", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/appraisals", sensitiveScopeNone},
		{http.MethodGet, "/api/v1/auth/login", sensitiveScopeNone},
		{http.MethodGet, "/api/v1/appraisals/abc/submit", sensitiveScopeNone},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if got := sensitiveRateScope(req); got != tc.want {
			t.Errorf("%s %s: scope %q, want %q", tc.method, tc.path, got, tc.want)
		}
	}
}

func TestSensitiveMutationRateLimitKeysLoginByEmail(t *testing.T) {
	handler := SensitiveMutationRateLimit(4, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(email, ip string) int {
		body := strings.NewReader(`{"email":"` + email + `","password":"x"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// baseLimit/4 = 1 attempt per email per window.
	if code := send("a@example.com", "10.1.1.1:1"); code != http.StatusOK {
		t.Fatalf("first attempt: %d", code)
	}
	if code := send("a@example.com", "10.1.1.2:1"); code != http.StatusTooManyRequests {
		t.Fatalf("same email from new ip: %d, want 429", code)
	}
}
