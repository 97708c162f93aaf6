package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"paws/internal/auth"
	"paws/internal/domain/identity"
)

func requestAs(role string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/kpis", nil)
	if role == "" {
		return req
	}
	ctx := context.WithValue(req.Context(), ctxKeyUser, auth.UserContext{UserID: "u-1", Role: role})
	return req.WithContext(ctx)
}

func TestRequirePermission(t *testing.T) {
	called := false
	handler := RequirePermission(identity.PermKPIWrite)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(identity.RoleHRAdmin))
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("HRAdmin denied kpi:write: status %d", rec.Code)
	}

	called = false
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(identity.RoleEmployee))
	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("Employee allowed kpi:write: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous request: status %d, want 401", rec.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(identity.RoleEmployee))
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated request rejected: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous request: status %d, want 401", rec.Code)
	}
}
