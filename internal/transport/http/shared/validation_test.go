package shared

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestValidatorCollectsSortedIssues(t *testing.T) {
	v := NewValidator()
	v.Required("name", "  ", "name is required")
	v.Required("email", "a@b.c", "email is required")
	v.Enum("role", "Contractor", []string{"Employee", "TeamLead"}, "unknown role")
	v.Enum("formType", "CSR", []string{"CSR", "TeamLead"}, "unknown form type")

	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("issues = %d, want 2: %+v", len(issues), issues)
	}
	if issues[0].Field != "name" || issues[1].Field != "role" {
		t.Fatalf("issues not sorted by field: %+v", issues)
	}
}

func TestValidatorDate(t *testing.T) {
	v := NewValidator()
	if _, ok := v.Date("from", "2026-01-15"); !ok {
		t.Fatalf("plain date rejected")
	}
	if _, ok := v.Date("to", "not-a-date"); ok {
		t.Fatalf("garbage date accepted")
	}
	if !v.HasIssues() {
		t.Fatalf("bad date left no issue")
	}
}

func TestValidatorReject(t *testing.T) {
	v := NewValidator()
	rec := httptest.NewRecorder()
	if v.Reject(rec, "req-1") {
		t.Fatalf("clean validator rejected the request")
	}

	v.Add("role", "unknown role")
	rec = httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatalf("validator with issues did not reject")
	}
	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error.Code != "validation_error" || len(body.Error.Details.Fields) != 1 {
		t.Fatalf("unexpected error payload: %s", rec.Body.String())
	}
}
