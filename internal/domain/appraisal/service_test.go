package appraisal

import (
	"errors"
	"testing"
)

func strp(s string) *string { return &s }

func TestCanView(t *testing.T) {
	submitted := &Appraisal{
		ID:          "ap-1",
		EmployeeID:  "emp-1",
		Status:      StatusPendingHOD,
		SubmittedBy: strp("tl-1"),
	}

	cases := []struct {
		name   string
		viewer Viewer
		a      *Appraisal
		want   bool
	}{
		{"hr sees all", Viewer{UserID: "hr-1", Role: "HRAdmin"}, submitted, true},
		{"ceo sees all", Viewer{UserID: "ceo-1", Role: "CEO"}, submitted, true},
		{"hod sees other departments", Viewer{UserID: "hod-other", Role: "HOD"}, submitted, true},
		{"employee sees own", Viewer{UserID: "emp-1", Role: "Employee"}, submitted, true},
		{"employee denied others", Viewer{UserID: "emp-2", Role: "Employee"}, submitted, false},
		{"teamlead sees what they submitted", Viewer{UserID: "tl-1", Role: "TeamLead"}, submitted, true},
		{"teamlead sees own", Viewer{UserID: "emp-1", Role: "TeamLead"}, submitted, true},
		{"teamlead denied unrelated", Viewer{UserID: "tl-2", Role: "TeamLead"}, submitted, false},
		{"unknown role denied", Viewer{UserID: "emp-1x", Role: "Contractor"}, submitted, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := canView(tc.viewer, tc.a); got != tc.want {
				t.Fatalf("canView = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanViewSubmitterSurvivesReassignment(t *testing.T) {
	// The submitter link is stamped on the document; reassigning the
	// employee's supervisor afterwards must not hide it.
	a := &Appraisal{EmployeeID: "emp-1", Status: StatusPendingHR, SubmittedBy: strp("tl-1")}
	if !canView(Viewer{UserID: "tl-1", Role: "TeamLead"}, a) {
		t.Fatalf("submitter lost visibility")
	}
}

func TestVisibilityFilter(t *testing.T) {
	t.Run("hod lists everything", func(t *testing.T) {
		var f ListFilter
		if err := visibilityFilter(Viewer{UserID: "hod-1", Role: "HOD"}, &f); err != nil {
			t.Fatalf("visibilityFilter: %v", err)
		}
		if f.EmployeeID != "" || f.OwnOrSubmittedBy != "" || f.Department != "" {
			t.Fatalf("HOD filter must stay unrestricted: %+v", f)
		}
	})

	t.Run("teamlead keyed on own or submitted", func(t *testing.T) {
		var f ListFilter
		if err := visibilityFilter(Viewer{UserID: "tl-1", Role: "TeamLead"}, &f); err != nil {
			t.Fatalf("visibilityFilter: %v", err)
		}
		if f.OwnOrSubmittedBy != "tl-1" {
			t.Fatalf("OwnOrSubmittedBy = %q, want tl-1", f.OwnOrSubmittedBy)
		}
		if f.EmployeeID != "" {
			t.Fatalf("TeamLead must not be pinned to employee_id")
		}
	})

	t.Run("employee pinned to self", func(t *testing.T) {
		f := ListFilter{EmployeeID: "someone-else"}
		if err := visibilityFilter(Viewer{UserID: "emp-1", Role: "Employee"}, &f); err != nil {
			t.Fatalf("visibilityFilter: %v", err)
		}
		if f.EmployeeID != "emp-1" {
			t.Fatalf("EmployeeID = %q, want emp-1", f.EmployeeID)
		}
	})

	t.Run("unknown role refused", func(t *testing.T) {
		var f ListFilter
		if err := visibilityFilter(Viewer{UserID: "x", Role: "Contractor"}, &f); !errors.Is(err, ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}
	})
}
