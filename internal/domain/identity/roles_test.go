package identity

import "testing"

func TestHasPermission(t *testing.T) {
	cases := []struct {
		role       string
		permission string
		want       bool
	}{
		{RoleEmployee, PermAppraisalRead, true},
		{RoleEmployee, PermAppraisalCreate, true},
		{RoleEmployee, PermKPIRead, true},
		{RoleEmployee, PermTemplateRead, true},
		{RoleEmployee, PermAppraisalDecide, false},
		{RoleEmployee, PermUserWrite, false},
		{RoleTeamLead, PermAppraisalCreate, true},
		{RoleTeamLead, PermAppraisalDecide, true},
		{RoleTeamLead, PermUserRead, false},
		{RoleTeamLead, PermTemplateWrite, false},
		{RoleHOD, PermReportHOD, true},
		{RoleHOD, PermReportHR, false},
		{RoleCEO, PermAppraisalDecide, true},
		{RoleCEO, PermAppraisalCreate, false},
		{RoleHRAdmin, PermUserWrite, true},
		{RoleHRAdmin, PermReportHR, true},
		{RoleHRAdmin, PermAuditRead, true},
		{"Unknown", PermAppraisalRead, false},
	}
	for _, tc := range cases {
		if got := HasPermission(tc.role, tc.permission); got != tc.want {
			t.Errorf("HasPermission(%q, %q) = %v, want %v", tc.role, tc.permission, got, tc.want)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleEmployee, RoleTeamLead, RoleHOD, RoleCEO, RoleHRAdmin} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false", role)
		}
	}
	if ValidRole("Manager") {
		t.Errorf("ValidRole accepted unknown role")
	}
}

func TestApproverRole(t *testing.T) {
	if ApproverRole(RoleEmployee) {
		t.Errorf("Employee must not appear in an approval chain")
	}
	for _, role := range []string{RoleTeamLead, RoleHOD, RoleCEO, RoleHRAdmin} {
		if !ApproverRole(role) {
			t.Errorf("ApproverRole(%q) = false", role)
		}
	}
}
