package identity

// Role names match the values persisted in users.role.
const (
	RoleEmployee = "Employee"
	RoleTeamLead = "TeamLead"
	RoleHOD      = "HOD"
	RoleCEO      = "CEO"
	RoleHRAdmin  = "HRAdmin"
)

// Permission names gate routes and service operations.
const (
	PermUserRead        = "user:read"
	PermUserWrite       = "user:write"
	PermKPIRead         = "kpi:read"
	PermKPIWrite        = "kpi:write"
	PermTemplateRead    = "template:read"
	PermTemplateWrite   = "template:write"
	PermAppraisalRead   = "appraisal:read"
	PermAppraisalCreate = "appraisal:create"
	PermAppraisalScore  = "appraisal:score"
	PermAppraisalDecide = "appraisal:decide"
	PermReportHR        = "report:hr"
	PermReportHOD       = "report:hod"
	PermReportSelf      = "report:self"
	PermAuditRead       = "audit:read"
)

// RolePermissions is the authorisation table. Roles are fixed, so this
// lives in code rather than in a permissions store.
var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermKPIRead,
		PermTemplateRead,
		PermAppraisalRead,
		PermAppraisalCreate,
		PermAppraisalScore,
		PermReportSelf,
	},
	RoleTeamLead: {
		PermKPIRead,
		PermTemplateRead,
		PermAppraisalRead,
		PermAppraisalCreate,
		PermAppraisalScore,
		PermAppraisalDecide,
		PermReportSelf,
	},
	RoleHOD: {
		PermUserRead,
		PermKPIRead,
		PermTemplateRead,
		PermAppraisalRead,
		PermAppraisalCreate,
		PermAppraisalScore,
		PermAppraisalDecide,
		PermReportHOD,
		PermReportSelf,
	},
	RoleCEO: {
		PermUserRead,
		PermKPIRead,
		PermTemplateRead,
		PermAppraisalRead,
		PermAppraisalDecide,
		PermReportHOD,
		PermReportSelf,
	},
	RoleHRAdmin: {
		PermUserRead,
		PermUserWrite,
		PermKPIRead,
		PermKPIWrite,
		PermTemplateRead,
		PermTemplateWrite,
		PermAppraisalRead,
		PermAppraisalCreate,
		PermAppraisalScore,
		PermAppraisalDecide,
		PermReportHR,
		PermReportHOD,
		PermReportSelf,
		PermAuditRead,
	},
}

// Roles lists the closed role set.
func Roles() []string {
	return []string{RoleEmployee, RoleTeamLead, RoleHOD, RoleCEO, RoleHRAdmin}
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

func HasPermission(role, permission string) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// ApproverRole reports whether the role can appear in an approval chain.
func ApproverRole(role string) bool {
	switch role {
	case RoleTeamLead, RoleHOD, RoleCEO, RoleHRAdmin:
		return true
	}
	return false
}
