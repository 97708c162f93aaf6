package template

import "time"

// Form types determine which approval chain applies: CSR forms route
// through TeamLead first, TeamLead self-forms start at HOD.
const (
	FormTypeCSR      = "CSR"
	FormTypeTeamLead = "TeamLead"
)

type PerformanceItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type PerformanceArea struct {
	Category string            `json:"category"`
	Items    []PerformanceItem `json:"items"`
}

type TemplateKPI struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

type WorkflowStep struct {
	Step     int    `json:"step"`
	Role     string `json:"role"`
	Required bool   `json:"required"`
}

type Template struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	FormType         string            `json:"formType"`
	PerformanceAreas []PerformanceArea `json:"performanceAreas"`
	KPIs             []TemplateKPI     `json:"kpis"`
	ApprovalWorkflow []WorkflowStep    `json:"approvalWorkflow"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func ValidFormType(t string) bool {
	return t == FormTypeCSR || t == FormTypeTeamLead
}
