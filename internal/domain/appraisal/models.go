package appraisal

import "time"

// Score is one scored line item. Rating is nil until someone rates it;
// present ratings are always within 1..5.
type Score struct {
	ID              string `json:"id,omitempty"`
	Kind            string `json:"-"`
	Position        int    `json:"-"`
	Category        string `json:"category,omitempty"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Rating          *int   `json:"rating,omitempty"`
	ManagerComment  string `json:"managerComment,omitempty"`
	EmployeeComment string `json:"employeeComment,omitempty"`
}

// ChainEntry is one step of the approval chain, created at submit time
// and decided in place. Step numbering starts at 1 and is dense.
type ChainEntry struct {
	ID           string     `json:"id,omitempty"`
	Step         int        `json:"step"`
	ApproverID   string     `json:"approverId"`
	ApproverName string     `json:"approverName,omitempty"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	Comment      string     `json:"comment,omitempty"`
	DecidedAt    *time.Time `json:"decidedAt,omitempty"`
}

type Appraisal struct {
	ID                  string       `json:"id"`
	EmployeeID          string       `json:"employeeId"`
	EmployeeName        string       `json:"employeeName,omitempty"`
	EmployeeDepartment  string       `json:"employeeDepartment,omitempty"`
	TemplateID          string       `json:"templateId"`
	TemplateName        string       `json:"templateName,omitempty"`
	FormType            string       `json:"formType"`
	ReviewPeriod        string       `json:"reviewPeriod"`
	DateOfEvaluation    time.Time    `json:"dateOfEvaluation"`
	Status              string       `json:"status"`
	PerformanceScores   []Score      `json:"performanceScores"`
	KPIScores           []Score      `json:"kpiScores"`
	Strengths           string       `json:"strengths,omitempty"`
	AreasForImprovement string       `json:"areasForImprovement,omitempty"`
	TrainingSupport     string       `json:"trainingSupport,omitempty"`
	TLComments          string       `json:"tlComments,omitempty"`
	HODComments         string       `json:"hodComments,omitempty"`
	CEOComments         string       `json:"ceoComments,omitempty"`
	HRComments          string       `json:"hrComments,omitempty"`
	ApprovalChain       []ChainEntry `json:"approvalChain"`
	TotalPerformance    *int         `json:"totalPerformanceScore,omitempty"`
	TotalKPI            *int         `json:"totalKpiScore,omitempty"`
	AverageScore        *float64     `json:"averageScore,omitempty"`
	OverallRating       string       `json:"overallRating,omitempty"`
	SubmittedBy         *string      `json:"submittedBy,omitempty"`
	SubmittedDate       *time.Time   `json:"submittedDate,omitempty"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}
