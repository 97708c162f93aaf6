package appraisal

// Appraisal lifecycle statuses. An appraisal leaves Draft exactly once
// and never returns; Completed and Rejected are terminal.
const (
	StatusDraft      = "Draft"
	StatusPendingTL  = "Pending_TL_Approval"
	StatusPendingHOD = "Pending_HOD_Approval"
	StatusPendingCEO = "Pending_CEO_Approval"
	StatusPendingHR  = "Pending_HR_Approval"
	StatusCompleted  = "Completed"
	StatusRejected   = "Rejected"
)

// Per-entry statuses within the approval chain.
const (
	EntryPending  = "Pending"
	EntryApproved = "Approved"
	EntryRejected = "Rejected"
)

// Score kinds: performance covers the competency areas, kpi covers the
// measurable indicators copied from the template.
const (
	ScoreKindPerformance = "performance"
	ScoreKindKPI         = "kpi"
)
