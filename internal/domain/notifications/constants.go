package notifications

const (
	TypeAppraisalSubmitted = "appraisal_submitted"
	TypeAppraisalApproved  = "appraisal_approved"
	TypeAppraisalRejected  = "appraisal_rejected"
	TypeAppraisalCompleted = "appraisal_completed"
	TypeApprovalRequested  = "approval_requested"
)
