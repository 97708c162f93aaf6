package appraisal

import (
	"time"
)

// pendingStatusByRole maps an approver role to the appraisal status
// during which that role holds the turn.
var pendingStatusByRole = map[string]string{
	"TeamLead": StatusPendingTL,
	"HOD":      StatusPendingHOD,
	"CEO":      StatusPendingCEO,
	"HRAdmin":  StatusPendingHR,
}

// PendingStatusFor returns the appraisal status while a role's chain
// entry is awaiting decision.
func PendingStatusFor(role string) (string, bool) {
	status, ok := pendingStatusByRole[role]
	return status, ok
}

func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusRejected
}

func IsPending(status string) bool {
	switch status {
	case StatusPendingTL, StatusPendingHOD, StatusPendingCEO, StatusPendingHR:
		return true
	}
	return false
}

// CurrentEntry returns the lowest-step Pending entry, which holds the
// turn. Returns nil when no entry is pending.
func CurrentEntry(chain []ChainEntry) *ChainEntry {
	var current *ChainEntry
	for i := range chain {
		if chain[i].Status != EntryPending {
			continue
		}
		if current == nil || chain[i].Step < current.Step {
			current = &chain[i]
		}
	}
	return current
}

// Submit moves a Draft appraisal into its first pending status. The
// chain must already be populated with one Pending entry per workflow
// step.
func Submit(a *Appraisal, submitterID string, now time.Time) error {
	if a.Status != StatusDraft {
		return ErrInvalidTransition
	}
	if len(a.ApprovalChain) == 0 {
		return &ValidationError{Field: "approvalChain", Message: "approval chain is empty"}
	}
	first := CurrentEntry(a.ApprovalChain)
	if first == nil || first.Step != a.ApprovalChain[0].Step {
		return &ValidationError{Field: "approvalChain", Message: "approval chain must start pending"}
	}
	status, ok := PendingStatusFor(first.Role)
	if !ok {
		return &ValidationError{Field: "approvalChain", Message: "first step has a non-approver role"}
	}
	a.Status = status
	a.SubmittedBy = &submitterID
	a.SubmittedDate = &now
	return nil
}

// Approve records the current approver's sign-off and advances the
// appraisal, completing it when the last entry approves.
//
// The caller identifies as approverID. An approver who sits in the
// chain but not at the current step gets ErrInvalidTransition; an
// identity with no entry at all gets ErrForbidden.
func Approve(a *Appraisal, approverID, comment string, now time.Time) error {
	entry, err := takeTurn(a, approverID)
	if err != nil {
		return err
	}

	entry.Status = EntryApproved
	entry.Comment = comment
	entry.DecidedAt = &now

	next := CurrentEntry(a.ApprovalChain)
	if next == nil {
		a.Status = StatusCompleted
		return nil
	}
	status, ok := PendingStatusFor(next.Role)
	if !ok {
		return &ValidationError{Field: "approvalChain", Message: "next step has a non-approver role"}
	}
	a.Status = status
	return nil
}

// Reject records a rejection at the current step and terminates the
// appraisal. Later chain entries stay Pending forever; the document is
// closed to further decisions.
func Reject(a *Appraisal, approverID, comment string, now time.Time) error {
	entry, err := takeTurn(a, approverID)
	if err != nil {
		return err
	}

	entry.Status = EntryRejected
	entry.Comment = comment
	entry.DecidedAt = &now
	a.Status = StatusRejected
	return nil
}

func takeTurn(a *Appraisal, approverID string) (*ChainEntry, error) {
	if IsTerminal(a.Status) || a.Status == StatusDraft {
		return nil, ErrInvalidTransition
	}
	current := CurrentEntry(a.ApprovalChain)
	if current == nil {
		return nil, ErrInvalidTransition
	}
	if current.ApproverID != approverID {
		for i := range a.ApprovalChain {
			if a.ApprovalChain[i].ApproverID == approverID {
				// In the chain, but not their turn yet.
				return nil, ErrInvalidTransition
			}
		}
		return nil, ErrForbidden
	}
	// The document status must agree with the current entry's role.
	if status, ok := PendingStatusFor(current.Role); !ok || status != a.Status {
		return nil, ErrInvalidTransition
	}
	return current, nil
}
