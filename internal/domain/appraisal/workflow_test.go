package appraisal

import (
	"errors"
	"testing"
	"time"
)

func csrAppraisal() *Appraisal {
	return &Appraisal{
		ID:     "a-1",
		Status: StatusDraft,
		ApprovalChain: []ChainEntry{
			{Step: 1, ApproverID: "tl-1", Role: "TeamLead", Status: EntryPending},
			{Step: 2, ApproverID: "hod-1", Role: "HOD", Status: EntryPending},
			{Step: 3, ApproverID: "hr-1", Role: "HRAdmin", Status: EntryPending},
		},
	}
}

func TestSubmitMovesToFirstPendingStatus(t *testing.T) {
	a := csrAppraisal()
	now := time.Now()
	if err := Submit(a, "tl-1", now); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if a.Status != StatusPendingTL {
		t.Fatalf("status = %q, want %q", a.Status, StatusPendingTL)
	}
	if a.SubmittedBy == nil || *a.SubmittedBy != "tl-1" {
		t.Fatalf("SubmittedBy = %v", a.SubmittedBy)
	}
	if a.SubmittedDate == nil || !a.SubmittedDate.Equal(now) {
		t.Fatalf("SubmittedDate = %v", a.SubmittedDate)
	}
}

func TestSubmitTeamLeadFormStartsAtHOD(t *testing.T) {
	a := &Appraisal{
		Status: StatusDraft,
		ApprovalChain: []ChainEntry{
			{Step: 1, ApproverID: "hod-1", Role: "HOD", Status: EntryPending},
			{Step: 2, ApproverID: "ceo-1", Role: "CEO", Status: EntryPending},
			{Step: 3, ApproverID: "hr-1", Role: "HRAdmin", Status: EntryPending},
		},
	}
	if err := Submit(a, "hod-1", time.Now()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if a.Status != StatusPendingHOD {
		t.Fatalf("status = %q, want %q", a.Status, StatusPendingHOD)
	}
}

func TestSubmitRejectsNonDraft(t *testing.T) {
	a := csrAppraisal()
	a.Status = StatusPendingTL
	if err := Submit(a, "tl-1", time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestSubmitRequiresChain(t *testing.T) {
	a := &Appraisal{Status: StatusDraft}
	var verr *ValidationError
	if err := Submit(a, "tl-1", time.Now()); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestFullApprovalChainCompletes(t *testing.T) {
	a := csrAppraisal()
	now := time.Now()
	if err := Submit(a, "tl-1", now); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := Approve(a, "tl-1", "good work", now); err != nil {
		t.Fatalf("TL approve: %v", err)
	}
	if a.Status != StatusPendingHOD {
		t.Fatalf("after TL: status = %q, want %q", a.Status, StatusPendingHOD)
	}
	if a.ApprovalChain[0].Status != EntryApproved || a.ApprovalChain[0].DecidedAt == nil {
		t.Fatalf("TL entry not recorded: %+v", a.ApprovalChain[0])
	}

	if err := Approve(a, "hod-1", "", now); err != nil {
		t.Fatalf("HOD approve: %v", err)
	}
	if a.Status != StatusPendingHR {
		t.Fatalf("after HOD: status = %q, want %q", a.Status, StatusPendingHR)
	}

	if err := Approve(a, "hr-1", "finalized", now); err != nil {
		t.Fatalf("HR approve: %v", err)
	}
	if a.Status != StatusCompleted {
		t.Fatalf("after HR: status = %q, want %q", a.Status, StatusCompleted)
	}
}

func TestOutOfTurnApprovalRejected(t *testing.T) {
	a := csrAppraisal()
	now := time.Now()
	if err := Submit(a, "tl-1", now); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// HOD is in the chain but it is the team lead's turn.
	if err := Approve(a, "hod-1", "", now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if a.Status != StatusPendingTL {
		t.Fatalf("status changed on failed approval: %q", a.Status)
	}
	if a.ApprovalChain[1].Status != EntryPending {
		t.Fatalf("HOD entry mutated on failed approval")
	}
}

func TestStrangerGetsForbidden(t *testing.T) {
	a := csrAppraisal()
	now := time.Now()
	if err := Submit(a, "tl-1", now); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := Approve(a, "someone-else", "", now); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestRejectTerminates(t *testing.T) {
	a := csrAppraisal()
	now := time.Now()
	if err := Submit(a, "tl-1", now); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := Approve(a, "tl-1", "", now); err != nil {
		t.Fatalf("TL approve: %v", err)
	}

	if err := Reject(a, "hod-1", "targets not met", now); err != nil {
		t.Fatalf("HOD reject: %v", err)
	}
	if a.Status != StatusRejected {
		t.Fatalf("status = %q, want %q", a.Status, StatusRejected)
	}
	if a.ApprovalChain[1].Status != EntryRejected || a.ApprovalChain[1].Comment != "targets not met" {
		t.Fatalf("HOD entry not recorded: %+v", a.ApprovalChain[1])
	}
	// The HR entry stays frozen as Pending.
	if a.ApprovalChain[2].Status != EntryPending {
		t.Fatalf("later entry mutated: %+v", a.ApprovalChain[2])
	}
}

func TestTerminalDocumentsAreClosed(t *testing.T) {
	now := time.Now()
	for _, status := range []string{StatusCompleted, StatusRejected} {
		a := csrAppraisal()
		a.Status = status
		if err := Approve(a, "tl-1", "", now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Approve on %s: err = %v, want ErrInvalidTransition", status, err)
		}
		if err := Reject(a, "tl-1", "late", now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Reject on %s: err = %v, want ErrInvalidTransition", status, err)
		}
	}
}

func TestDoubleApprovalBySameApprover(t *testing.T) {
	a := csrAppraisal()
	now := time.Now()
	if err := Submit(a, "tl-1", now); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := Approve(a, "tl-1", "", now); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	// Their entry is decided; the turn belongs to the HOD now.
	if err := Approve(a, "tl-1", "", now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second approve: err = %v, want ErrInvalidTransition", err)
	}
}

func TestApproveOnDraftRejected(t *testing.T) {
	a := csrAppraisal()
	if err := Approve(a, "tl-1", "", time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestCurrentEntryPicksLowestPendingStep(t *testing.T) {
	chain := []ChainEntry{
		{Step: 1, ApproverID: "tl-1", Status: EntryApproved},
		{Step: 2, ApproverID: "hod-1", Status: EntryPending},
		{Step: 3, ApproverID: "hr-1", Status: EntryPending},
	}
	e := CurrentEntry(chain)
	if e == nil || e.Step != 2 {
		t.Fatalf("CurrentEntry = %+v, want step 2", e)
	}

	if e := CurrentEntry(nil); e != nil {
		t.Fatalf("CurrentEntry(nil) = %+v", e)
	}
}

func TestPendingStatusFor(t *testing.T) {
	cases := map[string]string{
		"TeamLead": StatusPendingTL,
		"HOD":      StatusPendingHOD,
		"CEO":      StatusPendingCEO,
		"HRAdmin":  StatusPendingHR,
	}
	for role, want := range cases {
		got, ok := PendingStatusFor(role)
		if !ok || got != want {
			t.Errorf("PendingStatusFor(%q) = %q, %v", role, got, ok)
		}
	}
	if _, ok := PendingStatusFor("Employee"); ok {
		t.Errorf("Employee must not have a pending status")
	}
}
