package template

import "testing"

func TestDefaultWorkflow(t *testing.T) {
	csr := DefaultWorkflow(FormTypeCSR)
	if len(csr) != 3 || csr[0].Role != "TeamLead" || csr[1].Role != "HOD" || csr[2].Role != "HRAdmin" {
		t.Fatalf("unexpected CSR workflow: %+v", csr)
	}

	tl := DefaultWorkflow(FormTypeTeamLead)
	if len(tl) != 3 || tl[0].Role != "HOD" || tl[1].Role != "CEO" || tl[2].Role != "HRAdmin" {
		t.Fatalf("unexpected TeamLead workflow: %+v", tl)
	}

	for i, step := range append(csr, tl...) {
		if !step.Required {
			t.Errorf("step %d not required", i)
		}
	}
}

func TestValidateWorkflowNumbering(t *testing.T) {
	svc := NewService(nil)
	tpl := &Template{
		Name:     "Annual CSR",
		FormType: FormTypeCSR,
		ApprovalWorkflow: []WorkflowStep{
			{Step: 1, Role: "TeamLead", Required: true},
			{Step: 3, Role: "HOD", Required: true},
		},
	}
	if err := svc.validate(tpl); err == nil {
		t.Fatalf("expected error for non-consecutive steps")
	}
}

func TestValidateRejectsEmployeeApprover(t *testing.T) {
	svc := NewService(nil)
	tpl := &Template{
		Name:     "Annual CSR",
		FormType: FormTypeCSR,
		ApprovalWorkflow: []WorkflowStep{
			{Step: 1, Role: "Employee", Required: true},
		},
	}
	if err := svc.validate(tpl); err == nil {
		t.Fatalf("expected error for Employee approver")
	}
}

func TestValidateFillsDefaultWorkflow(t *testing.T) {
	svc := NewService(nil)
	tpl := &Template{Name: "Annual TL", FormType: FormTypeTeamLead}
	if err := svc.validate(tpl); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(tpl.ApprovalWorkflow) != 3 || tpl.ApprovalWorkflow[0].Role != "HOD" {
		t.Fatalf("default workflow not applied: %+v", tpl.ApprovalWorkflow)
	}
}
