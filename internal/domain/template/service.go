package template

import (
	"context"
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DefaultWorkflow returns the approval chain for a form type. CSR forms
// are scored by the team lead, so the chain starts there; team lead
// self-forms skip straight to the head of department.
func DefaultWorkflow(formType string) []WorkflowStep {
	switch formType {
	case FormTypeTeamLead:
		return []WorkflowStep{
			{Step: 1, Role: "HOD", Required: true},
			{Step: 2, Role: "CEO", Required: true},
			{Step: 3, Role: "HRAdmin", Required: true},
		}
	default:
		return []WorkflowStep{
			{Step: 1, Role: "TeamLead", Required: true},
			{Step: 2, Role: "HOD", Required: true},
			{Step: 3, Role: "HRAdmin", Required: true},
		}
	}
}

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) validate(t *Template) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if !ValidFormType(t.FormType) {
		return &ValidationError{Field: "formType", Message: "form type must be CSR or TeamLead"}
	}
	for i, area := range t.PerformanceAreas {
		if strings.TrimSpace(area.Category) == "" {
			return &ValidationError{Field: fmt.Sprintf("performanceAreas[%d].category", i), Message: "category is required"}
		}
		if len(area.Items) == 0 {
			return &ValidationError{Field: fmt.Sprintf("performanceAreas[%d].items", i), Message: "at least one item is required"}
		}
		for j, item := range area.Items {
			if strings.TrimSpace(item.Title) == "" {
				return &ValidationError{Field: fmt.Sprintf("performanceAreas[%d].items[%d].title", i, j), Message: "title is required"}
			}
		}
	}
	for i, k := range t.KPIs {
		if strings.TrimSpace(k.Title) == "" {
			return &ValidationError{Field: fmt.Sprintf("kpis[%d].title", i), Message: "title is required"}
		}
	}
	if len(t.ApprovalWorkflow) == 0 {
		t.ApprovalWorkflow = DefaultWorkflow(t.FormType)
	}
	for i, step := range t.ApprovalWorkflow {
		if step.Step != i+1 {
			return &ValidationError{Field: "approvalWorkflow", Message: "steps must be numbered consecutively from 1"}
		}
		switch step.Role {
		case "TeamLead", "HOD", "CEO", "HRAdmin":
		default:
			return &ValidationError{Field: "approvalWorkflow", Message: fmt.Sprintf("role %q cannot approve", step.Role)}
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, t *Template) (*Template, error) {
	if err := s.validate(t); err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Template, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, formType string) ([]Template, error) {
	return s.store.List(ctx, formType)
}

func (s *Service) Update(ctx context.Context, id string, t *Template) (*Template, error) {
	if err := s.validate(t); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, id, t); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
