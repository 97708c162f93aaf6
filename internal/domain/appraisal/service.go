package appraisal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"paws/internal/domain/identity"
	"paws/internal/domain/notifications"
	"paws/internal/domain/template"
	"paws/internal/platform/metrics"
)

// Viewer is the authenticated identity a request acts as.
type Viewer struct {
	UserID string
	Role   string
	Name   string
}

type Service struct {
	store     *Store
	templates *template.Store
	users     *identity.Store
	notifier  *notifications.Service
	metrics   *metrics.Collector
}

func NewService(store *Store, templates *template.Store, users *identity.Store, notifier *notifications.Service, collector *metrics.Collector) *Service {
	return &Service{store: store, templates: templates, users: users, notifier: notifier, metrics: collector}
}

type CreateInput struct {
	EmployeeID       string     `json:"employeeId"`
	TemplateID       string     `json:"templateId"`
	ReviewPeriod     string     `json:"reviewPeriod"`
	DateOfEvaluation *time.Time `json:"dateOfEvaluation"`
}

// Create starts a Draft for an employee, copying the template's
// performance areas and KPIs into score rows.
func (s *Service) Create(ctx context.Context, viewer Viewer, in CreateInput) (*Appraisal, error) {
	if strings.TrimSpace(in.ReviewPeriod) == "" {
		return nil, &ValidationError{Field: "reviewPeriod", Message: "review period is required"}
	}

	employee, err := s.users.GetUser(ctx, in.EmployeeID)
	if err != nil {
		return nil, &ValidationError{Field: "employeeId", Message: "employee not found"}
	}
	if !employee.IsActive {
		return nil, &ValidationError{Field: "employeeId", Message: "employee is not active"}
	}

	tpl, err := s.templates.Get(ctx, in.TemplateID)
	if err != nil {
		return nil, &ValidationError{Field: "templateId", Message: "template not found"}
	}
	// Team leads get the TeamLead form, everyone else the CSR form.
	if employee.Role == identity.RoleTeamLead && tpl.FormType != template.FormTypeTeamLead {
		return nil, &ValidationError{Field: "templateId", Message: "team leads are appraised with the TeamLead form"}
	}
	if employee.Role == identity.RoleEmployee && tpl.FormType != template.FormTypeCSR {
		return nil, &ValidationError{Field: "templateId", Message: "employees are appraised with the CSR form"}
	}

	if !s.canManage(viewer, employee) {
		return nil, ErrForbidden
	}

	when := time.Now()
	if in.DateOfEvaluation != nil {
		when = *in.DateOfEvaluation
	}

	a := &Appraisal{
		EmployeeID:       employee.ID,
		TemplateID:       tpl.ID,
		FormType:         tpl.FormType,
		ReviewPeriod:     strings.TrimSpace(in.ReviewPeriod),
		DateOfEvaluation: when,
		Status:           StatusDraft,
	}
	for _, area := range tpl.PerformanceAreas {
		for _, item := range area.Items {
			a.PerformanceScores = append(a.PerformanceScores, Score{Category: area.Category, Title: item.Title, Description: item.Description})
		}
	}
	for _, k := range tpl.KPIs {
		a.KPIScores = append(a.KPIScores, Score{Category: k.Category, Title: k.Title, Description: k.Description})
	}

	id, err := s.store.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// canManage reports whether the viewer may create, edit, or submit an
// appraisal for this employee: HR always, the employee themselves,
// otherwise the employee's supervisor or head of department.
func (s *Service) canManage(viewer Viewer, employee *identity.User) bool {
	if viewer.Role == identity.RoleHRAdmin {
		return true
	}
	if viewer.UserID == employee.ID {
		return true
	}
	if employee.SupervisorID != nil && *employee.SupervisorID == viewer.UserID {
		return true
	}
	if employee.HODID != nil && *employee.HODID == viewer.UserID {
		return true
	}
	return false
}

// canView applies the read visibility rule: HOD, CEO, and HR see every
// appraisal, a TeamLead sees their own and any they submitted, everyone
// else only their own. Keyed on submittedBy rather than the current
// supervisor link so a later reassignment cannot hide a submitted
// document from its submitter.
func canView(viewer Viewer, a *Appraisal) bool {
	switch viewer.Role {
	case identity.RoleHRAdmin, identity.RoleCEO, identity.RoleHOD:
		return true
	}
	if a.EmployeeID == viewer.UserID {
		return true
	}
	if viewer.Role == identity.RoleTeamLead {
		return a.SubmittedBy != nil && *a.SubmittedBy == viewer.UserID
	}
	return false
}

func (s *Service) Get(ctx context.Context, viewer Viewer, id string) (*Appraisal, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if canView(viewer, a) {
		return a, nil
	}
	// A Draft has no submittedBy yet; whoever may edit it may read it.
	if a.Status == StatusDraft {
		employee, err := s.users.GetUser(ctx, a.EmployeeID)
		if err != nil {
			return nil, err
		}
		if s.canManage(viewer, employee) {
			return a, nil
		}
	}
	return nil, ErrForbidden
}

type ListInput struct {
	Status       string
	ReviewPeriod string
	EmployeeID   string
	Department   string
	Limit        int
	Offset       int
}

// visibilityFilter narrows the list filter to what the viewer may see:
// HOD, CEO, and HR list everything, a TeamLead lists their own and any
// they submitted, an employee their own. Unknown roles are refused.
func visibilityFilter(viewer Viewer, f *ListFilter) error {
	switch viewer.Role {
	case identity.RoleHRAdmin, identity.RoleCEO, identity.RoleHOD:
		// Unrestricted.
	case identity.RoleTeamLead:
		f.OwnOrSubmittedBy = viewer.UserID
	case identity.RoleEmployee:
		f.EmployeeID = viewer.UserID
	default:
		return ErrForbidden
	}
	return nil
}

// List returns the viewer-visible summaries. The visibility rule is
// folded into the store filter rather than post-filtering pages.
func (s *Service) List(ctx context.Context, viewer Viewer, in ListInput) ([]ListItem, int, error) {
	f := ListFilter{
		Status:       in.Status,
		ReviewPeriod: in.ReviewPeriod,
		EmployeeID:   in.EmployeeID,
		Department:   in.Department,
	}
	if err := visibilityFilter(viewer, &f); err != nil {
		return nil, 0, err
	}

	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, f, limit, offset)
}

type UpdateInput struct {
	PerformanceScores   []Score `json:"performanceScores"`
	KPIScores           []Score `json:"kpiScores"`
	Strengths           string  `json:"strengths"`
	AreasForImprovement string  `json:"areasForImprovement"`
	TrainingSupport     string  `json:"trainingSupport"`
	TLComments          string  `json:"tlComments"`
	HODComments         string  `json:"hodComments"`
}

// Update edits a Draft, or lets the current approver adjust ratings on
// a pending document. Completed and Rejected documents are closed.
func (s *Service) Update(ctx context.Context, viewer Viewer, id string, in UpdateInput) (*Appraisal, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateRatings(in.PerformanceScores, "performanceScores"); err != nil {
		return nil, err
	}
	if err := validateRatings(in.KPIScores, "kpiScores"); err != nil {
		return nil, err
	}

	switch {
	case a.Status == StatusDraft:
		employee, err := s.users.GetUser(ctx, a.EmployeeID)
		if err != nil {
			return nil, err
		}
		if !s.canManage(viewer, employee) {
			return nil, ErrForbidden
		}
		err = s.store.UpdateDraft(ctx, id, DraftUpdate{
			PerformanceScores:   in.PerformanceScores,
			KPIScores:           in.KPIScores,
			Strengths:           in.Strengths,
			AreasForImprovement: in.AreasForImprovement,
			TrainingSupport:     in.TrainingSupport,
			TLComments:          in.TLComments,
			HODComments:         in.HODComments,
		})
		if err != nil {
			return nil, err
		}
	case IsPending(a.Status):
		current := CurrentEntry(a.ApprovalChain)
		if current == nil || current.ApproverID != viewer.UserID {
			return nil, ErrForbidden
		}
		if err := s.store.SaveRatings(ctx, id, a.Status, in.PerformanceScores, in.KPIScores); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidTransition
	}

	return s.store.Get(ctx, id)
}

func validateRatings(scores []Score, field string) error {
	for i := range scores {
		if !ValidRating(scores[i].Rating) {
			return &ValidationError{Field: fmt.Sprintf("%s[%d].rating", field, i), Message: "rating must be between 1 and 5"}
		}
	}
	return nil
}

// SubmitAppraisal freezes the chain from the template workflow and
// moves the document to its first pending status.
func (s *Service) SubmitAppraisal(ctx context.Context, viewer Viewer, id string) (*Appraisal, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	employee, err := s.users.GetUser(ctx, a.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(viewer, employee) {
		return nil, ErrForbidden
	}

	tpl, err := s.templates.Get(ctx, a.TemplateID)
	if err != nil {
		return nil, err
	}
	chain, err := s.resolveChain(ctx, employee, tpl.ApprovalWorkflow)
	if err != nil {
		return nil, err
	}
	a.ApprovalChain = chain

	if err := Submit(a, viewer.UserID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.store.Submit(ctx, a); err != nil {
		return nil, err
	}
	s.metrics.RecordSubmission()

	first := CurrentEntry(a.ApprovalChain)
	if first != nil {
		s.notify(ctx, first.ApproverID, notifications.TypeApprovalRequested,
			"Appraisal awaiting your approval",
			fmt.Sprintf("The %s appraisal for %s is awaiting your decision.", a.ReviewPeriod, employee.Name))
	}
	s.notify(ctx, employee.ID, notifications.TypeAppraisalSubmitted,
		"Your appraisal was submitted",
		fmt.Sprintf("Your %s appraisal has entered the approval process.", a.ReviewPeriod))

	return s.store.Get(ctx, id)
}

// resolveChain turns workflow steps into concrete approver entries.
// TeamLead resolves to the employee's supervisor, HOD to their head of
// department, CEO and HRAdmin to an active holder of the role.
func (s *Service) resolveChain(ctx context.Context, employee *identity.User, workflow []template.WorkflowStep) ([]ChainEntry, error) {
	var chain []ChainEntry
	for _, step := range workflow {
		var approverID string
		switch step.Role {
		case identity.RoleTeamLead:
			if employee.SupervisorID == nil {
				return nil, &ValidationError{Field: "approvalChain", Message: "employee has no supervisor for the TeamLead step"}
			}
			approverID = *employee.SupervisorID
		case identity.RoleHOD:
			if employee.HODID != nil {
				approverID = *employee.HODID
			} else {
				hod, err := s.users.FindActiveByRole(ctx, identity.RoleHOD)
				if err != nil {
					return nil, &ValidationError{Field: "approvalChain", Message: "no active head of department"}
				}
				approverID = hod.ID
			}
		case identity.RoleCEO, identity.RoleHRAdmin:
			u, err := s.users.FindActiveByRole(ctx, step.Role)
			if err != nil {
				return nil, &ValidationError{Field: "approvalChain", Message: fmt.Sprintf("no active %s", step.Role)}
			}
			approverID = u.ID
		default:
			return nil, &ValidationError{Field: "approvalChain", Message: fmt.Sprintf("role %q cannot approve", step.Role)}
		}
		chain = append(chain, ChainEntry{
			Step:       step.Step,
			ApproverID: approverID,
			Role:       step.Role,
			Status:     EntryPending,
		})
	}
	return chain, nil
}

// ApproveAppraisal signs off the current step as the viewer.
func (s *Service) ApproveAppraisal(ctx context.Context, viewer Viewer, id, comment string) (*Appraisal, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := a.Status

	if err := Approve(a, viewer.UserID, comment, time.Now()); err != nil {
		return nil, err
	}
	ComputeAggregates(a)
	decided := decidedEntry(a, viewer.UserID)
	s.routeComment(a, decided.Role, comment)

	if err := s.store.Decide(ctx, a, decided, expected); err != nil {
		return nil, err
	}
	s.metrics.RecordApproval()

	if a.Status == StatusCompleted {
		s.metrics.RecordCompletion()
		s.notify(ctx, a.EmployeeID, notifications.TypeAppraisalCompleted,
			"Your appraisal is complete",
			fmt.Sprintf("Your %s appraisal has been fully approved. Overall rating: %s.", a.ReviewPeriod, a.OverallRating))
	} else {
		if next := CurrentEntry(a.ApprovalChain); next != nil {
			s.notify(ctx, next.ApproverID, notifications.TypeApprovalRequested,
				"Appraisal awaiting your approval",
				fmt.Sprintf("The %s appraisal for %s is awaiting your decision.", a.ReviewPeriod, a.EmployeeName))
		}
		s.notify(ctx, a.EmployeeID, notifications.TypeAppraisalApproved,
			"Appraisal step approved",
			fmt.Sprintf("Your %s appraisal was approved at the %s step.", a.ReviewPeriod, decided.Role))
	}

	return s.store.Get(ctx, id)
}

// RejectAppraisal terminates the appraisal at the current step.
func (s *Service) RejectAppraisal(ctx context.Context, viewer Viewer, id, comment string) (*Appraisal, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, &ValidationError{Field: "comment", Message: "a rejection reason is required"}
	}

	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := a.Status

	if err := Reject(a, viewer.UserID, comment, time.Now()); err != nil {
		return nil, err
	}
	ComputeAggregates(a)
	decided := decidedEntry(a, viewer.UserID)
	s.routeComment(a, decided.Role, comment)

	if err := s.store.Decide(ctx, a, decided, expected); err != nil {
		return nil, err
	}
	s.metrics.RecordRejection()

	s.notify(ctx, a.EmployeeID, notifications.TypeAppraisalRejected,
		"Your appraisal was rejected",
		fmt.Sprintf("Your %s appraisal was rejected at the %s step: %s", a.ReviewPeriod, decided.Role, comment))
	if a.SubmittedBy != nil && *a.SubmittedBy != a.EmployeeID {
		s.notify(ctx, *a.SubmittedBy, notifications.TypeAppraisalRejected,
			"A submitted appraisal was rejected",
			fmt.Sprintf("The %s appraisal for %s was rejected at the %s step: %s", a.ReviewPeriod, a.EmployeeName, decided.Role, comment))
	}

	return s.store.Get(ctx, id)
}

// decidedEntry finds the chain entry the viewer just decided.
func decidedEntry(a *Appraisal, approverID string) *ChainEntry {
	var decided *ChainEntry
	for i := range a.ApprovalChain {
		e := &a.ApprovalChain[i]
		if e.ApproverID == approverID && e.Status != EntryPending {
			if decided == nil || e.Step > decided.Step {
				decided = e
			}
		}
	}
	return decided
}

// routeComment mirrors a decision comment into the role's comment
// column on the appraisal header.
func (s *Service) routeComment(a *Appraisal, role, comment string) {
	if comment == "" {
		return
	}
	switch role {
	case identity.RoleTeamLead:
		a.TLComments = comment
	case identity.RoleHOD:
		a.HODComments = comment
	case identity.RoleCEO:
		a.CEOComments = comment
	case identity.RoleHRAdmin:
		a.HRComments = comment
	}
}

func (s *Service) notify(ctx context.Context, userID, ntype, title, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Create(ctx, userID, ntype, title, body); err != nil {
		// Notification failures never fail the workflow.
		slog.Warn("appraisal notification failed", "userId", userID, "type", ntype, "err", err)
	}
}
