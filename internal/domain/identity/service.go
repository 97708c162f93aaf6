package identity

import (
	"context"
	"fmt"
	"strings"

	"paws/internal/auth"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type CreateUserInput struct {
	Name         string  `json:"name"`
	EmployeeID   *string `json:"employeeId"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Role         string  `json:"role"`
	Department   string  `json:"department"`
	Position     string  `json:"position"`
	SupervisorID *string `json:"supervisorId"`
	HODID        *string `json:"hodId"`
}

func (in *CreateUserInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if !strings.Contains(in.Email, "@") {
		return &ValidationError{Field: "email", Message: "valid email is required"}
	}
	if len(in.Password) < 6 {
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	if !ValidRole(in.Role) {
		return &ValidationError{Field: "role", Message: "unknown role"}
	}
	// HRAdmin and CEO sit outside the department hierarchy.
	if in.Role != RoleHRAdmin && in.Role != RoleCEO && strings.TrimSpace(in.Department) == "" {
		return &ValidationError{Field: "department", Message: "department is required"}
	}
	if in.Role == RoleEmployee && in.SupervisorID == nil {
		return &ValidationError{Field: "supervisorId", Message: "employees need a supervisor"}
	}
	if (in.Role == RoleEmployee || in.Role == RoleTeamLead) && in.HODID == nil {
		return &ValidationError{Field: "hodId", Message: "a head of department is required"}
	}
	return nil
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	exists, err := s.store.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &ValidationError{Field: "email", Message: "email already registered"}
	}
	if in.EmployeeID != nil && *in.EmployeeID != "" {
		taken, err := s.store.EmployeeIDExists(ctx, *in.EmployeeID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &ValidationError{Field: "employeeId", Message: "employee id already in use"}
		}
	}
	if in.SupervisorID != nil {
		sup, err := s.store.GetUser(ctx, *in.SupervisorID)
		if err != nil {
			return nil, &ValidationError{Field: "supervisorId", Message: "supervisor not found"}
		}
		if !ApproverRole(sup.Role) {
			return nil, &ValidationError{Field: "supervisorId", Message: "supervisor cannot approve appraisals"}
		}
	}
	if in.HODID != nil {
		hod, err := s.store.GetUser(ctx, *in.HODID)
		if err != nil {
			return nil, &ValidationError{Field: "hodId", Message: "head of department not found"}
		}
		if hod.Role != RoleHOD {
			return nil, &ValidationError{Field: "hodId", Message: "designated user is not a head of department"}
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		Name:         strings.TrimSpace(in.Name),
		EmployeeID:   in.EmployeeID,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         in.Role,
		Department:   strings.TrimSpace(in.Department),
		Position:     strings.TrimSpace(in.Position),
		SupervisorID: in.SupervisorID,
		HODID:        in.HODID,
		IsActive:     true,
	}
	id, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*User, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if !ValidRole(in.Role) {
		return nil, &ValidationError{Field: "role", Message: "unknown role"}
	}
	if err := s.store.UpdateUser(ctx, id, in); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, id)
}

func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(u.PasswordHash, current); err != nil {
		return &ValidationError{Field: "currentPassword", Message: "current password is incorrect"}
	}
	if len(next) < 6 {
		return &ValidationError{Field: "newPassword", Message: "password must be at least 6 characters"}
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.store.SetPasswordHash(ctx, id, hash)
}
