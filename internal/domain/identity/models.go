package identity

import "time"

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	EmployeeID   *string    `json:"employeeId,omitempty"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Department   string     `json:"department,omitempty"`
	Position     string     `json:"position,omitempty"`
	SupervisorID *string    `json:"supervisorId,omitempty"`
	HODID        *string    `json:"hodId,omitempty"`

	// Resolved by list queries, empty elsewhere.
	SupervisorName string `json:"supervisorName,omitempty"`
	HODName        string `json:"hodName,omitempty"`
	IsActive     bool       `json:"isActive"`
	MFAEnabled   bool       `json:"mfaEnabled"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// Never serialised.
	PasswordHash string `json:"-"`
	MFASecretEnc []byte `json:"-"`
}

type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
