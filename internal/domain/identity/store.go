package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userColumns = `
    id, name, employee_id, email, password_hash, role,
    COALESCE(department, ''), COALESCE(position, ''),
    supervisor_id::text, hod_id::text,
    is_active, mfa_enabled, mfa_secret_enc,
    last_login, created_at, updated_at
`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.EmployeeID, &u.Email, &u.PasswordHash, &u.Role,
		&u.Department, &u.Position,
		&u.SupervisorID, &u.HODID,
		&u.IsActive, &u.MFAEnabled, &u.MFASecretEnc,
		&u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *User) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (name, employee_id, email, password_hash, role, department, position, supervisor_id, hod_id, is_active)
    VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10)
    RETURNING id
  `, u.Name, u.EmployeeID, u.Email, u.PasswordHash, u.Role, u.Department, u.Position, u.SupervisorID, u.HODID, u.IsActive).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	return scanUser(s.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(s.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM users WHERE lower(email) = lower($1)
  `, email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) EmployeeIDExists(ctx context.Context, employeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM users WHERE employee_id = $1
  `, employeeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListFilter narrows ListUsers. Zero values mean no filtering.
type ListFilter struct {
	Role       string
	Department string
	ActiveOnly bool
}

func (s *Store) ListUsers(ctx context.Context, f ListFilter) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.name, u.employee_id, u.email, u.password_hash, u.role,
           COALESCE(u.department, ''), COALESCE(u.position, ''),
           u.supervisor_id::text, u.hod_id::text,
           u.is_active, u.mfa_enabled, u.mfa_secret_enc,
           u.last_login, u.created_at, u.updated_at,
           COALESCE(sup.name, ''), COALESCE(hod.name, '')
    FROM users u
    LEFT JOIN users sup ON u.supervisor_id = sup.id
    LEFT JOIN users hod ON u.hod_id = hod.id
    WHERE ($1 = '' OR u.role = $1)
      AND ($2 = '' OR u.department = $2)
      AND (NOT $3 OR u.is_active)
    ORDER BY u.name
  `, f.Role, f.Department, f.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		err := rows.Scan(
			&u.ID, &u.Name, &u.EmployeeID, &u.Email, &u.PasswordHash, &u.Role,
			&u.Department, &u.Position,
			&u.SupervisorID, &u.HODID,
			&u.IsActive, &u.MFAEnabled, &u.MFASecretEnc,
			&u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
			&u.SupervisorName, &u.HODName,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListManagers returns active users that can supervise others.
func (s *Store) ListManagers(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+userColumns+`
    FROM users
    WHERE is_active AND role IN ('TeamLead', 'HOD', 'CEO', 'HRAdmin')
    ORDER BY role, name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// FindActiveByRole returns the oldest active account holding the role.
// Used to resolve CEO and HRAdmin approval steps.
func (s *Store) FindActiveByRole(ctx context.Context, role string) (*User, error) {
	return scanUser(s.DB.QueryRow(ctx, `
    SELECT `+userColumns+`
    FROM users
    WHERE is_active AND role = $1
    ORDER BY created_at
    LIMIT 1
  `, role))
}

type UpdateUserInput struct {
	Name         string
	Role         string
	Department   string
	Position     string
	SupervisorID *string
	HODID        *string
	IsActive     *bool
}

func (s *Store) UpdateUser(ctx context.Context, id string, in UpdateUserInput) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET name = $2,
        role = $3,
        department = NULLIF($4, ''),
        position = NULLIF($5, ''),
        supervisor_id = $6,
        hod_id = $7,
        is_active = COALESCE($8, is_active),
        updated_at = now()
    WHERE id = $1
  `, id, in.Name, in.Role, in.Department, in.Position, in.SupervisorID, in.HODID, in.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetPasswordHash(ctx context.Context, id, hash string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
  `, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetMFA(ctx context.Context, id string, enabled bool, secretEnc []byte) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET mfa_enabled = $2, mfa_secret_enc = $3, updated_at = now() WHERE id = $1
  `, id, enabled, secretEnc)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Deactivate(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET is_active = false, updated_at = now() WHERE id = $1
  `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, id)
	return err
}

func (s *Store) CreateSession(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO sessions (user_id, token_hash, expires_at)
    VALUES ($1, $2, $3)
    RETURNING id
  `, userID, tokenHash, expiresAt).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// SessionValid reports whether an unexpired, unrevoked session exists for the token.
func (s *Store) SessionValid(ctx context.Context, userID, tokenHash string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions
    WHERE user_id = $1 AND token_hash = $2 AND revoked_at IS NULL AND expires_at > now()
  `, userID, tokenHash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) RevokeSession(ctx context.Context, userID, tokenHash string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE sessions SET revoked_at = now()
    WHERE user_id = $1 AND token_hash = $2 AND revoked_at IS NULL
  `, userID, tokenHash)
	return err
}
