package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// StatusCounts returns appraisal counts grouped by status, optionally
// restricted to one department.
func (s *Store) StatusCounts(ctx context.Context, department string) (map[string]int, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.status, COUNT(1)
    FROM appraisals a
    JOIN users u ON a.employee_id = u.id
    WHERE ($1 = '' OR u.department = $1)
    GROUP BY a.status
  `, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

type DepartmentAverage struct {
	Department string  `json:"department"`
	Average    float64 `json:"average"`
	Completed  int     `json:"completed"`
}

// DepartmentAverages summarises completed appraisals per department.
func (s *Store) DepartmentAverages(ctx context.Context) ([]DepartmentAverage, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT COALESCE(u.department, ''), AVG(a.average_score), COUNT(1)
    FROM appraisals a
    JOIN users u ON a.employee_id = u.id
    WHERE a.status = 'Completed' AND a.average_score IS NOT NULL
    GROUP BY u.department
    ORDER BY u.department
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DepartmentAverage
	for rows.Next() {
		var d DepartmentAverage
		if err := rows.Scan(&d.Department, &d.Average, &d.Completed); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

type RatingCount struct {
	Rating string `json:"rating"`
	Count  int    `json:"count"`
}

func (s *Store) RatingDistribution(ctx context.Context, department string) ([]RatingCount, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.overall_rating, COUNT(1)
    FROM appraisals a
    JOIN users u ON a.employee_id = u.id
    WHERE a.status = 'Completed' AND a.overall_rating IS NOT NULL
      AND ($1 = '' OR u.department = $1)
    GROUP BY a.overall_rating
    ORDER BY COUNT(1) DESC
  `, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RatingCount
	for rows.Next() {
		var rc RatingCount
		if err := rows.Scan(&rc.Rating, &rc.Count); err != nil {
			return nil, err
		}
		result = append(result, rc)
	}
	return result, rows.Err()
}

// PendingForApprover counts chain entries waiting on one user where it
// is actually their turn.
func (s *Store) PendingForApprover(ctx context.Context, approverID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM appraisal_approvals ap
    JOIN appraisals a ON ap.appraisal_id = a.id
    WHERE ap.approver_id = $1 AND ap.status = 'Pending'
      AND ap.step = (
        SELECT MIN(step) FROM appraisal_approvals
        WHERE appraisal_id = ap.appraisal_id AND status = 'Pending')
      AND a.status NOT IN ('Draft', 'Completed', 'Rejected')
  `, approverID).Scan(&count)
	return count, err
}

func (s *Store) EmployeeHistory(ctx context.Context, employeeID string) ([]HistoryEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT review_period, status, average_score, COALESCE(overall_rating, '')
    FROM appraisals
    WHERE employee_id = $1
    ORDER BY created_at DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ReviewPeriod, &h.Status, &h.AverageScore, &h.OverallRating); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (s *Store) ActiveHeadcount(ctx context.Context, department string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM users
    WHERE is_active AND ($1 = '' OR department = $1)
  `, department).Scan(&count)
	return count, err
}

func (s *Store) KPICount(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM kpis`).Scan(&count)
	return count, err
}

func (s *Store) TemplateCount(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM appraisal_templates`).Scan(&count)
	return count, err
}

type RecentAppraisal struct {
	ID           string `json:"id"`
	EmployeeName string `json:"employeeName"`
	ReviewPeriod string `json:"reviewPeriod"`
	Status       string `json:"status"`
	UpdatedAt    string `json:"updatedAt"`
}

// RecentAppraisals returns the most recently touched appraisals.
func (s *Store) RecentAppraisals(ctx context.Context, limit int) ([]RecentAppraisal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, u.name, a.review_period, a.status,
           to_char(a.updated_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
    FROM appraisals a
    JOIN users u ON a.employee_id = u.id
    ORDER BY a.updated_at DESC
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recent []RecentAppraisal
	for rows.Next() {
		var ra RecentAppraisal
		if err := rows.Scan(&ra.ID, &ra.EmployeeName, &ra.ReviewPeriod, &ra.Status, &ra.UpdatedAt); err != nil {
			return nil, err
		}
		recent = append(recent, ra)
	}
	return recent, rows.Err()
}
