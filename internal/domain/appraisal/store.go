package appraisal

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// Create inserts the appraisal header and its score rows in one
// transaction. Scores arrive pre-populated from the template.
func (s *Store) Create(ctx context.Context, a *Appraisal) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO appraisals (employee_id, template_id, form_type, review_period, date_of_evaluation)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, a.EmployeeID, a.TemplateID, a.FormType, a.ReviewPeriod, a.DateOfEvaluation).Scan(&id)
	if err != nil {
		return "", err
	}

	if err := insertScores(ctx, tx, id, ScoreKindPerformance, a.PerformanceScores); err != nil {
		return "", err
	}
	if err := insertScores(ctx, tx, id, ScoreKindKPI, a.KPIScores); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func insertScores(ctx context.Context, tx pgx.Tx, appraisalID, kind string, scores []Score) error {
	for i, sc := range scores {
		_, err := tx.Exec(ctx, `
      INSERT INTO appraisal_scores (appraisal_id, kind, position, category, title, description, rating, manager_comment, employee_comment)
      VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, NULLIF($8, ''), NULLIF($9, ''))
    `, appraisalID, kind, i+1, sc.Category, sc.Title, sc.Description, sc.Rating, sc.ManagerComment, sc.EmployeeComment)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*Appraisal, error) {
	var a Appraisal
	err := s.DB.QueryRow(ctx, `
    SELECT a.id, a.employee_id, u.name, COALESCE(u.department, ''),
           a.template_id, t.name, a.form_type, a.review_period, a.date_of_evaluation,
           a.status,
           COALESCE(a.strengths, ''), COALESCE(a.areas_for_improvement, ''), COALESCE(a.training_support, ''),
           COALESCE(a.tl_comments, ''), COALESCE(a.hod_comments, ''), COALESCE(a.ceo_comments, ''), COALESCE(a.hr_comments, ''),
           a.total_performance_score, a.total_kpi_score, a.average_score, COALESCE(a.overall_rating, ''),
           a.submitted_by::text, a.submitted_date,
           a.created_at, a.updated_at
    FROM appraisals a
    JOIN users u ON a.employee_id = u.id
    JOIN appraisal_templates t ON a.template_id = t.id
    WHERE a.id = $1
  `, id).Scan(
		&a.ID, &a.EmployeeID, &a.EmployeeName, &a.EmployeeDepartment,
		&a.TemplateID, &a.TemplateName, &a.FormType, &a.ReviewPeriod, &a.DateOfEvaluation,
		&a.Status,
		&a.Strengths, &a.AreasForImprovement, &a.TrainingSupport,
		&a.TLComments, &a.HODComments, &a.CEOComments, &a.HRComments,
		&a.TotalPerformance, &a.TotalKPI, &a.AverageScore, &a.OverallRating,
		&a.SubmittedBy, &a.SubmittedDate,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.loadScores(ctx, &a); err != nil {
		return nil, err
	}
	if err := s.loadChain(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) loadScores(ctx context.Context, a *Appraisal) error {
	rows, err := s.DB.Query(ctx, `
    SELECT id, kind, position, COALESCE(category, ''), title, COALESCE(description, ''),
           rating, COALESCE(manager_comment, ''), COALESCE(employee_comment, '')
    FROM appraisal_scores
    WHERE appraisal_id = $1
    ORDER BY kind, position
  `, a.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	a.PerformanceScores = nil
	a.KPIScores = nil
	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.ID, &sc.Kind, &sc.Position, &sc.Category, &sc.Title, &sc.Description,
			&sc.Rating, &sc.ManagerComment, &sc.EmployeeComment); err != nil {
			return err
		}
		if sc.Kind == ScoreKindKPI {
			a.KPIScores = append(a.KPIScores, sc)
		} else {
			a.PerformanceScores = append(a.PerformanceScores, sc)
		}
	}
	return rows.Err()
}

func (s *Store) loadChain(ctx context.Context, a *Appraisal) error {
	rows, err := s.DB.Query(ctx, `
    SELECT ap.id, ap.step, ap.approver_id, u.name, ap.role, ap.status,
           COALESCE(ap.comment, ''), ap.decided_at
    FROM appraisal_approvals ap
    JOIN users u ON ap.approver_id = u.id
    WHERE ap.appraisal_id = $1
    ORDER BY ap.step
  `, a.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	a.ApprovalChain = nil
	for rows.Next() {
		var e ChainEntry
		if err := rows.Scan(&e.ID, &e.Step, &e.ApproverID, &e.ApproverName, &e.Role, &e.Status, &e.Comment, &e.DecidedAt); err != nil {
			return err
		}
		a.ApprovalChain = append(a.ApprovalChain, e)
	}
	return rows.Err()
}

// ListFilter narrows List. Visibility is enforced by the caller
// translating the viewer's role into these fields.
type ListFilter struct {
	EmployeeID       string
	Department       string
	Status           string
	ApproverID       string
	OwnOrSubmittedBy string
	ReviewPeriod     string
}

// ListItem is the summary row returned by List; score and chain detail
// require Get.
type ListItem struct {
	ID             string   `json:"id"`
	EmployeeID     string   `json:"employeeId"`
	EmployeeName   string   `json:"employeeName"`
	Department     string   `json:"department,omitempty"`
	FormType       string   `json:"formType"`
	ReviewPeriod   string   `json:"reviewPeriod"`
	Status         string   `json:"status"`
	AverageScore   *float64 `json:"averageScore,omitempty"`
	OverallRating  string   `json:"overallRating,omitempty"`
	TemplateName   string   `json:"templateName"`
	SubmittedDate  *string  `json:"submittedDate,omitempty"`
	CreatedAtEpoch int64    `json:"-"`
}

func (s *Store) List(ctx context.Context, f ListFilter, limit, offset int) ([]ListItem, int, error) {
	where := `
    WHERE ($1 = '' OR a.employee_id::text = $1)
      AND ($2 = '' OR u.department = $2)
      AND ($3 = '' OR a.status = $3)
      AND ($4 = '' OR EXISTS (
            SELECT 1 FROM appraisal_approvals ap
            WHERE ap.appraisal_id = a.id AND ap.approver_id::text = $4))
      AND ($5 = '' OR a.employee_id::text = $5 OR a.submitted_by::text = $5)
      AND ($6 = '' OR a.review_period = $6)
  `
	args := []any{f.EmployeeID, f.Department, f.Status, f.ApproverID, f.OwnOrSubmittedBy, f.ReviewPeriod}

	var total int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM appraisals a
    JOIN users u ON a.employee_id = u.id
  `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.employee_id, u.name, COALESCE(u.department, ''),
           a.form_type, a.review_period, a.status,
           a.average_score, COALESCE(a.overall_rating, ''),
           t.name, to_char(a.submitted_date, 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
    FROM appraisals a
    JOIN users u ON a.employee_id = u.id
    JOIN appraisal_templates t ON a.template_id = t.id
  `+where+`
    ORDER BY a.updated_at DESC
    LIMIT $7 OFFSET $8
  `, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []ListItem
	for rows.Next() {
		var it ListItem
		if err := rows.Scan(&it.ID, &it.EmployeeID, &it.EmployeeName, &it.Department,
			&it.FormType, &it.ReviewPeriod, &it.Status,
			&it.AverageScore, &it.OverallRating,
			&it.TemplateName, &it.SubmittedDate); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

// DraftUpdate carries the editable fields of a Draft appraisal.
type DraftUpdate struct {
	PerformanceScores   []Score
	KPIScores           []Score
	Strengths           string
	AreasForImprovement string
	TrainingSupport     string
	TLComments          string
	HODComments         string
}

// UpdateDraft rewrites scores and narrative fields while the appraisal
// is still a Draft. The status precondition makes a lost race surface
// as ErrConflict rather than silently editing a submitted document.
func (s *Store) UpdateDraft(ctx context.Context, id string, u DraftUpdate) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE appraisals
    SET strengths = NULLIF($2, ''),
        areas_for_improvement = NULLIF($3, ''),
        training_support = NULLIF($4, ''),
        tl_comments = NULLIF($5, ''),
        hod_comments = NULLIF($6, ''),
        updated_at = now()
    WHERE id = $1 AND status = 'Draft'
  `, id, u.Strengths, u.AreasForImprovement, u.TrainingSupport, u.TLComments, u.HODComments)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.draftUpdateFailure(ctx, id)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM appraisal_scores WHERE appraisal_id = $1`, id); err != nil {
		return err
	}
	if err := insertScores(ctx, tx, id, ScoreKindPerformance, u.PerformanceScores); err != nil {
		return err
	}
	if err := insertScores(ctx, tx, id, ScoreKindKPI, u.KPIScores); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) draftUpdateFailure(ctx context.Context, id string) error {
	var status string
	err := s.DB.QueryRow(ctx, `SELECT status FROM appraisals WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrInvalidTransition
}

// Submit flips Draft to the first pending status and writes the chain,
// all or nothing. The status precondition rejects double submits.
func (s *Store) Submit(ctx context.Context, a *Appraisal) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE appraisals
    SET status = $2, submitted_by = $3, submitted_date = $4, updated_at = now()
    WHERE id = $1 AND status = 'Draft'
  `, a.ID, a.Status, a.SubmittedBy, a.SubmittedDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	for _, e := range a.ApprovalChain {
		if _, err := tx.Exec(ctx, `
      INSERT INTO appraisal_approvals (appraisal_id, step, approver_id, role, status)
      VALUES ($1, $2, $3, $4, $5)
    `, a.ID, e.Step, e.ApproverID, e.Role, e.Status); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Decide persists one chain decision and the resulting appraisal
// status. expectedStatus is the status the decision was computed
// against; if another writer got there first the update matches zero
// rows and the caller sees ErrConflict.
func (s *Store) Decide(ctx context.Context, a *Appraisal, entry *ChainEntry, expectedStatus string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE appraisals
    SET status = $2,
        total_performance_score = $3,
        total_kpi_score = $4,
        average_score = $5,
        overall_rating = $6,
        tl_comments = COALESCE(NULLIF($7, ''), tl_comments),
        hod_comments = COALESCE(NULLIF($8, ''), hod_comments),
        ceo_comments = COALESCE(NULLIF($9, ''), ceo_comments),
        hr_comments = COALESCE(NULLIF($10, ''), hr_comments),
        updated_at = now()
    WHERE id = $1 AND status = $11
  `, a.ID, a.Status,
		a.TotalPerformance, a.TotalKPI, a.AverageScore, a.OverallRating,
		a.TLComments, a.HODComments, a.CEOComments, a.HRComments,
		expectedStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	tag, err = tx.Exec(ctx, `
    UPDATE appraisal_approvals
    SET status = $3, comment = NULLIF($4, ''), decided_at = $5
    WHERE appraisal_id = $1 AND step = $2 AND status = 'Pending'
  `, a.ID, entry.Step, entry.Status, entry.Comment, entry.DecidedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	return tx.Commit(ctx)
}

// SaveRatings persists rating edits made by the current approver while
// the document is pending at expectedStatus.
func (s *Store) SaveRatings(ctx context.Context, id, expectedStatus string, performance, kpis []Score) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE appraisals SET updated_at = now() WHERE id = $1 AND status = $2
  `, id, expectedStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	for _, group := range []struct {
		kind   string
		scores []Score
	}{{ScoreKindPerformance, performance}, {ScoreKindKPI, kpis}} {
		for i, sc := range group.scores {
			if _, err := tx.Exec(ctx, `
        UPDATE appraisal_scores
        SET rating = $4, manager_comment = NULLIF($5, ''), employee_comment = NULLIF($6, '')
        WHERE appraisal_id = $1 AND kind = $2 AND position = $3
      `, id, group.kind, i+1, sc.Rating, sc.ManagerComment, sc.EmployeeComment); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}
