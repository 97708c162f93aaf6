package template

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("template not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, t *Template) (string, error) {
	areas, err := json.Marshal(t.PerformanceAreas)
	if err != nil {
		return "", err
	}
	kpis, err := json.Marshal(t.KPIs)
	if err != nil {
		return "", err
	}
	workflow, err := json.Marshal(t.ApprovalWorkflow)
	if err != nil {
		return "", err
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO appraisal_templates (name, description, form_type, performance_areas, kpis, approval_workflow)
    VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
    RETURNING id
  `, t.Name, t.Description, t.FormType, areas, kpis, workflow).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	var areas, kpis, workflow []byte
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.FormType, &areas, &kpis, &workflow, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(areas, &t.PerformanceAreas); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(kpis, &t.KPIs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(workflow, &t.ApprovalWorkflow); err != nil {
		return nil, err
	}
	return &t, nil
}

const templateColumns = `
    id, name, COALESCE(description, ''), form_type,
    performance_areas, kpis, approval_workflow,
    created_at, updated_at
`

func (s *Store) Get(ctx context.Context, id string) (*Template, error) {
	return scanTemplate(s.DB.QueryRow(ctx, `
    SELECT `+templateColumns+` FROM appraisal_templates WHERE id = $1
  `, id))
}

func (s *Store) GetByName(ctx context.Context, name string) (*Template, error) {
	return scanTemplate(s.DB.QueryRow(ctx, `
    SELECT `+templateColumns+` FROM appraisal_templates WHERE name = $1
  `, name))
}

func (s *Store) List(ctx context.Context, formType string) ([]Template, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+templateColumns+`
    FROM appraisal_templates
    WHERE ($1 = '' OR form_type = $1)
    ORDER BY name
  `, formType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *Store) Update(ctx context.Context, id string, t *Template) error {
	areas, err := json.Marshal(t.PerformanceAreas)
	if err != nil {
		return err
	}
	kpis, err := json.Marshal(t.KPIs)
	if err != nil {
		return err
	}
	workflow, err := json.Marshal(t.ApprovalWorkflow)
	if err != nil {
		return err
	}

	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisal_templates
    SET name = $2, description = NULLIF($3, ''), form_type = $4,
        performance_areas = $5, kpis = $6, approval_workflow = $7,
        updated_at = now()
    WHERE id = $1
  `, id, t.Name, t.Description, t.FormType, areas, kpis, workflow)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM appraisal_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
