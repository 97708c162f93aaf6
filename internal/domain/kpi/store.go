package kpi

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("kpi not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, k *KPI) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO kpis (title, description, category)
    VALUES ($1, NULLIF($2, ''), $3)
    RETURNING id
  `, k.Title, k.Description, k.Category).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (*KPI, error) {
	var k KPI
	err := s.DB.QueryRow(ctx, `
    SELECT id, title, COALESCE(description, ''), category, created_at, updated_at
    FROM kpis
    WHERE id = $1
  `, id).Scan(&k.ID, &k.Title, &k.Description, &k.Category, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &k, nil
}

func (s *Store) List(ctx context.Context, category string) ([]KPI, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, title, COALESCE(description, ''), category, created_at, updated_at
    FROM kpis
    WHERE ($1 = '' OR category = $1)
    ORDER BY category, title
  `, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kpis []KPI
	for rows.Next() {
		var k KPI
		if err := rows.Scan(&k.ID, &k.Title, &k.Description, &k.Category, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, err
		}
		kpis = append(kpis, k)
	}
	return kpis, rows.Err()
}

func (s *Store) Update(ctx context.Context, id string, k *KPI) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE kpis
    SET title = $2, description = NULLIF($3, ''), category = $4, updated_at = now()
    WHERE id = $1
  `, id, k.Title, k.Description, k.Category)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM kpis WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
