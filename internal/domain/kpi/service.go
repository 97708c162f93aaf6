package kpi

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

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func validateKPI(k *KPI) error {
	k.Title = strings.TrimSpace(k.Title)
	k.Category = strings.TrimSpace(k.Category)
	if k.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if k.Category == "" {
		return &ValidationError{Field: "category", Message: "category is required"}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, k *KPI) (*KPI, error) {
	if err := validateKPI(k); err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, k)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, category string) ([]KPI, error) {
	return s.store.List(ctx, category)
}

func (s *Service) Get(ctx context.Context, id string) (*KPI, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, k *KPI) (*KPI, error) {
	if err := validateKPI(k); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, id, k); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
