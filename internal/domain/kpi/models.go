package kpi

import "time"

// KPI is a reusable indicator HR curates; templates and appraisal
// forms reference these by title and category.
type KPI struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
