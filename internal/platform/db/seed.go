package db

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"paws/internal/auth"
	"paws/internal/domain/template"
	"paws/internal/platform/config"
)

// Seed provisions the HR admin account and the two stock appraisal
// templates. Everything is idempotent; reruns are no-ops.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedAdminEmail != "" {
		if err := ensureAdminUser(ctx, pool, cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return err
		}
	}

	for _, tpl := range stockTemplates() {
		if err := ensureTemplate(ctx, pool, tpl); err != nil {
			return err
		}
	}

	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, name, email, password string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE lower(email) = lower($1)", email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (name, email, password_hash, role, is_active)
    VALUES ($1, $2, $3, 'HRAdmin', true)
  `, name, email, hash)
	return err
}

func ensureTemplate(ctx context.Context, pool *pgxpool.Pool, tpl template.Template) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM appraisal_templates WHERE name = $1", tpl.Name).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	areas, err := json.Marshal(tpl.PerformanceAreas)
	if err != nil {
		return err
	}
	kpis, err := json.Marshal(tpl.KPIs)
	if err != nil {
		return err
	}
	workflow, err := json.Marshal(tpl.ApprovalWorkflow)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO appraisal_templates (name, description, form_type, performance_areas, kpis, approval_workflow)
    VALUES ($1, $2, $3, $4, $5, $6)
  `, tpl.Name, tpl.Description, tpl.FormType, areas, kpis, workflow)
	return err
}

func stockTemplates() []template.Template {
	return []template.Template{
		{
			Name:        "Customer Service Representative - Performance Appraisal Form",
			Description: "Standard annual appraisal form for customer service representatives.",
			FormType:    template.FormTypeCSR,
			PerformanceAreas: []template.PerformanceArea{
				{
					Category: "Customer Interaction & Communication",
					Items: []template.PerformanceItem{
						{Title: "Speaks clearly and listens actively", Description: "Communication skills assessment"},
						{Title: "Shows empathy and professionalism", Description: "Professional behavior evaluation"},
					},
				},
				{
					Category: "Problem Solving & Resolution",
					Items: []template.PerformanceItem{
						{Title: "Handles complaints effectively", Description: "Complaint resolution skills"},
						{Title: "Offers quick and accurate solutions", Description: "Solution-oriented approach"},
					},
				},
				{
					Category: "Product/Service Knowledge",
					Items: []template.PerformanceItem{
						{Title: "Understanding of services and ability to use EHR effectively", Description: "Service and tooling knowledge"},
					},
				},
				{
					Category: "Efficiency & Productivity",
					Items: []template.PerformanceItem{
						{Title: "Handles a high volume of interactions", Description: "Volume management"},
						{Title: "Meets or exceeds response time goals", Description: "Time management"},
					},
				},
				{
					Category: "Teamwork & Collaboration",
					Items: []template.PerformanceItem{
						{Title: "Cooperates with team members", Description: "Team collaboration skills"},
					},
				},
				{
					Category: "Adherence to Policies & Attendance",
					Items: []template.PerformanceItem{
						{Title: "Follows procedures and guidelines", Description: "Policy compliance"},
						{Title: "Maintains good attendance and punctuality", Description: "Attendance record"},
					},
				},
			},
			KPIs: []template.TemplateKPI{
				{Title: "Customer Satisfaction Score (CSAT)", Description: "Post-interaction customer feedback", Category: "Customer"},
				{Title: "First Response Time", Description: "Time taken to respond to the customer's initial inquiry", Category: "Speed"},
				{Title: "Average Reply Time (ART)", Description: "Average time between replies in a conversation", Category: "Speed"},
				{Title: "Average Handle Time (AHT)", Description: "Average duration of each customer interaction", Category: "Speed"},
				{Title: "First Call Resolution (FCR)", Description: "Resolving customer issues during the first interaction", Category: "Quality"},
				{Title: "Call Volume", Description: "Number of calls handled per day", Category: "Productivity"},
				{Title: "Average Hold Time", Description: "Duration of calls on hold", Category: "Speed"},
				{Title: "Quality Assurance (QA) Score", Description: "Internal review of interaction quality", Category: "Quality"},
				{Title: "Adherence to Schedule", Description: "Conformance to the assigned shift plan", Category: "Productivity"},
				{Title: "Escalation Rate", Description: "Number of cases escalated to a higher level", Category: "Quality"},
			},
			ApprovalWorkflow: template.DefaultWorkflow(template.FormTypeCSR),
		},
		{
			Name:        "Team Lead Customer Support - Performance Appraisal Form",
			Description: "Annual appraisal form for customer support team leads.",
			FormType:    template.FormTypeTeamLead,
			PerformanceAreas: []template.PerformanceArea{
				{
					Category: "Leadership & Team Management",
					Items: []template.PerformanceItem{
						{Title: "Delegation and Supervision", Description: "Leadership effectiveness"},
						{Title: "Team Motivation and Morale", Description: "Team motivation skills"},
						{Title: "Conflict Resolution and Problem Solving", Description: "Conflict management"},
						{Title: "Training and Development of Team Members", Description: "Team development"},
						{Title: "Performance Monitoring and Feedback", Description: "Performance management"},
						{Title: "Schedule and Roster Management", Description: "Resource management"},
						{Title: "Adherence to SLAs and operational protocols", Description: "Operational compliance"},
					},
				},
				{
					Category: "Communication & Collaboration",
					Items: []template.PerformanceItem{
						{Title: "Communication with Team", Description: "Internal communication"},
						{Title: "Communication with Management/Other Departments", Description: "Cross-functional communication"},
						{Title: "Reporting and Documentation Accuracy", Description: "Documentation quality"},
						{Title: "Handling Client Escalations", Description: "Escalation management"},
					},
				},
				{
					Category: "Attitude & Professionalism",
					Items: []template.PerformanceItem{
						{Title: "Punctuality and Attendance", Description: "Reliability"},
						{Title: "Accountability and Ownership", Description: "Responsibility for outcomes"},
						{Title: "Adaptability to Change", Description: "Flexibility under changing priorities"},
					},
				},
			},
			KPIs: []template.TemplateKPI{
				{Title: "Team CSAT Average", Description: "Average customer satisfaction across the team", Category: "Customer"},
				{Title: "Team SLA Compliance", Description: "Share of interactions within SLA", Category: "Quality"},
				{Title: "Team Attrition Rate", Description: "Voluntary departures from the team", Category: "People"},
				{Title: "Coaching Sessions Delivered", Description: "One-on-one coaching sessions per period", Category: "People"},
				{Title: "Escalation Resolution Time", Description: "Average time to resolve escalated cases", Category: "Speed"},
			},
			ApprovalWorkflow: template.DefaultWorkflow(template.FormTypeTeamLead),
		},
	}
}
