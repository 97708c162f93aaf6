package appraisal

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF produces a printable appraisal report. The caller has
// already passed the visibility check.
func RenderPDF(a *Appraisal) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Appraisal")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", a.EmployeeName))
	pdf.Ln(7)
	if a.EmployeeDepartment != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Department: %s", a.EmployeeDepartment))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Review Period: %s", a.ReviewPeriod))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Form: %s    Status: %s", a.FormType, a.Status))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Date of Evaluation: %s", a.DateOfEvaluation.Format("2006-01-02")))
	pdf.Ln(10)

	writeScoreSection(pdf, "Performance Areas", a.PerformanceScores)
	writeScoreSection(pdf, "Key Performance Indicators", a.KPIScores)

	if a.AverageScore != nil {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Average Score: %.2f    Overall Rating: %s", *a.AverageScore, a.OverallRating))
		pdf.Ln(10)
	}

	writeNarrative(pdf, "Strengths", a.Strengths)
	writeNarrative(pdf, "Areas for Improvement", a.AreasForImprovement)
	writeNarrative(pdf, "Training & Support", a.TrainingSupport)

	if len(a.ApprovalChain) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Approval Chain")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, e := range a.ApprovalChain {
			line := fmt.Sprintf("%d. %s (%s): %s", e.Step, e.ApproverName, e.Role, e.Status)
			if e.DecidedAt != nil {
				line += " on " + e.DecidedAt.Format("2006-01-02")
			}
			if e.Comment != "" {
				line += " - " + e.Comment
			}
			pdf.MultiCell(0, 6, line, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeScoreSection(pdf *gofpdf.Fpdf, title string, scores []Score) {
	if len(scores) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, sc := range scores {
		rating := "-"
		if sc.Rating != nil {
			rating = fmt.Sprintf("%d/5", *sc.Rating)
		}
		label := sc.Title
		if sc.Category != "" {
			label = sc.Category + ": " + sc.Title
		}
		pdf.MultiCell(0, 6, fmt.Sprintf("%s  [%s]", label, rating), "", "L", false)
		if sc.ManagerComment != "" {
			pdf.MultiCell(0, 6, "    Manager: "+sc.ManagerComment, "", "L", false)
		}
	}
	pdf.Ln(4)
}

func writeNarrative(pdf *gofpdf.Fpdf, title, text string) {
	if text == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, text, "", "L", false)
	pdf.Ln(4)
}
