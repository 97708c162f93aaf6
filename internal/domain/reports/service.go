package reports

import "context"

type HistoryEntry struct {
	ReviewPeriod  string   `json:"reviewPeriod"`
	Status        string   `json:"status"`
	AverageScore  *float64 `json:"averageScore,omitempty"`
	OverallRating string   `json:"overallRating,omitempty"`
}

// HRDashboard is the organisation-wide view HR and the CEO see.
type HRDashboard struct {
	Headcount          int                 `json:"headcount"`
	KPICount           int                 `json:"kpiCount"`
	TemplateCount      int                 `json:"templateCount"`
	StatusCounts       map[string]int      `json:"statusCounts"`
	CompletionRate     float64             `json:"completionRate"`
	DepartmentAverages []DepartmentAverage `json:"departmentAverages"`
	RatingDistribution []RatingCount       `json:"ratingDistribution"`
	Recent             []RecentAppraisal   `json:"recent"`
}

// HODDashboard narrows the same numbers to one department.
type HODDashboard struct {
	Department         string         `json:"department"`
	Headcount          int            `json:"headcount"`
	StatusCounts       map[string]int `json:"statusCounts"`
	CompletionRate     float64        `json:"completionRate"`
	RatingDistribution []RatingCount  `json:"ratingDistribution"`
	PendingOnMe        int            `json:"pendingOnMe"`
}

type EmployeeDashboard struct {
	History     []HistoryEntry `json:"history"`
	PendingOnMe int            `json:"pendingOnMe"`
}

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) HRDashboard(ctx context.Context) (*HRDashboard, error) {
	counts, err := s.Store.StatusCounts(ctx, "")
	if err != nil {
		return nil, err
	}
	averages, err := s.Store.DepartmentAverages(ctx)
	if err != nil {
		return nil, err
	}
	distribution, err := s.Store.RatingDistribution(ctx, "")
	if err != nil {
		return nil, err
	}
	headcount, err := s.Store.ActiveHeadcount(ctx, "")
	if err != nil {
		return nil, err
	}
	kpiCount, err := s.Store.KPICount(ctx)
	if err != nil {
		return nil, err
	}
	templateCount, err := s.Store.TemplateCount(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.Store.RecentAppraisals(ctx, 5)
	if err != nil {
		return nil, err
	}
	return &HRDashboard{
		Headcount:          headcount,
		KPICount:           kpiCount,
		TemplateCount:      templateCount,
		StatusCounts:       counts,
		CompletionRate:     CompletionRate(counts),
		DepartmentAverages: averages,
		RatingDistribution: distribution,
		Recent:             recent,
	}, nil
}

func (s *Service) HODDashboard(ctx context.Context, department, approverID string) (*HODDashboard, error) {
	counts, err := s.Store.StatusCounts(ctx, department)
	if err != nil {
		return nil, err
	}
	distribution, err := s.Store.RatingDistribution(ctx, department)
	if err != nil {
		return nil, err
	}
	headcount, err := s.Store.ActiveHeadcount(ctx, department)
	if err != nil {
		return nil, err
	}
	pending, err := s.Store.PendingForApprover(ctx, approverID)
	if err != nil {
		return nil, err
	}
	return &HODDashboard{
		Department:         department,
		Headcount:          headcount,
		StatusCounts:       counts,
		CompletionRate:     CompletionRate(counts),
		RatingDistribution: distribution,
		PendingOnMe:        pending,
	}, nil
}

func (s *Service) EmployeeDashboard(ctx context.Context, userID string) (*EmployeeDashboard, error) {
	history, err := s.Store.EmployeeHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending, err := s.Store.PendingForApprover(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &EmployeeDashboard{History: history, PendingOnMe: pending}, nil
}

// CompletionRate is the share of non-draft appraisals that reached
// Completed. Rejected counts against the rate; drafts are not yet in
// flight and are excluded.
func CompletionRate(counts map[string]int) float64 {
	completed := counts["Completed"]
	total := 0
	for status, n := range counts {
		if status == "Draft" {
			continue
		}
		total += n
	}
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total)
}
