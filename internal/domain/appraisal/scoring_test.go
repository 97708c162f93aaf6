package appraisal

import "testing"

func intp(v int) *int { return &v }

func TestValidRating(t *testing.T) {
	if !ValidRating(nil) {
		t.Errorf("absent rating must be valid")
	}
	for _, v := range []int{1, 2, 3, 4, 5} {
		if !ValidRating(intp(v)) {
			t.Errorf("ValidRating(%d) = false", v)
		}
	}
	for _, v := range []int{0, 6, -1, 100} {
		if ValidRating(intp(v)) {
			t.Errorf("ValidRating(%d) = true", v)
		}
	}
}

func TestOverallRatingBands(t *testing.T) {
	cases := []struct {
		average float64
		want    string
	}{
		{5.0, "Excellent"},
		{4.5, "Excellent"},
		{4.49, "Good"},
		{3.5, "Good"},
		{3.49, "Satisfactory"},
		{2.5, "Satisfactory"},
		{2.49, "Needs Improvement"},
		{1.5, "Needs Improvement"},
		{1.49, "Poor"},
		{1.0, "Poor"},
		{0.01, "Poor"},
		{0, "Not Rated"},
	}
	for _, tc := range cases {
		if got := OverallRatingFor(tc.average); got != tc.want {
			t.Errorf("OverallRatingFor(%v) = %q, want %q", tc.average, got, tc.want)
		}
	}
}

func TestComputeAggregates(t *testing.T) {
	a := &Appraisal{
		PerformanceScores: []Score{
			{Title: "Quality", Rating: intp(4)},
			{Title: "Punctuality", Rating: intp(5)},
			{Title: "Teamwork"}, // unrated, excluded
		},
		KPIScores: []Score{
			{Title: "Calls handled", Rating: intp(3)},
		},
	}
	ComputeAggregates(a)

	if a.TotalPerformance == nil || *a.TotalPerformance != 9 {
		t.Fatalf("TotalPerformance = %v, want 9", a.TotalPerformance)
	}
	if a.TotalKPI == nil || *a.TotalKPI != 3 {
		t.Fatalf("TotalKPI = %v, want 3", a.TotalKPI)
	}
	if a.AverageScore == nil || *a.AverageScore != 4.0 {
		t.Fatalf("AverageScore = %v, want 4.0", a.AverageScore)
	}
	if a.OverallRating != "Good" {
		t.Fatalf("OverallRating = %q, want Good", a.OverallRating)
	}
}

func TestComputeAggregatesNoRatings(t *testing.T) {
	a := &Appraisal{
		PerformanceScores: []Score{{Title: "Quality"}},
		KPIScores:         []Score{{Title: "Calls"}},
	}
	ComputeAggregates(a)

	if *a.TotalPerformance != 0 || *a.TotalKPI != 0 {
		t.Fatalf("totals = %d/%d, want 0/0", *a.TotalPerformance, *a.TotalKPI)
	}
	if *a.AverageScore != 0 {
		t.Fatalf("AverageScore = %v, want 0", *a.AverageScore)
	}
	if a.OverallRating != "Not Rated" {
		t.Fatalf("OverallRating = %q, want Not Rated", a.OverallRating)
	}
}

func TestComputeAggregatesIdempotent(t *testing.T) {
	a := &Appraisal{
		PerformanceScores: []Score{{Title: "Quality", Rating: intp(5)}},
		KPIScores:         []Score{{Title: "Calls", Rating: intp(4)}},
	}
	ComputeAggregates(a)
	first := *a.AverageScore
	ComputeAggregates(a)
	ComputeAggregates(a)
	if *a.AverageScore != first {
		t.Fatalf("average drifted: %v != %v", *a.AverageScore, first)
	}
	if *a.TotalPerformance != 5 || *a.TotalKPI != 4 {
		t.Fatalf("totals drifted: %d/%d", *a.TotalPerformance, *a.TotalKPI)
	}
}
