package appraisal

// ValidRating reports whether a present rating is usable. Absent
// ratings (nil) are allowed everywhere and excluded from aggregates.
func ValidRating(r *int) bool {
	return r == nil || (*r >= 1 && *r <= 5)
}

// OverallRatingFor bands an average score. Zero (no ratings present)
// reads as Not Rated.
func OverallRatingFor(average float64) string {
	switch {
	case average >= 4.5:
		return "Excellent"
	case average >= 3.5:
		return "Good"
	case average >= 2.5:
		return "Satisfactory"
	case average >= 1.5:
		return "Needs Improvement"
	case average > 0:
		return "Poor"
	default:
		return "Not Rated"
	}
}

// ComputeAggregates recalculates totals, the average, and the overall
// band from the present ratings. Safe to call repeatedly; the result
// depends only on current ratings.
func ComputeAggregates(a *Appraisal) {
	perfTotal, perfCount := sumRatings(a.PerformanceScores)
	kpiTotal, kpiCount := sumRatings(a.KPIScores)

	a.TotalPerformance = &perfTotal
	a.TotalKPI = &kpiTotal

	count := perfCount + kpiCount
	var average float64
	if count > 0 {
		average = float64(perfTotal+kpiTotal) / float64(count)
	}
	a.AverageScore = &average
	a.OverallRating = OverallRatingFor(average)
}

func sumRatings(scores []Score) (total, count int) {
	for i := range scores {
		if scores[i].Rating != nil {
			total += *scores[i].Rating
			count++
		}
	}
	return total, count
}
