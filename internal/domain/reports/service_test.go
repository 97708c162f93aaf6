package reports

import "testing"

func TestCompletionRate(t *testing.T) {
	cases := []struct {
		name   string
		counts map[string]int
		want   float64
	}{
		{"empty", map[string]int{}, 0},
		{"only drafts", map[string]int{"Draft": 5}, 0},
		{"all completed", map[string]int{"Completed": 4}, 1},
		{"mixed", map[string]int{"Draft": 2, "Completed": 3, "Pending_HOD_Approval": 2, "Rejected": 1}, 0.5},
		{"rejected counts against", map[string]int{"Completed": 1, "Rejected": 1}, 0.5},
	}
	for _, tc := range cases {
		if got := CompletionRate(tc.counts); got != tc.want {
			t.Errorf("%s: CompletionRate = %v, want %v", tc.name, got, tc.want)
		}
	}
}
