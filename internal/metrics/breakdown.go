package metrics

import "qa-dashboard/internal/models"

// Category is one slice of the status breakdown shared by the bar and pie charts.
type Category struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Breakdown splits the metrics into the six status categories, in display order.
func Breakdown(m models.TestMetrics) []Category {
	return []Category{
		{Name: "Passed", Value: m.TotalPassed, Color: "#10B981"},
		{Name: "Failed", Value: m.TotalFailed, Color: "#EF4444"},
		{Name: "In Progress", Value: m.InProgress, Color: "#F59E0B"},
		{Name: "Need to Retest", Value: m.NeedToRetest, Color: "#8B5CF6"},
		{Name: "Yet to Validate", Value: m.YetToValidate, Color: "#F97316"},
		{Name: "Pending", Value: m.Pending(), Color: "#6B7280"},
	}
}

// Total sums the category values.
func Total(cats []Category) int {
	total := 0
	for _, c := range cats {
		total += c.Value
	}
	return total
}
