package views

import (
	"fmt"

	"qa-dashboard/internal/models"
)

// Card is one headline metric tile on the dashboard.
type Card struct {
	Title    string
	Value    int
	Subtitle string
	Accent   string
	// Trend is a fixed percentage badge; zero means no badge.
	Trend float64
}

// HasTrend reports whether the card shows a trend badge.
func (c Card) HasTrend() bool { return c.Trend != 0 }

// TrendUp reports whether the badge points upwards.
func (c Card) TrendUp() bool { return c.Trend > 0 }

// TrendLabel renders the badge magnitude, e.g. "0.8%".
func (c Card) TrendLabel() string {
	t := c.Trend
	if t < 0 {
		t = -t
	}
	return fmt.Sprintf("%g%%", t)
}

// Cards builds the seven metric tiles in display order.
func Cards(m models.TestMetrics) []Card {
	return []Card{
		{Title: "TOTAL TEST CASES", Value: m.TotalCases, Accent: "purple", Trend: 2.3},
		{Title: "TOTAL EXECUTED", Value: m.TotalExecuted, Subtitle: rate(m.ExecutionRate, "Execution Rate"), Accent: "blue", Trend: 5.7},
		{Title: "TOTAL PASSED", Value: m.TotalPassed, Subtitle: rate(m.PassRate, "Pass Rate"), Accent: "green", Trend: 1.2},
		{Title: "TOTAL FAILED", Value: m.TotalFailed, Subtitle: rate(m.FailureRate(), "Failure Rate"), Accent: "red", Trend: -0.8},
		{Title: "IN PROGRESS", Value: m.InProgress, Accent: "orange"},
		{Title: "NEED TO RETEST", Value: m.NeedToRetest, Subtitle: rate(m.RetestRate, "Retest Rate"), Accent: "indigo", Trend: -1.4},
		{Title: "YET TO VALIDATE", Value: m.YetToValidate, Subtitle: rate(m.ValidationRate, "Validation Rate"), Accent: "amber", Trend: 0.8},
	}
}

func rate(v float64, label string) string {
	return fmt.Sprintf("%.2f%% %s", v, label)
}

// Insight is one entry of the performance insights panel.
type Insight struct {
	Icon  string
	Label string
	Value string
}

// Insights summarises the rates at one decimal place.
func Insights(m models.TestMetrics) []Insight {
	return []Insight{
		{Icon: "🎯", Label: "Execution Rate", Value: fmt.Sprintf("%.1f%%", m.ExecutionRate)},
		{Icon: "✅", Label: "Success Rate", Value: fmt.Sprintf("%.1f%%", m.PassRate)},
		{Icon: "🔄", Label: "Retest Rate", Value: fmt.Sprintf("%.1f%%", m.RetestRate)},
		{Icon: "📋", Label: "Validation Rate", Value: fmt.Sprintf("%.1f%%", m.ValidationRate)},
		{Icon: "⚡", Label: "Efficiency", Value: "Excellent"},
	}
}
