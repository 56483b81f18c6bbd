// internal/models/test_metrics.go
package models

// TestMetrics is the resolved set of test-execution counts and rates for one
// project. Values are replaced wholesale on every load, never mutated.
type TestMetrics struct {
	TotalCases    int `json:"totalCases"`
	TotalExecuted int `json:"totalExecuted"`
	TotalPassed   int `json:"totalPassed"`
	TotalFailed   int `json:"totalFailed"`
	NeedToRetest  int `json:"needToRetest"`
	YetToValidate int `json:"yetToValidate"`
	InProgress    int `json:"inProgress"`

	// Rates are percentages (0-100).
	ExecutionRate  float64 `json:"executionRate"`
	PassRate       float64 `json:"passRate"`
	RetestRate     float64 `json:"retestRate"`
	ValidationRate float64 `json:"validationRate"`
}

// FailureRate is failed/executed as a percentage, 0 when nothing was executed.
func (m TestMetrics) FailureRate() float64 {
	if m.TotalExecuted == 0 {
		return 0
	}
	return float64(m.TotalFailed) * 100 / float64(m.TotalExecuted)
}

// Pending counts cases that are neither executed nor waiting on validation.
func (m TestMetrics) Pending() int {
	p := m.TotalCases - m.TotalExecuted - m.YetToValidate
	if p < 0 {
		return 0
	}
	return p
}
