package metrics

import (
	"math"

	"qa-dashboard/internal/models"
)

// Field names one resolvable TestMetrics input.
type Field string

const (
	FieldTotalCases    Field = "totalCases"
	FieldTotalExecuted Field = "totalExecuted"
	FieldTotalPassed   Field = "totalPassed"
	FieldTotalFailed   Field = "totalFailed"
	FieldNeedToRetest  Field = "needToRetest"
	FieldYetToValidate Field = "yetToValidate"
	FieldInProgress    Field = "inProgress"
	FieldExecutionRate Field = "executionRate"
	FieldPassRate      Field = "passRate"

	FieldRetestRate     Field = "retestRate"
	FieldValidationRate Field = "validationRate"
)

// Alias lists the accepted column names for a field, highest priority first.
type Alias struct {
	Field   Field
	Columns []string
}

// Aliases is the column-name table, in field order.
var Aliases = []Alias{
	{FieldTotalCases, []string{"Total Test Cases", "Total Cases", "Test Cases"}},
	{FieldTotalExecuted, []string{"Total Executed", "Executed", "Total Run"}},
	{FieldTotalPassed, []string{"Total Passed", "Passed", "Pass"}},
	{FieldTotalFailed, []string{"Total Failed", "Failed", "Fail"}},
	{FieldNeedToRetest, []string{"Need To Retest", "Need to Retest", "Retest", "To Retest"}},
	{FieldYetToValidate, []string{"Yet to validate", "Yet To Validate", "To Validate", "Pending Validation"}},
	{FieldInProgress, []string{"Total In Progress", "In Progress", "Progress", "Running"}},
	{FieldExecutionRate, []string{"% Execution", "Execution Rate", "Execution %"}},
	{FieldPassRate, []string{"% Passed", "Pass Rate", "Pass %"}},
}

// Fallback counts used when no alias resolves.
var defaultCounts = map[Field]int{
	FieldTotalCases:    144,
	FieldTotalExecuted: 132,
	FieldTotalPassed:   117,
	FieldTotalFailed:   6,
	FieldNeedToRetest:  10,
	FieldYetToValidate: 6,
	FieldInProgress:    2,
}

// DefaultCount returns the fallback for a count field.
func DefaultCount(f Field) int {
	return defaultCounts[f]
}

// Provenance records where a resolved field came from. Column is empty when
// the field fell back to its default or was derived.
type Provenance struct {
	Field   Field  `json:"field"`
	Column  string `json:"column,omitempty"`
	Derived bool   `json:"derived,omitempty"`
}

// Defaults is the TestMetrics produced when there is no input at all.
func Defaults() models.TestMetrics {
	m, _ := Explain(nil)
	return m
}

// Resolve maps a raw record onto TestMetrics. It never fails: any field that
// cannot be read from the record takes its default, and rates the record
// does not supply are derived from the resolved counts.
func Resolve(rec RawRecord) models.TestMetrics {
	m, _ := Explain(rec)
	return m
}

// Explain resolves like Resolve and also reports the source of each field.
func Explain(rec RawRecord) (models.TestMetrics, []Provenance) {
	prov := make([]Provenance, 0, len(Aliases)+2)
	counts := make(map[Field]int, len(defaultCounts))
	rates := make(map[Field]float64, 2)
	explicit := make(map[Field]bool, 2)

	for _, a := range Aliases {
		switch a.Field {
		case FieldExecutionRate, FieldPassRate:
			v, col, ok := lookupRate(rec, a.Columns)
			if ok {
				rates[a.Field] = v
				explicit[a.Field] = true
			}
			prov = append(prov, Provenance{Field: a.Field, Column: col, Derived: !ok})
		default:
			n, col, ok := lookupCount(rec, a.Columns)
			if !ok {
				n = defaultCounts[a.Field]
			}
			counts[a.Field] = n
			prov = append(prov, Provenance{Field: a.Field, Column: col})
		}
	}

	m := models.TestMetrics{
		TotalCases:    counts[FieldTotalCases],
		TotalExecuted: counts[FieldTotalExecuted],
		TotalPassed:   counts[FieldTotalPassed],
		TotalFailed:   counts[FieldTotalFailed],
		NeedToRetest:  counts[FieldNeedToRetest],
		YetToValidate: counts[FieldYetToValidate],
		InProgress:    counts[FieldInProgress],
	}

	m.ExecutionRate = rates[FieldExecutionRate]
	if !explicit[FieldExecutionRate] {
		m.ExecutionRate = percent(m.TotalExecuted, m.TotalCases)
	}
	m.PassRate = rates[FieldPassRate]
	if !explicit[FieldPassRate] {
		m.PassRate = percent(m.TotalPassed, m.TotalExecuted)
	}

	// Retest and validation rates are always derived, even when the record
	// carries similarly named columns.
	m.RetestRate = percent(m.NeedToRetest, m.TotalCases)
	m.ValidationRate = percent(m.YetToValidate, m.TotalCases)
	prov = append(prov,
		Provenance{Field: FieldRetestRate, Derived: true},
		Provenance{Field: FieldValidationRate, Derived: true},
	)

	return m, prov
}

// lookupCount returns the first alias holding a non-negative finite number,
// rounded to the nearest integer.
func lookupCount(rec RawRecord, columns []string) (int, string, bool) {
	for _, col := range columns {
		f, ok := rec[col].Float()
		if !ok || f < 0 {
			continue
		}
		return int(math.Round(f)), col, true
	}
	return 0, "", false
}

// lookupRate returns the first alias holding a non-zero percentage. Zero
// counts as not supplied so the rate is derived instead; negative values are
// taken as given.
func lookupRate(rec RawRecord, columns []string) (float64, string, bool) {
	for _, col := range columns {
		f, ok := rec[col].Float()
		if !ok || f == 0 {
			continue
		}
		return f, col, true
	}
	return 0, "", false
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}
