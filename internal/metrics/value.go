package metrics

import (
	"math"
	"strconv"
	"strings"
)

// Kind tags what a raw cell holds.
type Kind int

const (
	Absent Kind = iota
	Text
	Number
)

// Value is one raw CSV cell after dynamic typing.
type Value struct {
	kind Kind
	text string
	num  float64
}

// String wraps a textual cell.
func String(s string) Value { return Value{kind: Text, text: s} }

// Num wraps a numeric cell.
func Num(f float64) Value { return Value{kind: Number, num: f} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// Present reports whether v holds anything.
func (v Value) Present() bool { return v.kind != Absent }

// Float coerces v to a finite number. Strings are trimmed and may carry a
// trailing percent sign or thousands separators.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case Number:
		return v.num, isFinite(v.num)
	case Text:
		s := strings.TrimSpace(v.text)
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !isFinite(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.kind {
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Text:
		return v.text
	default:
		return ""
	}
}

// Infer applies dynamic typing to a raw cell: blank is Absent, a finite
// float literal is Number, anything else is Text.
func Infer(cell string) Value {
	s := strings.TrimSpace(cell)
	if s == "" {
		return Value{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && isFinite(f) {
		return Num(f)
	}
	return String(cell)
}

// RawRecord is one parsed CSV data row keyed by trimmed column name.
type RawRecord map[string]Value

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
