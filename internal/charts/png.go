package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"qa-dashboard/internal/metrics"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptyBreakdown is returned when every category is zero and there is nothing to draw.
var ErrEmptyBreakdown = errors.New("breakdown has no non-zero categories")

// Kind selects the PNG chart style.
type Kind string

const (
	KindBar Kind = "bar"
	KindPie Kind = "pie"
)

// ParseKind maps a query value onto a Kind, defaulting to bar.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindBar:
		return KindBar, nil
	case KindPie:
		return KindPie, nil
	default:
		return "", fmt.Errorf("unknown chart kind %q", s)
	}
}

// RenderPNG draws the breakdown as a PNG image.
func RenderPNG(w io.Writer, kind Kind, cats []metrics.Category, width, height int) error {
	if metrics.Total(cats) == 0 {
		return ErrEmptyBreakdown
	}
	switch kind {
	case KindPie:
		return renderPie(w, cats, width, height)
	default:
		return renderBar(w, cats, width, height)
	}
}

func renderBar(w io.Writer, cats []metrics.Category, width, height int) error {
	bars := make([]chart.Value, 0, len(cats))
	maxValue := 0
	for _, c := range cats {
		if c.Value > maxValue {
			maxValue = c.Value
		}
		color := drawing.ColorFromHex(strings.TrimPrefix(c.Color, "#"))
		bars = append(bars, chart.Value{
			Label: c.Name,
			Value: float64(c.Value),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	bc := chart.BarChart{
		Title:      "Test Results Summary",
		Width:      width,
		Height:     height,
		BarWidth:   width / (2 * len(bars)),
		BarSpacing: width / (4 * len(bars)),
		// go-chart rejects a zero-height range, so pin the baseline at 0.
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: float64(maxValue)}},
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}

func renderPie(w io.Writer, cats []metrics.Category, width, height int) error {
	values := make([]chart.Value, 0, len(cats))
	for _, c := range cats {
		// go-chart cannot draw zero-width slices.
		if c.Value == 0 {
			continue
		}
		color := drawing.ColorFromHex(strings.TrimPrefix(c.Color, "#"))
		values = append(values, chart.Value{
			Label: c.Name,
			Value: float64(c.Value),
			Style: chart.Style{FillColor: color},
		})
	}

	pc := chart.PieChart{
		Title:  "Test Distribution",
		Width:  width,
		Height: height,
		Values: values,
	}
	return pc.Render(chart.PNG, w)
}
