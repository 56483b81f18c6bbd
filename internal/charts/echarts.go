// Package charts turns the status breakdown into chart options for the
// browser and into static PNG images.
package charts

import (
	"encoding/json"

	"qa-dashboard/internal/metrics"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Optioner is any go-echarts chart that can expose its option tree.
type Optioner interface {
	JSON() map[string]interface{}
}

// NewSummaryBar builds the "Test Results Summary" bar chart.
func NewSummaryBar(cats []metrics.Category) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Test Results Summary"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	names := make([]string, 0, len(cats))
	items := make([]opts.BarData, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
		items = append(items, opts.BarData{
			Name:      c.Name,
			Value:     c.Value,
			ItemStyle: &opts.ItemStyle{Color: c.Color},
		})
	}

	bar.SetXAxis(names).AddSeries("Test Cases", items)
	return bar
}

// NewDistributionPie builds the "Test Distribution" doughnut chart.
func NewDistributionPie(cats []metrics.Category) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Test Distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)

	items := make([]opts.PieData, 0, len(cats))
	for _, c := range cats {
		items = append(items, opts.PieData{
			Name:      c.Name,
			Value:     c.Value,
			ItemStyle: &opts.ItemStyle{Color: c.Color},
		})
	}

	pie.AddSeries("Test Distribution", items).SetSeriesOptions(
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}),
	)
	return pie
}

// OptionsJSON serialises a chart's options for the browser-side renderer.
func OptionsJSON(c Optioner) (string, error) {
	b, err := json.Marshal(c.JSON())
	if err != nil {
		return "", err
	}
	return string(b), nil
}
