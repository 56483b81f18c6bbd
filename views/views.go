// Package views holds the page components. Each component is a templ
// component backed by an embedded html/template.
package views

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"qa-dashboard/internal/charts"
	"qa-dashboard/internal/dashboard"
	"qa-dashboard/internal/metrics"
	"qa-dashboard/internal/models"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

type alertData struct {
	Kind    string
	Message string
}

var tmpl = template.Must(template.New("").Funcs(template.FuncMap{
	"alertData": func(kind, message string) alertData { return alertData{kind, message} },
	"seconds": func(d time.Duration) int {
		s := int(d / time.Second)
		if s < 1 {
			return 1
		}
		return s
	},
}).ParseFS(templateFS, "templates/*.html"))

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return tmpl.ExecuteTemplate(w, name, data)
	})
}

type layoutData struct {
	Title     string
	CSRFToken string
	CSPNonce  string
	Body      template.HTML
}

// Layout wraps the children from ctx in the full HTML document.
func Layout(title, csrfToken, cspNonce string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var body bytes.Buffer
		if err := templ.GetChildren(ctx).Render(ctx, &body); err != nil {
			return err
		}
		return tmpl.ExecuteTemplate(w, "layout", layoutData{
			Title:     title,
			CSRFToken: csrfToken,
			CSPNonce:  cspNonce,
			Body:      template.HTML(body.String()),
		})
	})
}

// ProjectsPage lists the catalog as selectable cards.
func ProjectsPage(projects []models.Project) templ.Component {
	return render("projects", projects)
}

// Alert is a single error or informational banner.
func Alert(kind, message string) templ.Component {
	return render("alert", alertData{kind, message})
}

// ClockView is the data behind the live indicator.
type ClockView struct {
	ProjectID string
	Now       time.Time
	Interval  time.Duration
}

// Clock renders the self-refreshing "Live" indicator.
func Clock(v ClockView) templ.Component {
	return render("clock", v)
}

// DashboardView is everything the dashboard page shows for one snapshot.
type DashboardView struct {
	Project    models.Project
	Snapshot   *dashboard.Snapshot
	Cards      []Card
	Insights   []Insight
	Breakdown  []metrics.Category
	BarOptions string
	PieOptions string
	Clock      ClockView
	CSRFToken  string
	CSPNonce   string
}

// NewDashboardView derives cards, insights and chart options from a snapshot.
func NewDashboardView(p models.Project, snap *dashboard.Snapshot, clock ClockView) (DashboardView, error) {
	cats := metrics.Breakdown(snap.Metrics)
	bar, err := charts.OptionsJSON(charts.NewSummaryBar(cats))
	if err != nil {
		return DashboardView{}, fmt.Errorf("bar chart options: %w", err)
	}
	pie, err := charts.OptionsJSON(charts.NewDistributionPie(cats))
	if err != nil {
		return DashboardView{}, fmt.Errorf("pie chart options: %w", err)
	}
	return DashboardView{
		Project:    p,
		Snapshot:   snap,
		Cards:      Cards(snap.Metrics),
		Insights:   Insights(snap.Metrics),
		Breakdown:  cats,
		BarOptions: bar,
		PieOptions: pie,
		Clock:      clock,
	}, nil
}

// Dashboard renders the dashboard body for one project.
func Dashboard(v DashboardView) templ.Component {
	return render("dashboard", v)
}
