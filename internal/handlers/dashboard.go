package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"qa-dashboard/internal/charts"
	"qa-dashboard/internal/config"
	"qa-dashboard/internal/dashboard"
	"qa-dashboard/internal/metrics"
	"qa-dashboard/internal/utils"
	"qa-dashboard/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	chartWidth  = 800
	chartHeight = 400
)

type DashboardHandler struct {
	log   *zap.Logger
	board *dashboard.Board
	now   func() time.Time
}

func NewDashboardHandler(log *zap.Logger, board *dashboard.Board) *DashboardHandler {
	return &DashboardHandler{log: log, board: board, now: time.Now}
}

// Show is the view entry: it runs the project's load and renders the result.
func (h *DashboardHandler) Show(c *gin.Context) {
	project := projectFrom(c)

	snap, err := h.board.Enter(c.Request.Context(), project.ID)
	if err != nil {
		h.log.Error("Failed to enter dashboard", zap.String("project", project.ID), zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	h.renderDashboard(c, snap)
}

// Upload replaces the project's metrics with an uploaded CSV file.
func (h *DashboardHandler) Upload(c *gin.Context) {
	project := projectFrom(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			UploadTooLarge(c)
		default:
			renderUploadAlert(c, http.StatusBadRequest, "Please choose a CSV file to upload.")
		}
		return
	}
	if !utils.IsCSVFileName(fileHeader.Filename) {
		renderUploadAlert(c, http.StatusBadRequest, "Please upload a .csv file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Error("Failed to open uploaded file", zap.String("project", project.ID), zap.Error(err))
		renderUploadAlert(c, http.StatusInternalServerError, "Failed to read uploaded file.")
		return
	}
	defer file.Close()

	snap, err := h.board.Upload(project.ID, fileHeader.Filename, file)
	if err != nil {
		h.log.Error("Failed to read uploaded file", zap.String("project", project.ID), zap.Error(err))
		renderUploadAlert(c, http.StatusInternalServerError, "Failed to read uploaded file.")
		return
	}
	h.renderDashboard(c, snap)
}

// Clock renders the live indicator partial.
func (h *DashboardHandler) Clock(c *gin.Context) {
	project := projectFrom(c)
	renderPage(c, http.StatusOK, views.Clock(h.clockView(project.ID)))
}

// ChartPNG renders the current breakdown as a static image.
func (h *DashboardHandler) ChartPNG(c *gin.Context) {
	project := projectFrom(c)

	kind, err := charts.ParseKind(c.Query("kind"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.board.Current(project.ID)
	if err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}

	var buf bytes.Buffer
	err = charts.RenderPNG(&buf, kind, metrics.Breakdown(snap.Metrics), chartWidth, chartHeight)
	switch {
	case errors.Is(err, charts.ErrEmptyBreakdown):
		c.Status(http.StatusNoContent)
	case err != nil:
		h.log.Error("Failed to render chart", zap.String("project", project.ID), zap.String("kind", string(kind)), zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to render chart")
	default:
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}

func (h *DashboardHandler) renderDashboard(c *gin.Context, snap *dashboard.Snapshot) {
	project := projectFrom(c)

	view, err := views.NewDashboardView(project, snap, h.clockView(project.ID))
	if err != nil {
		h.log.Error("Failed to build dashboard view", zap.String("project", project.ID), zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to render dashboard")
		return
	}
	c.Set("snapshot_origin", string(snap.Origin))
	c.Set("snapshot_id", snap.ID.String())

	view.CSRFToken = c.GetString("csrf_token")
	view.CSPNonce = c.GetString("csp_nonce")

	renderPage(c, http.StatusOK, views.Dashboard(view))
}

func (h *DashboardHandler) clockView(projectID string) views.ClockView {
	return views.ClockView{
		ProjectID: projectID,
		Now:       h.now(),
		Interval:  config.Current().Dashboard.ClockInterval,
	}
}
