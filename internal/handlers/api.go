package handlers

import (
	"net/http"

	"qa-dashboard/internal/dashboard"
	"qa-dashboard/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIHandler struct {
	log   *zap.Logger
	board *dashboard.Board
}

func NewAPIHandler(log *zap.Logger, board *dashboard.Board) *APIHandler {
	return &APIHandler{log: log, board: board}
}

// Projects returns the project catalog.
func (h *APIHandler) Projects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"projects": h.board.Catalog().Projects,
		"autoload": h.board.AutoloadProject(),
	})
}

// Metrics returns the project's current snapshot with its derived values.
func (h *APIHandler) Metrics(c *gin.Context) {
	project := projectFrom(c)

	snap, err := h.board.Current(project.ID)
	if err != nil {
		h.log.Warn("Metrics requested for unknown project", zap.String("project", project.ID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project":     project,
		"snapshot":    snap,
		"failureRate": snap.Metrics.FailureRate(),
		"pending":     snap.Metrics.Pending(),
		"breakdown":   metrics.Breakdown(snap.Metrics),
	})
}
