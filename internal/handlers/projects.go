package handlers

import (
	"net/http"

	"qa-dashboard/internal/models"
	"qa-dashboard/views"

	"github.com/gin-gonic/gin"
)

type ProjectsHandler struct {
	catalog *models.Catalog
}

func NewProjectsHandler(catalog *models.Catalog) *ProjectsHandler {
	return &ProjectsHandler{catalog: catalog}
}

// Show renders the project selection page.
func (h *ProjectsHandler) Show(c *gin.Context) {
	renderPage(c, http.StatusOK, views.ProjectsPage(h.catalog.Projects))
}
