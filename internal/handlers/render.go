package handlers

import (
	"net/http"

	"qa-dashboard/internal/models"
	"qa-dashboard/views"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

const (
	pageTitle             = "QA Dashboard"
	uploadTooLargeMessage = "The uploaded file is too large."
)

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// renderPage writes the component as an HTMX fragment, or wrapped in the
// layout for full page loads.
func renderPage(c *gin.Context, status int, component templ.Component) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")

	var err error
	if isHTMX(c) {
		err = component.Render(c.Request.Context(), c.Writer)
	} else {
		err = views.Layout(pageTitle, c.GetString("csrf_token"), c.GetString("csp_nonce")).Render(
			templ.WithChildren(c.Request.Context(), component),
			c.Writer,
		)
	}
	if err != nil {
		c.Error(err)
	}
}

// renderUploadAlert answers a rejected upload. HTMX swaps it into the alert
// slot instead of replacing the dashboard.
func renderUploadAlert(c *gin.Context, status int, message string) {
	c.Header("HX-Retarget", "#upload-alert")
	c.Header("HX-Reswap", "innerHTML")
	renderPage(c, status, views.Alert("error", message))
}

// UploadTooLarge answers an upload whose body exceeds the size limit.
func UploadTooLarge(c *gin.Context) {
	renderUploadAlert(c, http.StatusRequestEntityTooLarge, uploadTooLargeMessage)
}

func projectFrom(c *gin.Context) models.Project {
	return c.MustGet("project").(models.Project)
}

// ProjectNotFound answers :project routes whose identifier is not in the catalog.
func ProjectNotFound(c *gin.Context) {
	renderPage(c, http.StatusNotFound, views.Alert("error", "Unknown project \""+c.Param("project")+"\""))
}

// ProjectNotFoundJSON is the API counterpart of ProjectNotFound.
func ProjectNotFoundJSON(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown project", "project": c.Param("project")})
}
