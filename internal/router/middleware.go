package router

import (
	"errors"
	"net/http"

	"qa-dashboard/internal/config"
	"qa-dashboard/internal/models"

	"github.com/gin-gonic/gin"
)

// ProjectContextKey holds the resolved models.Project for :project routes.
const ProjectContextKey = "project"

// ProjectLoader resolves the :project path parameter against the catalog.
// Unknown identifiers are answered by notFound.
func ProjectLoader(catalog *models.Catalog, notFound gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := catalog.Lookup(c.Param("project"))
		if !ok {
			notFound(c)
			c.Abort()
			return
		}
		c.Set(ProjectContextKey, project)
		c.Next()
	}
}

// BodyLimit caps request bodies at the configured upload size. Requests that
// declare a larger body are answered by tooLarge before anything reads them.
func BodyLimit(tooLarge gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := config.Current().Dashboard.MaxUploadBytes
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.Error(errors.New("request body too large"))
			tooLarge(c)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
