package router

import (
	"net/http"
	"time"

	"qa-dashboard/internal/config"
	"qa-dashboard/internal/dashboard"
	"qa-dashboard/internal/handlers"
	"qa-dashboard/internal/utils"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

const sessionName = "qadash"

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.Header("HX-Retarget", "#upload-alert")
	c.Header("HX-Reswap", "innerHTML")
	c.String(http.StatusTooManyRequests, "Too many uploads. Try again in %s.", time.Until(info.ResetTime).Round(time.Second))
}

// Setup builds the gin engine serving the projects page, the dashboards and
// the JSON API.
func Setup(log *zap.Logger, board *dashboard.Board) *gin.Engine {
	conf := config.Current()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	key, generated, err := utils.SessionKey(conf.Server.SessionSecret)
	if err != nil {
		log.Fatal("Failed to create session key", zap.Error(err))
	}
	if generated {
		log.Warn("server.session_secret is not set; sessions will not survive a restart")
	}
	store := cookie.NewStore(key)
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   conf.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions(sessionName, store))

	// Body limit runs before CSRF, which may read the form.
	router.Use(BodyLimit(handlers.UploadTooLarge))
	router.Use(NonceMiddleware())
	router.Use(CSRFProtection())
	router.Use(ContentSecurityPolicy())

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "same-origin",
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	router.Static("/assets", "./assets")

	projectsHandler := handlers.NewProjectsHandler(board.Catalog())
	dashboardHandler := handlers.NewDashboardHandler(log, board)
	apiHandler := handlers.NewAPIHandler(log, board)

	uploadLimit := []gin.HandlerFunc{}
	if perMinute := conf.RateLimit.UploadPerMinute; perMinute > 0 {
		rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  time.Minute,
			Limit: perMinute,
		})
		uploadLimit = append(uploadLimit, ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
			ErrorHandler: errorHandler,
			KeyFunc:      keyFunc,
		}))
	}

	router.GET("/", projectsHandler.Show)

	dashboardRoutes := router.Group("/dashboard/:project")
	dashboardRoutes.Use(ProjectLoader(board.Catalog(), handlers.ProjectNotFound))
	{
		dashboardRoutes.GET("", dashboardHandler.Show)
		dashboardRoutes.POST("/upload", append(uploadLimit, dashboardHandler.Upload)...)
		dashboardRoutes.GET("/clock", dashboardHandler.Clock)
		dashboardRoutes.GET("/chart.png", dashboardHandler.ChartPNG)
	}

	api := router.Group("/api")
	{
		api.GET("/projects", apiHandler.Projects)
		api.GET("/projects/:project/metrics", ProjectLoader(board.Catalog(), handlers.ProjectNotFoundJSON), apiHandler.Metrics)
	}

	return router
}
