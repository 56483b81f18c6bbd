package router

import (
	"errors"
	"net/http"

	"qa-dashboard/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Define keys for storing the token in the session and context.
const (
	csrfTokenSessionKey = "csrf_token"
	csrfTokenFormKey    = "_csrf"
	CSRFTokenContextKey = "csrf_token"
	csrfTokenHeaderKey  = "X-CSRF-Token"
)

// CSRFProtection issues a per-session token and checks it on unsafe methods.
func CSRFProtection() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		token, _ := session.Get(csrfTokenSessionKey).(string)
		if token == "" {
			newToken, err := utils.GenerateSecureToken(32)
			if err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to generate CSRF token"))
				return
			}
			token = newToken
			session.Set(csrfTokenSessionKey, token)
			if err := session.Save(); err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to save session"))
				return
			}
		}

		c.Set(CSRFTokenContextKey, token)

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		// Header first: reading the form consumes the body.
		submitted := c.GetHeader(csrfTokenHeaderKey)
		if submitted == "" {
			submitted = c.PostForm(csrfTokenFormKey)
		}

		if submitted == "" || submitted != token {
			if c.GetHeader("HX-Request") == "true" {
				c.Header("HX-Redirect", "/")
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.AbortWithError(http.StatusForbidden, errors.New("invalid CSRF token"))
			return
		}

		c.Next()
	}
}
