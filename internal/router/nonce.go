package router

import (
	"errors"
	"net/http"

	"qa-dashboard/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CspNonceContextKey = "csp_nonce"

// NonceMiddleware keeps one CSP nonce per session and exposes it to
// handlers and templates.
func NonceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		nonce, _ := session.Get(CspNonceContextKey).(string)
		if nonce == "" {
			var err error
			nonce, err = utils.GenerateSecureToken(32)
			if err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to generate CSP nonce"))
				return
			}
			session.Set(CspNonceContextKey, nonce)
			if err := session.Save(); err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to save session"))
				return
			}
		}

		c.Set(CspNonceContextKey, nonce)
		c.Next()
	}
}

// ContentSecurityPolicy sets the CSP header on full page loads.
func ContentSecurityPolicy() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("HX-Request") != "true" {
			c.Header("Content-Security-Policy", cspFor(c.GetString(CspNonceContextKey)))
		}
		c.Next()
	}
}

func cspFor(nonce string) string {
	return "default-src 'self'; " +
		"script-src 'self' https://unpkg.com https://cdn.jsdelivr.net 'nonce-" + nonce + "'; " +
		"style-src 'self' https://fonts.googleapis.com 'unsafe-inline'; " +
		"font-src 'self' https://fonts.gstatic.com; " +
		"img-src 'self' data:"
}
