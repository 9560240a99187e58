package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/blogfeed/backend/internal/auth"
	"github.com/emilythestrangee/blogfeed/backend/internal/logger"
)

const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
)

// OptionalAuth identifies the caller from an "Authorization: Bearer" header.
// Missing or invalid tokens leave the request anonymous.
func OptionalAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.Next()
			return
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			logger.Log.WithError(err).Debug("ignoring invalid token")
			c.Next()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// AuthMiddleware sends anonymous callers to loginURL, remembering where they
// were going in the "next" query parameter.
func AuthMiddleware(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUserID(c); ok {
			c.Next()
			return
		}

		target := loginURL + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// CurrentUserID returns the authenticated user's id, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := raw.(uint)
	return id, ok && id != 0
}
