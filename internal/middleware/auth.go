package middleware

import (
	"strings"

	pkgAuth "teenpatti-service/pkg/auth"

	"github.com/gin-gonic/gin"
)

const ContextSessionIDKey = "sessionID"

// SessionOptional resolves a resumable session from ?token= or a Bearer
// header. Requests without a valid token pass through as new sessions.
func SessionOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token != "" {
			if claims, err := pkgAuth.ParseSessionToken(token); err == nil {
				c.Set(ContextSessionIDKey, claims.SessionID)
			}
		}
		c.Next()
	}
}

// SessionID returns the session resolved by SessionOptional, if any.
func SessionID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextSessionIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func tokenFromRequest(c *gin.Context) string {
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return token
	}
	return extractBearerToken(c.GetHeader("Authorization"))
}

func extractBearerToken(authHeader string) string {
	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
