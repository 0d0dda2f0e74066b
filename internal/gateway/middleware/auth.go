package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cafe-pos/internal/utils"
)

const (
	SessionCookie = "pos_session"

	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

func abortJSON(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   code,
	})
}

func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// JWTAuth accepts a bearer token or the session cookie and stores the
// caller's id, email and role on the context.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			abortJSON(c, http.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "Invalid or expired session", "UNAUTHORIZED")
			return
		}

		c.Set(ContextUserID, claims.UserId)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRole must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		abortJSON(c, http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")
	}
}
