package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"file-vault-api/internal/application/ports"
)

const (
	CtxUserID = "userID"
	CtxToken  = "sessionToken"
)

// AuthMiddleware resolves the Bearer token through the credential cache. A
// missing, malformed or expired token always maps to 401.
func AuthMiddleware(authService ports.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "missing Authorization header"},
			)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token format"},
			)
			return
		}

		userID, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid or expired token"},
			)
			return
		}

		c.Set(CtxUserID, userID.String())
		c.Set(CtxToken, token)

		c.Next()
	}
}
