// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"taskline-service/internal/pkg/response"
	"taskline-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	authService *auth.AuthService
}

func NewAuthMiddleware(authService *auth.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Auth validates the bearer access token and stores the authenticated
// subject on the request context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, userID, err := m.authService.ValidateAccessToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		c.Set("user_id", userID)
		c.Set("email", claims.Email)
		c.Set("jti", claims.ID)

		c.Next()
	}
}

// extractToken pulls the bearer token from the Authorization header.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
