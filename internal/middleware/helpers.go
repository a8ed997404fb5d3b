// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetUserID gets the authenticated user id from context.
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}

	id, ok := v.(int64)
	return id, ok
}

// MustGetUserID gets the authenticated user id from context or panics.
// Only valid behind the Auth middleware.
func MustGetUserID(c *gin.Context) int64 {
	id, exists := GetUserID(c)
	if !exists {
		panic("user_id not found in context")
	}
	return id
}

// IsAuthenticated checks if request is authenticated.
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("user_id")
	return exists
}
