// internal/app/router.go
package app

import (
	authHandler "taskline-service/internal/handlers/auth"
	"taskline-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/sign-up", h.AuthHandler.SignUp)
		authPublic.POST("/sign-in", h.AuthHandler.SignIn)
		authPublic.POST("/google", h.AuthHandler.GoogleSignIn)
		authPublic.POST("/refresh", h.AuthHandler.Refresh)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/me", h.AuthHandler.Me)
	}
}
