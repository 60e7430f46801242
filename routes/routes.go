package routes

import (
	"support-backend-go/controllers"
	"support-backend-go/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all application routes
func SetupRoutes(r *gin.Engine) {

	// Authentication routes
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", controllers.Login)                                        // Login user
		authGroup.POST("/logout", middleware.AuthMiddleware(), controllers.Logout)         // Logout user
		authGroup.GET("/current", middleware.AuthMiddleware(), controllers.GetCurrentUser) // Current user info
	}

	// Rewrite and per-session history
	chatGroup := r.Group("/")
	chatGroup.Use(middleware.AuthMiddleware())
	{
		chatGroup.POST("/rewrite", controllers.RewriteHandler)
		chatGroup.GET("/history", controllers.GetHistory)
		chatGroup.DELETE("/history", controllers.ClearHistory)
	}

	// Operator views
	admin := r.Group("/admin", middleware.AuthMiddleware())
	{
		admin.GET("/metrics", controllers.GetAdminMetricsHandler)
		admin.GET("/users", controllers.ListUsersHandler)
	}
}
