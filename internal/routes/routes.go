package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/handlers"
	"taskdeck/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	taskHandler *handlers.TaskHandler,
	wsHandler *handlers.WSHandler,
) *gin.Engine {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// realtime channel authenticates in-band
	r.GET("/ws", wsHandler.Serve)

	r.Use(middleware.AuthMiddleware(jwtSecret))

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/password-reset", authHandler.RequestPasswordReset)
		auth.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)
	}

	tasks := r.Group("/api/tasks")
	{
		tasks.POST("", taskHandler.Create)
		tasks.GET("", taskHandler.List)
		tasks.PATCH("/reorder", taskHandler.Reorder)
		tasks.PATCH("/:id", taskHandler.UpdateStatus)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	return r
}
