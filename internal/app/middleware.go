package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/middleware"
)

func middlewareStack() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		middleware.RequestLogger(),
		corsMiddleware(),
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
