package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"back/controllers"
	"back/metrics"
	"back/middlewares"
)

// Deps are the constructed handlers the router wires up.
type Deps struct {
	Chat          *controllers.ChatController
	Conversations *controllers.ConversationController
	Extract       *controllers.ExtractController
	Files         *controllers.FileController
	Search        *controllers.SearchController
	Metrics       *metrics.Metrics
}

// SetupRouter builds the gin engine with all routes and middleware.
func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.Logger())
	r.Use(d.Metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/chat/completions", d.Chat.ChatCompletions)
		api.POST("/items/extract", d.Extract.ExtractItems)
		api.POST("/files/parse", d.Files.ParseFiles)
		api.POST("/search", d.Search.Search)

		api.POST("/conversations/sync", d.Conversations.Sync)
		api.GET("/conversations", d.Conversations.List)
		api.GET("/conversations/:id/messages", d.Conversations.Messages)
		api.DELETE("/conversations/:id", d.Conversations.Delete)
		api.POST("/conversations/:id/rename", d.Conversations.Rename)
		api.POST("/conversations/:id/pin", d.Conversations.Pin)
	}

	return r
}

// corsMiddleware allows the frontend to call from a different origin in
// development.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
