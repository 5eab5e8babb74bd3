package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Appesteijn/stooklijn/internal/config"
	"github.com/Appesteijn/stooklijn/internal/handler"
	"github.com/Appesteijn/stooklijn/internal/middleware"
)

// Handlers bundles the handlers the router wires up.
type Handlers struct {
	Analysis *handler.AnalysisHandler
	Sample   *handler.SampleHandler
	Cache    *handler.CacheHandler
}

// SetupRouter builds the gin engine with all routes and middleware.
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Stooklijn API is running",
		})
	})

	auth := middleware.Auth(cfg.JWTSecret)

	api := r.Group("/api/v1")
	{
		analysis := api.Group("/analysis")
		{
			// A run fetches a month of data and fits several models;
			// one request per minute per client is plenty.
			analysis.POST("/run", auth, middleware.RateLimit(1, time.Minute), h.Analysis.StartRun)
			analysis.GET("/runs/:id", h.Analysis.GetRun)
			analysis.GET("/latest", h.Analysis.Latest)
		}

		results := api.Group("/results")
		{
			results.GET("/stooklijn", h.Analysis.Stooklijn)
			results.GET("/heat-loss", h.Analysis.HeatLoss)
		}

		api.POST("/samples", auth, h.Sample.Ingest)

		cache := api.Group("/cache")
		{
			cache.GET("/stats", h.Cache.Stats)
			cache.POST("/cleanup", auth, h.Cache.Cleanup)
		}
	}

	return r
}
