package main

import (
	"context"
	"net/http"
	"time"

	"github.com/artsmartiaux/association-go/internal/config"
	"github.com/artsmartiaux/association-go/internal/database"
	"github.com/artsmartiaux/association-go/internal/redis"
	"github.com/artsmartiaux/association-go/internal/services/clubs"
	"github.com/artsmartiaux/association-go/internal/services/content"
	"github.com/artsmartiaux/association-go/internal/services/events"
	"github.com/artsmartiaux/association-go/internal/services/sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database: ", err)
	}

	// Redis is optional: the site works uncached if it is down
	var cache *redis.Client
	if cfg.RedisEnabled {
		cache = redis.NewClient(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cache.Ping(ctx); err != nil {
			logger.WithError(err).Warn("Redis unreachable, running without cache")
			cache = nil
		}
		cancel()
	}

	// Create services
	syncService := sync.NewService(db, logger, cache, cfg)
	eventsService := events.NewService(db, cache)
	clubsService := clubs.NewService(db)
	contentService := content.NewService(db)

	// Setup Gin router
	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Webhook-Secret")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	syncService.SetupRoutes(r)
	eventsService.SetupRoutes(r)
	clubsService.SetupRoutes(r)
	contentService.SetupRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   "association-api",
			"timestamp": time.Now(),
		})
	})

	// Start server
	logger.Infof("Association API starting on port %s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		logger.Fatal("Failed to start server: ", err)
	}
}
