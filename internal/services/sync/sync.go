package sync

import (
	"crypto/subtle"
	"net/http"

	"github.com/artsmartiaux/association-go/internal/auth"
	"github.com/artsmartiaux/association-go/internal/config"
	"github.com/artsmartiaux/association-go/internal/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service exposes the synchronizer over HTTP: webhook-style endpoints for
// the Facebook integration plus an admin endpoint to pull an event from the
// site.
type Service struct {
	syncer *Syncer
	config *config.Config
}

func NewService(db *gorm.DB, logger *logrus.Logger, cache *redis.Client, cfg *config.Config) *Service {
	return &Service{
		syncer: NewSyncer(db, logger, cache, cfg.SyncStrictMode),
		config: cfg,
	}
}

// Syncer returns the underlying pipeline, for callers that bypass HTTP
// (the import command).
func (s *Service) Syncer() *Syncer {
	return s.syncer
}

func (s *Service) SetupRoutes(r *gin.Engine) {
	fb := r.Group("/sync/facebook")
	fb.Use(s.WebhookAuthMiddleware())
	{
		fb.POST("", s.SyncSingle)
		fb.POST("/batch", s.SyncBatch)
	}

	admin := r.Group("/admin")
	admin.Use(auth.Middleware(s.config))
	{
		admin.POST("/events/:externalId/deactivate", s.Deactivate)
	}
}

// WebhookAuthMiddleware checks the shared secret sent by the integration.
// With no secret configured (local development) the check is skipped.
func (s *Service) WebhookAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := s.config.FacebookWebhookSecret
		if secret == "" {
			c.Next()
			return
		}

		provided := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid webhook secret",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Service) SyncSingle(c *gin.Context) {
	var payload EventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid event payload",
			"details": err.Error(),
		})
		return
	}

	if payload.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing event id",
		})
		return
	}

	result := s.syncer.SyncEvent(c.Request.Context(), payload)
	if !result.Success {
		c.JSON(http.StatusInternalServerError, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Service) SyncBatch(c *gin.Context) {
	var req struct {
		Events []EventPayload `json:"events" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid batch payload",
			"details": err.Error(),
		})
		return
	}

	result := s.syncer.SyncMany(c.Request.Context(), req.Events)
	c.JSON(http.StatusOK, result)
}

func (s *Service) Deactivate(c *gin.Context) {
	externalID := c.Param("externalId")
	result := s.syncer.DeactivateEvent(c.Request.Context(), externalID)
	if !result.Success {
		c.JSON(http.StatusNotFound, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
