package events

import (
	"fmt"
	"net/http"
	"time"

	"github.com/artsmartiaux/association-go/internal/models"
	"github.com/artsmartiaux/association-go/internal/redis"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Service serves the public event pages of the site. Listings are cached in
// Redis and invalidated by the synchronizer after every import.
type Service struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewService(db *gorm.DB, cache *redis.Client) *Service {
	return &Service{db: db, cache: cache}
}

func (s *Service) SetupRoutes(r *gin.Engine) {
	r.GET("/events", s.ListEvents)
	r.GET("/events/:slug", s.GetEvent)
}

func (s *Service) ListEvents(c *gin.Context) {
	eventType := c.Query("type")
	upcoming := c.DefaultQuery("upcoming", "false")

	cacheKey := fmt.Sprintf("events:list:%s:%s", eventType, upcoming)
	var events []models.Event
	if s.cache.GetJSON(c.Request.Context(), cacheKey, &events) {
		c.JSON(http.StatusOK, events)
		return
	}

	query := s.db.Where("active = ?", true).
		Preload("Club").
		Preload("Prices", func(db *gorm.DB) *gorm.DB { return db.Order("display_order ASC") }).
		Preload("Clubs").
		Order("start_date ASC")
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	if upcoming == "true" {
		query = query.Where("start_date >= ?", time.Now())
	}

	if err := query.Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch events",
			"details": err.Error(),
		})
		return
	}

	s.cache.SetJSON(c.Request.Context(), cacheKey, events)
	c.JSON(http.StatusOK, events)
}

func (s *Service) GetEvent(c *gin.Context) {
	slug := c.Param("slug")

	var event models.Event
	err := s.db.Where("slug = ? AND active = ?", slug, true).
		Preload("Club").
		Preload("Clubs").
		Preload("Sessions", func(db *gorm.DB) *gorm.DB { return db.Order("session_date ASC") }).
		Preload("Prices", func(db *gorm.DB) *gorm.DB { return db.Order("display_order ASC") }).
		Preload("Locations", func(db *gorm.DB) *gorm.DB { return db.Order("display_order ASC") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("display_order ASC") }).
		First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Event not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch event",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, event)
}
