package clubs

import (
	"net/http"

	"github.com/artsmartiaux/association-go/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) SetupRoutes(r *gin.Engine) {
	r.GET("/clubs", s.ListClubs)
	r.GET("/clubs/:slug", s.GetClub)
}

func (s *Service) ListClubs(c *gin.Context) {
	var clubs []models.Club
	if err := s.db.Where("active = ?", true).Order("name ASC").Find(&clubs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch clubs",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, clubs)
}

// GetClub returns one club with the active events concerning it: events
// flagged for all clubs, events with this club as their main club, and
// events linked through event_clubs.
func (s *Service) GetClub(c *gin.Context) {
	slug := c.Param("slug")

	var club models.Club
	if err := s.db.Where("slug = ? AND active = ?", slug, true).First(&club).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Club not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch club",
			"details": err.Error(),
		})
		return
	}

	linked := s.db.Table("event_clubs").Select("event_id").Where("club_id = ?", club.ID)
	var events []models.Event
	if err := s.db.Where("active = ?", true).
		Where("is_all_clubs = ? OR club_id = ? OR id IN (?)", true, club.ID, linked).
		Order("start_date ASC").
		Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch club events",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"club":   club,
		"events": events,
	})
}
