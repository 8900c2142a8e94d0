package content

import (
	"net/http"

	"github.com/artsmartiaux/association-go/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Service serves the editorial content of the site: blog posts, FAQ entries
// and public site settings. Writes happen in the back office, out of scope
// here.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) SetupRoutes(r *gin.Engine) {
	r.GET("/blog", s.ListPosts)
	r.GET("/blog/:slug", s.GetPost)
	r.GET("/faq", s.ListFAQ)
	r.GET("/settings", s.GetSettings)
}

func (s *Service) ListPosts(c *gin.Context) {
	var posts []models.BlogPost
	if err := s.db.Where("published = ?", true).
		Order("published_at DESC").
		Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch posts",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (s *Service) GetPost(c *gin.Context) {
	slug := c.Param("slug")

	var post models.BlogPost
	if err := s.db.Where("slug = ? AND published = ?", slug, true).First(&post).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Post not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch post",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, post)
}

func (s *Service) ListFAQ(c *gin.Context) {
	var items []models.FAQItem
	if err := s.db.Where("published = ?", true).
		Order("display_order ASC").
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch FAQ",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetSettings returns the public settings as a flat key/value object.
func (s *Service) GetSettings(c *gin.Context) {
	var settings []models.SiteSetting
	if err := s.db.Where("public = ?", true).Find(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch settings",
			"details": err.Error(),
		})
		return
	}

	values := make(map[string]string, len(settings))
	for _, setting := range settings {
		values[setting.Key] = setting.Value
	}
	c.JSON(http.StatusOK, values)
}
