package models

import (
	"time"

	"gorm.io/gorm"
)

// Event types accepted by the [TYPE:...] tag and stored on Event.EventType.
const (
	EventTypeCompetition   = "competition"
	EventTypeStage         = "stage"
	EventTypeDemonstration = "demonstration"
	EventTypeSeminar       = "seminar"
	EventTypeOther         = "other"
)

// Session statuses.
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusCancelled = "cancelled"
	SessionStatusCompleted = "completed"
)

type Club struct {
	gorm.Model
	Slug        string `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"not null"`
	City        string
	Address     string
	Email       string
	Phone       string
	Description string
	Active      bool `gorm:"default:true"`
}

type Event struct {
	gorm.Model
	Slug          string `gorm:"uniqueIndex;not null"`
	Title         string `gorm:"not null"`
	Description   string `gorm:"type:text"`
	EventType     string `gorm:"default:'other'"`
	StartDate     time.Time
	EndDate       *time.Time
	Location      string
	MaxAttendees  *int
	CoverImageURL string

	// Legacy single-valued fields kept for consumers that predate the
	// multi-price / multi-club model. Derived as "first of the list".
	PriceCents int
	ClubID     *uint
	IsAllClubs bool

	// Link back to the originating Facebook event. FacebookEventID is the
	// idempotency key across re-imports; nil for manually created events.
	FacebookEventID    *string `gorm:"uniqueIndex"`
	FacebookURL        string
	SyncedFromFacebook bool
	RawPayload         string `gorm:"type:text"`
	LastSyncedAt       *time.Time

	Active bool `gorm:"default:true"`

	// Relationships
	Club      *Club           `gorm:"foreignKey:ClubID"`
	Sessions  []EventSession  `gorm:"foreignKey:EventID"`
	Prices    []EventPrice    `gorm:"foreignKey:EventID"`
	Locations []EventLocation `gorm:"foreignKey:EventID"`
	Images    []EventImage    `gorm:"foreignKey:EventID"`
	Clubs     []Club          `gorm:"many2many:event_clubs"`
}

type EventSession struct {
	gorm.Model
	EventID     uint      `gorm:"not null;index"`
	SessionDate time.Time `gorm:"not null"`
	StartTime   string
	EndTime     string
	Notes       string
	Status      string `gorm:"default:'scheduled'"`
}

type EventPrice struct {
	gorm.Model
	EventID      uint   `gorm:"not null;index"`
	Label        string `gorm:"not null"`
	PriceCents   int
	Currency     string `gorm:"default:'EUR'"`
	DisplayOrder int
}

type EventLocation struct {
	gorm.Model
	EventID      uint `gorm:"not null;index"`
	Name         string
	Address      string
	City         string
	Country      string
	IsPrimary    bool
	DisplayOrder int
}

type EventImage struct {
	gorm.Model
	EventID      uint   `gorm:"not null;index"`
	ImageURL     string `gorm:"not null"`
	Title        string
	AltText      string
	IsCover      bool
	DisplayOrder int
}

// EventClub is the event <-> club join row. The synchronizer manages these
// rows directly (delete all, re-insert) instead of going through the gorm
// association API; Event.Clubs reads the same table for preloads.
type EventClub struct {
	EventID uint `gorm:"primaryKey"`
	ClubID  uint `gorm:"primaryKey"`
}

func (EventClub) TableName() string {
	return "event_clubs"
}

type BlogPost struct {
	gorm.Model
	Slug          string `gorm:"uniqueIndex;not null"`
	Title         string `gorm:"not null"`
	Excerpt       string
	Content       string `gorm:"type:text"`
	CoverImageURL string
	Published     bool
	PublishedAt   *time.Time
}

type FAQItem struct {
	gorm.Model
	Question     string `gorm:"not null"`
	Answer       string `gorm:"type:text"`
	Category     string
	DisplayOrder int
	Published    bool `gorm:"default:true"`
}

// SiteSetting is a key/value row edited from the back office. Only rows with
// Public=true are exposed on the public settings endpoint.
type SiteSetting struct {
	gorm.Model
	Key    string `gorm:"uniqueIndex;not null"`
	Value  string `gorm:"type:text"`
	Public bool
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Club{},
		&Event{},
		&EventSession{},
		&EventPrice{},
		&EventLocation{},
		&EventImage{},
		&BlogPost{},
		&FAQItem{},
		&SiteSetting{},
	)
}
