package events_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/artsmartiaux/association-go/internal/models"
	"github.com/artsmartiaux/association-go/internal/services/events"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	r := gin.New()
	events.NewService(db, nil).SetupRoutes(r)
	return r, db
}

func seedEvents(t *testing.T, db *gorm.DB) {
	t.Helper()

	club := models.Club{Slug: "paris-centre", Name: "Arts Martiaux Paris Centre", Active: true}
	require.NoError(t, db.Create(&club).Error)

	stage := models.Event{
		Slug:      "stage-d-ete",
		Title:     "Stage d'été",
		EventType: models.EventTypeStage,
		StartDate: time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC),
		ClubID:    &club.ID,
		Active:    true,
	}
	require.NoError(t, db.Create(&stage).Error)
	require.NoError(t, db.Create(&models.EventPrice{EventID: stage.ID, Label: "Adulte", PriceCents: 2000, Currency: "EUR"}).Error)
	require.NoError(t, db.Create(&models.EventSession{EventID: stage.ID, SessionDate: stage.StartDate, Status: models.SessionStatusScheduled}).Error)

	competition := models.Event{
		Slug:      "competition-regionale",
		Title:     "Compétition régionale",
		EventType: models.EventTypeCompetition,
		StartDate: time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC),
		Active:    true,
	}
	require.NoError(t, db.Create(&competition).Error)

	hidden := models.Event{
		Slug:      "ancien-stage",
		Title:     "Ancien stage",
		EventType: models.EventTypeStage,
		StartDate: time.Date(2024, 7, 4, 10, 0, 0, 0, time.UTC),
		Active:    false,
	}
	require.NoError(t, db.Create(&hidden).Error)
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListEvents(t *testing.T) {
	r, db := setup(t)
	seedEvents(t, db)

	w := get(r, "/events")
	require.Equal(t, http.StatusOK, w.Code)

	var listed []models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 2) // inactive events are hidden
	assert.Equal(t, "stage-d-ete", listed[0].Slug)
	assert.Equal(t, "competition-regionale", listed[1].Slug)
}

func TestListEventsFilterByType(t *testing.T) {
	r, db := setup(t)
	seedEvents(t, db)

	w := get(r, "/events?type=competition")
	require.Equal(t, http.StatusOK, w.Code)

	var listed []models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "competition-regionale", listed[0].Slug)
}

func TestGetEvent(t *testing.T) {
	r, db := setup(t)
	seedEvents(t, db)

	w := get(r, "/events/stage-d-ete")
	require.Equal(t, http.StatusOK, w.Code)

	var event models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	assert.Equal(t, "Stage d'été", event.Title)
	require.Len(t, event.Prices, 1)
	assert.Equal(t, 2000, event.Prices[0].PriceCents)
	require.Len(t, event.Sessions, 1)
	require.NotNil(t, event.Club)
	assert.Equal(t, "paris-centre", event.Club.Slug)
}

func TestGetEventNotFound(t *testing.T) {
	r, db := setup(t)
	seedEvents(t, db)

	assert.Equal(t, http.StatusNotFound, get(r, "/events/nope").Code)
	// Inactive events are not served either.
	assert.Equal(t, http.StatusNotFound, get(r, "/events/ancien-stage").Code)
}
