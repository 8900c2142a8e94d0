package sync

import (
	"testing"

	"github.com/artsmartiaux/association-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Stage d'été 2026", "stage-d-ete-2026"},
		{"Compétition régionale — Lyon", "competition-regionale-lyon"},
		{"  Démonstration!!  ", "demonstration"},
		{"çà et là", "ca-et-la"},
		{"???", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}

func TestGenerateUniqueEventSlug(t *testing.T) {
	db := newTestDB(t)

	// Free base slug.
	slug, err := generateUniqueEventSlug(db, "Stage d'été", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "stage-d-ete", slug)

	require.NoError(t, db.Create(&models.Event{Slug: "stage-d-ete", Title: "Stage d'été", Active: true}).Error)

	// Same title for a different event gets a numeric suffix.
	slug, err = generateUniqueEventSlug(db, "Stage d'été", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "stage-d-ete-2", slug)

	require.NoError(t, db.Create(&models.Event{Slug: "stage-d-ete-2", Title: "Stage d'été", Active: true}).Error)

	slug, err = generateUniqueEventSlug(db, "Stage d'été", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "stage-d-ete-3", slug)
}

func TestGenerateUniqueEventSlugStability(t *testing.T) {
	db := newTestDB(t)

	event := models.Event{Slug: "stage-d-ete-2", Title: "Stage d'été", Active: true}
	require.NoError(t, db.Create(&models.Event{Slug: "stage-d-ete", Title: "Stage d'été", Active: true}).Error)
	require.NoError(t, db.Create(&event).Error)

	// Unchanged title keeps the suffixed slug the event already owns.
	slug, err := generateUniqueEventSlug(db, "Stage d'été", event.Slug, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "stage-d-ete-2", slug)

	// A changed title regenerates, excluding the event itself from the
	// collision check.
	slug, err = generateUniqueEventSlug(db, "Stage d'hiver", event.Slug, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "stage-d-hiver", slug)
}

func TestGenerateUniqueEventSlugEmptyTitle(t *testing.T) {
	db := newTestDB(t)

	slug, err := generateUniqueEventSlug(db, "???", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "evenement", slug)
}
