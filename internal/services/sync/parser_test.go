package sync

import (
	"testing"
	"time"

	"github.com/artsmartiaux/association-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEventDataFullDescription(t *testing.T) {
	payload := EventPayload{
		ID:   "123456789",
		Name: "  Stage d'été 2026  ",
		Description: "Venez nombreux !\n" +
			"[SITE]\n" +
			"[CLUB:paris-centre]\n" +
			"[CLUB:lyon-croix-rousse]\n" +
			"[PRIX:Adulte:20]\n" +
			"[PRIX:Enfant:12,50]\n" +
			"[PRIX:Licencié:gratuit]\n" +
			"[DATE:2026-07-04:10:00-12:00:Cours enfants]\n" +
			"[DATE:2026-07-05]\n" +
			"[LIEU:Gymnase Jean Moulin, 4 rue des Lilas, Paris]\n" +
			"[PLACES:40]\n" +
			"[TYPE:stage]\n" +
			"Inscription sur place.",
		StartTime: "2026-07-04T10:00:00+0200",
		EndTime:   "2026-07-05T18:00:00+0200",
		Cover:     &CoverPayload{Source: "https://scontent.example.com/cover.jpg"},
	}

	data := ExtractEventData(payload)

	assert.Equal(t, "Stage d'été 2026", data.Title)
	assert.True(t, data.Tags.ShouldPublish)
	assert.False(t, data.Tags.IsAllClubs)
	assert.Equal(t, []string{"paris-centre", "lyon-croix-rousse"}, data.Tags.ClubSlugs)

	require.Len(t, data.Tags.Prices, 3)
	assert.Equal(t, ParsedPrice{Label: "Adulte", PriceCents: 2000}, data.Tags.Prices[0])
	assert.Equal(t, ParsedPrice{Label: "Enfant", PriceCents: 1250}, data.Tags.Prices[1])
	assert.Equal(t, ParsedPrice{Label: "Licencié", PriceCents: 0}, data.Tags.Prices[2])

	require.Len(t, data.Tags.Sessions, 2)
	assert.Equal(t, time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC), data.Tags.Sessions[0].Date)
	assert.Equal(t, "10:00", data.Tags.Sessions[0].StartTime)
	assert.Equal(t, "12:00", data.Tags.Sessions[0].EndTime)
	assert.Equal(t, "Cours enfants", data.Tags.Sessions[0].Notes)
	assert.Empty(t, data.Tags.Sessions[1].StartTime)

	require.Len(t, data.Tags.Locations, 1)
	assert.Equal(t, "Gymnase Jean Moulin", data.Tags.Locations[0].Name)
	assert.Equal(t, "4 rue des Lilas", data.Tags.Locations[0].Address)
	assert.Equal(t, "Paris", data.Tags.Locations[0].City)

	require.NotNil(t, data.Tags.MaxCapacity)
	assert.Equal(t, 40, *data.Tags.MaxCapacity)
	assert.Equal(t, models.EventTypeStage, data.Tags.EventType)

	assert.Equal(t, "https://scontent.example.com/cover.jpg", data.CoverImageURL)
	assert.Equal(t, 2026, data.StartDate.Year())
	require.NotNil(t, data.EndDate)

	// Tags are stripped, the author's text stays.
	assert.Contains(t, data.Description, "Venez nombreux !")
	assert.Contains(t, data.Description, "Inscription sur place.")
	assert.NotContains(t, data.Description, "[SITE]")
	assert.NotContains(t, data.Description, "[PRIX")
	assert.NotContains(t, data.Description, "[DATE")
}

func TestExtractEventDataNoPublishTag(t *testing.T) {
	data := ExtractEventData(EventPayload{
		ID:          "1",
		Name:        "Entraînement interne",
		Description: "[CLUB:paris-centre] [PRIX:Adulte:20]",
	})

	assert.False(t, data.Tags.ShouldPublish)
	// Other tags still parse; the caller decides whether to act on them.
	assert.Equal(t, []string{"paris-centre"}, data.Tags.ClubSlugs)
}

func TestExtractEventDataMalformedTagsIgnored(t *testing.T) {
	data := ExtractEventData(EventPayload{
		ID:   "1",
		Name: "Test",
		Description: "[SITE] [PRIX:Adulte] [PRIX:Enfant:abc] [PRIX::10] " +
			"[DATE:2026-13-45] [DATE:pas-une-date] [PLACES:beaucoup] [CLUB:] [TYPE:tournoi]",
	})

	assert.True(t, data.Tags.ShouldPublish)
	assert.Empty(t, data.Tags.Prices)
	assert.Empty(t, data.Tags.Sessions)
	assert.Empty(t, data.Tags.ClubSlugs)
	assert.Nil(t, data.Tags.MaxCapacity)
	assert.Empty(t, data.Tags.EventType)
}

func TestExtractEventDataAllClubsFlag(t *testing.T) {
	data := ExtractEventData(EventPayload{
		ID:          "1",
		Name:        "Démonstration de rentrée",
		Description: "[SITE] [TOUS] [TYPE:démonstration]",
	})

	assert.True(t, data.Tags.IsAllClubs)
	assert.Equal(t, models.EventTypeDemonstration, data.Tags.EventType)
}

func TestExtractEventDataLastSingleValuedTagWins(t *testing.T) {
	data := ExtractEventData(EventPayload{
		ID:          "1",
		Name:        "Test",
		Description: "[SITE] [TYPE:stage] [TYPE:competition] [PLACES:10] [PLACES:25]",
	})

	assert.Equal(t, models.EventTypeCompetition, data.Tags.EventType)
	require.NotNil(t, data.Tags.MaxCapacity)
	assert.Equal(t, 25, *data.Tags.MaxCapacity)
}

func TestExtractEventDataUnknownBracketsPreserved(t *testing.T) {
	data := ExtractEventData(EventPayload{
		ID:          "1",
		Name:        "Test",
		Description: "[SITE] Programme: [à confirmer]",
	})

	assert.Contains(t, data.Description, "[à confirmer]")
	assert.NotContains(t, data.Description, "[SITE]")
}

func TestExtractEventDataDuplicateClubSlugs(t *testing.T) {
	data := ExtractEventData(EventPayload{
		ID:          "1",
		Name:        "Test",
		Description: "[SITE] [CLUB:paris-centre] [CLUB:PARIS-CENTRE]",
	})

	assert.Equal(t, []string{"paris-centre"}, data.Tags.ClubSlugs)
}

func TestExtractEventDataLocationFallback(t *testing.T) {
	// Place block wins over LIEU tags for the legacy location field.
	withPlace := ExtractEventData(EventPayload{
		ID:          "1",
		Name:        "Test",
		Description: "[SITE] [LIEU:Gymnase Voltaire, Lyon]",
		Place: &PlacePayload{
			Name:     "Dojo de la Croix-Rousse",
			Location: &LocationPayload{Street: "8 place des Tapis", City: "Lyon"},
		},
	})
	assert.Equal(t, "Dojo de la Croix-Rousse, 8 place des Tapis, Lyon", withPlace.Location)

	withoutPlace := ExtractEventData(EventPayload{
		ID:          "1",
		Name:        "Test",
		Description: "[SITE] [LIEU:Gymnase Voltaire, Lyon]",
	})
	assert.Equal(t, "Gymnase Voltaire, Lyon", withoutPlace.Location)
}

func TestParseFacebookTime(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2026-03-15T19:00:00+0100", true},
		{"2026-03-15T19:00:00Z", true},
		{"2026-03-15", true},
		{"", false},
		{"next tuesday", false},
	}
	for _, tt := range tests {
		_, ok := parseFacebookTime(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
	}
}

func TestParsePriceAmount(t *testing.T) {
	tests := []struct {
		in    string
		cents int
		ok    bool
	}{
		{"20", 2000, true},
		{"12,50", 1250, true},
		{"12.50", 1250, true},
		{"20 €", 2000, true},
		{"15 eur", 1500, true},
		{"gratuit", 0, true},
		{"free", 0, true},
		{"0", 0, true},
		{"-5", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		cents, ok := parsePriceAmount(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.cents, cents, "input %q", tt.in)
		}
	}
}
