package sync

import (
	"strings"
	"time"
)

// EventPayload is the subset of a Facebook Graph API event we consume.
// Field names follow the Graph API; anything beyond title, description,
// times and the cover photo is optional.
type EventPayload struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	Place       *PlacePayload `json:"place,omitempty"`
	Cover       *CoverPayload `json:"cover,omitempty"`
}

type PlacePayload struct {
	Name     string           `json:"name"`
	Location *LocationPayload `json:"location,omitempty"`
}

type LocationPayload struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type CoverPayload struct {
	Source string `json:"source"`
}

// EventURL reconstructs the public Facebook URL for the event.
func (p EventPayload) EventURL() string {
	if p.ID == "" {
		return ""
	}
	return "https://www.facebook.com/events/" + p.ID
}

// PlaceString flattens the place block into a single display string.
func (p EventPayload) PlaceString() string {
	if p.Place == nil {
		return ""
	}
	parts := []string{}
	if p.Place.Name != "" {
		parts = append(parts, p.Place.Name)
	}
	if loc := p.Place.Location; loc != nil {
		if loc.Street != "" {
			parts = append(parts, loc.Street)
		}
		if loc.City != "" {
			parts = append(parts, loc.City)
		}
	}
	return strings.Join(parts, ", ")
}

// Facebook serializes event times as ISO 8601 with a numeric offset and no
// colon ("2026-03-15T19:00:00+0100"); all-day events carry a bare date.
var facebookTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseFacebookTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range facebookTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
