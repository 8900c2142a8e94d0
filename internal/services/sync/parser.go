package sync

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/artsmartiaux/association-go/internal/models"
)

// The description of a Facebook event can carry bracketed tags that control
// how the event is published on the site:
//
//	[SITE]                              publish to the website
//	[TOUS]                              event concerns every club
//	[CLUB:paris-centre]                 attach a club (repeatable)
//	[PRIX:Adulte:20]                    price tier (repeatable, euros)
//	[DATE:2026-03-15:10:00-12:00:note]  session (repeatable, times/note optional)
//	[LIEU:Gymnase Jean Moulin, Paris]   venue (repeatable)
//	[PLACES:40]                         capacity
//	[TYPE:stage]                        event type
//
// Unknown or malformed tags never fail the parse; they simply produce no
// data. Repeatable tags accumulate in order of appearance, which later
// becomes display_order. When a single-valued tag appears twice, the last
// occurrence wins.
var (
	siteTagRe   = regexp.MustCompile(`(?i)\[SITE\]`)
	tousTagRe   = regexp.MustCompile(`(?i)\[TOUS\]`)
	clubTagRe   = regexp.MustCompile(`(?i)\[CLUB:([a-z0-9][a-z0-9-]*)\]`)
	prixTagRe   = regexp.MustCompile(`(?i)\[PRIX:([^:\[\]]+):([^:\[\]]+)\]`)
	dateTagRe   = regexp.MustCompile(`(?i)\[DATE:(\d{4}-\d{2}-\d{2})(?::(\d{1,2}:\d{2})-(\d{1,2}:\d{2}))?(?::([^\[\]]+))?\]`)
	lieuTagRe   = regexp.MustCompile(`(?i)\[LIEU:([^\[\]]+)\]`)
	placesTagRe = regexp.MustCompile(`(?i)\[PLACES:(\d+)\]`)
	typeTagRe   = regexp.MustCompile(`(?i)\[TYPE:([^\[\]]+)\]`)
)

type ParsedPrice struct {
	Label      string
	PriceCents int
}

type ParsedSession struct {
	Date      time.Time
	StartTime string
	EndTime   string
	Notes     string
}

type ParsedLocation struct {
	Raw     string
	Name    string
	Address string
	City    string
}

type ParsedTags struct {
	ShouldPublish bool
	IsAllClubs    bool
	ClubSlugs     []string
	Prices        []ParsedPrice
	Sessions      []ParsedSession
	Locations     []ParsedLocation
	MaxCapacity   *int
	EventType     string
}

// EventData is the normalized form of one Facebook event payload, ready for
// the synchronizer.
type EventData struct {
	Title         string
	Description   string
	StartDate     time.Time
	EndDate       *time.Time
	Location      string
	CoverImageURL string
	Tags          ParsedTags
}

// ExtractEventData parses the payload's description tags and normalizes the
// remaining fields. It never fails: garbled tags degrade to "no tag
// extracted" so the parts that did parse still get imported.
func ExtractEventData(p EventPayload) EventData {
	desc := p.Description
	tags := ParsedTags{
		ShouldPublish: siteTagRe.MatchString(desc),
		IsAllClubs:    tousTagRe.MatchString(desc),
	}

	seen := map[string]bool{}
	for _, m := range clubTagRe.FindAllStringSubmatch(desc, -1) {
		slug := strings.ToLower(m[1])
		if !seen[slug] {
			seen[slug] = true
			tags.ClubSlugs = append(tags.ClubSlugs, slug)
		}
	}

	for _, m := range prixTagRe.FindAllStringSubmatch(desc, -1) {
		label := strings.TrimSpace(m[1])
		cents, ok := parsePriceAmount(m[2])
		if label == "" || !ok {
			continue
		}
		tags.Prices = append(tags.Prices, ParsedPrice{Label: label, PriceCents: cents})
	}

	for _, m := range dateTagRe.FindAllStringSubmatch(desc, -1) {
		date, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			continue
		}
		tags.Sessions = append(tags.Sessions, ParsedSession{
			Date:      date,
			StartTime: m[2],
			EndTime:   m[3],
			Notes:     strings.TrimSpace(m[4]),
		})
	}

	for _, m := range lieuTagRe.FindAllStringSubmatch(desc, -1) {
		raw := strings.TrimSpace(m[1])
		if raw == "" {
			continue
		}
		tags.Locations = append(tags.Locations, parseLocation(raw))
	}

	// Single-valued tags: last occurrence wins.
	if matches := placesTagRe.FindAllStringSubmatch(desc, -1); len(matches) > 0 {
		if n, err := strconv.Atoi(matches[len(matches)-1][1]); err == nil && n > 0 {
			tags.MaxCapacity = &n
		}
	}
	for _, m := range typeTagRe.FindAllStringSubmatch(desc, -1) {
		if t := normalizeEventType(m[1]); t != "" {
			tags.EventType = t
		}
	}

	data := EventData{
		Title:       strings.TrimSpace(p.Name),
		Description: stripTags(desc),
		Tags:        tags,
	}

	if start, ok := parseFacebookTime(p.StartTime); ok {
		data.StartDate = start
	}
	if end, ok := parseFacebookTime(p.EndTime); ok {
		data.EndDate = &end
	}

	data.Location = p.PlaceString()
	if data.Location == "" && len(tags.Locations) > 0 {
		data.Location = tags.Locations[0].Raw
	}
	if p.Cover != nil {
		data.CoverImageURL = strings.TrimSpace(p.Cover.Source)
	}

	return data
}

// parsePriceAmount converts a tag amount in whole euros to cents. "gratuit",
// "free" and 0 are valid and mean a free tier, distinct from "no tag".
func parsePriceAmount(raw string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "gratuit", "offert", "free":
		return 0, true
	}
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSuffix(s, "eur")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil || amount < 0 {
		return 0, false
	}
	return int(math.Round(amount * 100)), true
}

// parseLocation splits a [LIEU:...] value on commas: "name", "name, city" or
// "name, address..., city".
func parseLocation(raw string) ParsedLocation {
	loc := ParsedLocation{Raw: raw}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch len(parts) {
	case 1:
		loc.Name = parts[0]
	case 2:
		loc.Name = parts[0]
		loc.City = parts[1]
	default:
		loc.Name = parts[0]
		loc.Address = strings.Join(parts[1:len(parts)-1], ", ")
		loc.City = parts[len(parts)-1]
	}
	return loc
}

func normalizeEventType(raw string) string {
	switch removeDiacritics(strings.ToLower(strings.TrimSpace(raw))) {
	case "competition":
		return models.EventTypeCompetition
	case "stage":
		return models.EventTypeStage
	case "demonstration", "demo":
		return models.EventTypeDemonstration
	case "seminaire", "seminar":
		return models.EventTypeSeminar
	case "autre", "other":
		return models.EventTypeOther
	}
	return ""
}

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// stripTags removes the recognized tags from the description. Unknown
// bracketed tokens are left alone; they belong to the author's text.
func stripTags(desc string) string {
	for _, re := range []*regexp.Regexp{
		siteTagRe, tousTagRe, clubTagRe, prixTagRe, dateTagRe, lieuTagRe, placesTagRe, typeTagRe,
	} {
		desc = re.ReplaceAllString(desc, "")
	}
	lines := strings.Split(desc, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	desc = strings.Join(lines, "\n")
	desc = blankLinesRe.ReplaceAllString(desc, "\n\n")
	return strings.TrimSpace(desc)
}
