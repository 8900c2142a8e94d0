package sync

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/artsmartiaux/association-go/internal/models"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// removeDiacritics decomposes the string and drops combining marks, so
// "été" becomes "ete".
func removeDiacritics(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Slugify turns a title into a URL-safe identifier: lowercase, diacritics
// stripped, runs of non-alphanumerics collapsed to a single dash.
func Slugify(title string) string {
	s := removeDiacritics(strings.ToLower(title))
	var b strings.Builder
	lastDash := true // swallow leading dashes
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// generateUniqueEventSlug returns a slug for the given title that collides
// with no other event. When updating an existing event whose title has not
// changed, the current slug is returned untouched so URLs stay stable.
// Collisions with a different event get an incrementing numeric suffix.
func generateUniqueEventSlug(db *gorm.DB, title, currentSlug string, currentID uint) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "evenement"
	}

	if currentSlug != "" {
		// "stage-ete" and its suffixed variants "stage-ete-2"... all map
		// back to the same base; keep whichever this event already owns.
		if currentSlug == base || strings.HasPrefix(currentSlug, base+"-") {
			return currentSlug, nil
		}
	}

	candidate := base
	for i := 2; ; i++ {
		query := db.Model(&models.Event{}).Where("slug = ?", candidate)
		if currentID != 0 {
			query = query.Where("id <> ?", currentID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return "", fmt.Errorf("slug lookup failed: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
