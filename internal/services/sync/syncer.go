package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/artsmartiaux/association-go/internal/models"
	"github.com/artsmartiaux/association-go/internal/redis"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Syncer imports Facebook events into the site database. One call to
// SyncEvent runs the whole pipeline for one payload: parse tags, resolve
// clubs, upsert the event row keyed by the Facebook event id, then replace
// the child collections with the freshly parsed data.
//
// By default sub-step failures (sessions, prices, locations, images, club
// links) are best-effort: they are logged, surfaced as warnings and the
// event stays published. With strict enabled the entire sync runs in one
// transaction and any failure rolls the whole payload back.
type Syncer struct {
	db     *gorm.DB
	log    *logrus.Logger
	cache  *redis.Client
	strict bool
}

func NewSyncer(db *gorm.DB, logger *logrus.Logger, cache *redis.Client, strict bool) *Syncer {
	return &Syncer{db: db, log: logger, cache: cache, strict: strict}
}

type SyncDetails struct {
	SessionsCreated  int `json:"sessions_created"`
	PricesCreated    int `json:"prices_created"`
	LocationsCreated int `json:"locations_created"`
	ImagesCreated    int `json:"images_created"`
	ClubsLinked      int `json:"clubs_linked"`
}

type SyncResult struct {
	Success  bool         `json:"success"`
	EventID  uint         `json:"event_id,omitempty"`
	Message  string       `json:"message,omitempty"`
	Error    string       `json:"error,omitempty"`
	Details  *SyncDetails `json:"details,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

type BatchResult struct {
	Success      bool         `json:"success"`
	Results      []SyncResult `json:"results"`
	SuccessCount int          `json:"success_count"`
	ErrorCount   int          `json:"error_count"`
}

// SyncEvent synchronizes a single Facebook event payload. Re-running with
// the same payload is idempotent: the event row is updated in place and the
// child collections end up identical, never duplicated.
func (s *Syncer) SyncEvent(ctx context.Context, payload EventPayload) (result SyncResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("facebook_event_id", payload.ID).Errorf("panic during event sync: %v", r)
			result = SyncResult{Error: fmt.Sprintf("panic during event sync: %v", r)}
		}
	}()

	if payload.ID == "" {
		return SyncResult{Error: "payload has no event id"}
	}

	data := ExtractEventData(payload)
	if !data.Tags.ShouldPublish {
		s.log.WithField("facebook_event_id", payload.ID).Info("no [SITE] tag, event skipped")
		return SyncResult{Success: true, Message: "no [SITE] tag, event not published"}
	}

	var warnings []string

	// Legacy single-club field: first tagged club, nil when the event is
	// for every club or the slug cannot be resolved.
	var mainClubID *uint
	if !data.Tags.IsAllClubs && len(data.Tags.ClubSlugs) > 0 {
		mainClubID = s.findClubBySlug(ctx, s.db, data.Tags.ClubSlugs[0])
		if mainClubID == nil {
			warnings = append(warnings, fmt.Sprintf("main club %q not found", data.Tags.ClubSlugs[0]))
		}
	}

	var details SyncDetails
	var eventID uint

	run := func(tx *gorm.DB) error {
		id, err := s.upsertEvent(tx, payload, data, mainClubID)
		if err != nil {
			return err
		}
		eventID = id

		childWarnings, childDetails, err := s.syncChildren(ctx, tx, id, data)
		warnings = append(warnings, childWarnings...)
		details = childDetails
		return err
	}

	var err error
	if s.strict {
		err = s.db.WithContext(ctx).Transaction(run)
	} else {
		err = run(s.db.WithContext(ctx))
	}
	if err != nil {
		s.log.WithError(err).WithField("facebook_event_id", payload.ID).Error("event sync failed")
		return SyncResult{Error: err.Error(), Warnings: warnings}
	}

	s.cache.InvalidateEvents(ctx)
	s.log.WithFields(logrus.Fields{
		"facebook_event_id": payload.ID,
		"event_id":          eventID,
	}).Info("event synced")

	return SyncResult{Success: true, EventID: eventID, Details: &details, Warnings: warnings}
}

// DeactivateEvent hides a previously imported event, typically after it was
// cancelled or deleted on Facebook. Child rows are kept untouched.
func (s *Syncer) DeactivateEvent(ctx context.Context, externalID string) SyncResult {
	res := s.db.WithContext(ctx).Model(&models.Event{}).
		Where("facebook_event_id = ? AND synced_from_facebook = ?", externalID, true).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now()})
	if res.Error != nil {
		s.log.WithError(res.Error).WithField("facebook_event_id", externalID).Error("event deactivation failed")
		return SyncResult{Error: res.Error.Error()}
	}
	if res.RowsAffected == 0 {
		return SyncResult{Error: fmt.Sprintf("no synced event found for facebook id %s", externalID)}
	}

	s.cache.InvalidateEvents(ctx)
	s.log.WithField("facebook_event_id", externalID).Info("event deactivated")
	return SyncResult{Success: true, Message: "event deactivated"}
}

// SyncMany applies SyncEvent to each payload in order. Payloads are
// processed sequentially so two payloads for the same event never contend;
// one payload's failure does not stop the rest.
func (s *Syncer) SyncMany(ctx context.Context, payloads []EventPayload) BatchResult {
	runID := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"run_id": runID, "payloads": len(payloads)})
	log.Info("facebook batch sync started")

	batch := BatchResult{Results: make([]SyncResult, 0, len(payloads))}
	for _, payload := range payloads {
		result := s.SyncEvent(ctx, payload)
		batch.Results = append(batch.Results, result)
		if result.Success {
			batch.SuccessCount++
		} else {
			batch.ErrorCount++
		}
	}
	batch.Success = batch.ErrorCount == 0

	log.WithFields(logrus.Fields{
		"success_count": batch.SuccessCount,
		"error_count":   batch.ErrorCount,
	}).Info("facebook batch sync finished")
	return batch
}

// findClubBySlug resolves an active club's slug to its id. Misses are
// expected (typos in hand-written tags) and return nil with a warning log,
// never an error.
func (s *Syncer) findClubBySlug(ctx context.Context, tx *gorm.DB, slug string) *uint {
	var club models.Club
	err := tx.WithContext(ctx).Where("slug = ? AND active = ?", slug, true).First(&club).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.WithField("club_slug", slug).Warn("unknown club slug in event tags")
		} else {
			s.log.WithError(err).WithField("club_slug", slug).Warn("club lookup failed")
		}
		return nil
	}
	id := club.ID
	return &id
}

// upsertEvent writes the primary event row and returns its id. The Facebook
// event id, not the slug, is the stable key across re-imports: titles and
// therefore slugs may change between syncs.
func (s *Syncer) upsertEvent(tx *gorm.DB, payload EventPayload, data EventData, mainClubID *uint) (uint, error) {
	var existing models.Event
	found := true
	if err := tx.Where("facebook_event_id = ?", payload.ID).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("event lookup failed: %w", err)
		}
		found = false
	}

	slug, err := generateUniqueEventSlug(tx, data.Title, existing.Slug, existing.ID)
	if err != nil {
		return 0, err
	}

	raw, _ := json.Marshal(payload)
	now := time.Now()

	legacyPrice := 0
	if len(data.Tags.Prices) > 0 {
		legacyPrice = data.Tags.Prices[0].PriceCents
	}
	eventType := data.Tags.EventType
	if eventType == "" {
		eventType = models.EventTypeOther
	}

	externalID := payload.ID
	event := models.Event{
		Slug:          slug,
		Title:         data.Title,
		Description:   data.Description,
		EventType:     eventType,
		StartDate:     data.StartDate,
		EndDate:       data.EndDate,
		Location:      data.Location,
		MaxAttendees:  data.Tags.MaxCapacity,
		CoverImageURL: data.CoverImageURL,

		PriceCents: legacyPrice,
		ClubID:     mainClubID,
		IsAllClubs: data.Tags.IsAllClubs,

		FacebookEventID:    &externalID,
		FacebookURL:        payload.EventURL(),
		SyncedFromFacebook: true,
		RawPayload:         string(raw),
		LastSyncedAt:       &now,

		Active: true,
	}

	if found {
		event.ID = existing.ID
		event.CreatedAt = existing.CreatedAt
		if err := tx.Save(&event).Error; err != nil {
			return 0, fmt.Errorf("event update failed: %w", err)
		}
		return event.ID, nil
	}

	if err := tx.Create(&event).Error; err != nil {
		return 0, fmt.Errorf("event insert failed: %w", err)
	}
	return event.ID, nil
}

// syncChildren brings the child collections in line with the parsed tags.
// Sessions, prices and locations are replaced wholesale, but only when the
// payload actually carried tags for them; the cover image is additive so
// manually uploaded gallery images survive a re-sync.
func (s *Syncer) syncChildren(ctx context.Context, tx *gorm.DB, eventID uint, data EventData) ([]string, SyncDetails, error) {
	var warnings []string
	var details SyncDetails

	step := func(name string, fn func() (int, error)) (int, error) {
		n, err := fn()
		if err == nil {
			return n, nil
		}
		if s.strict {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		s.log.WithError(err).WithFields(logrus.Fields{"event_id": eventID, "step": name}).Warn("sync step failed, continuing")
		warnings = append(warnings, fmt.Sprintf("%s failed: %v", name, err))
		return 0, nil
	}

	var err error
	if len(data.Tags.Sessions) > 0 {
		details.SessionsCreated, err = step("session sync", func() (int, error) {
			return s.replaceSessions(tx, eventID, data.Tags.Sessions)
		})
		if err != nil {
			return warnings, details, err
		}
	}

	if len(data.Tags.Prices) > 0 {
		details.PricesCreated, err = step("price sync", func() (int, error) {
			return s.replacePrices(tx, eventID, data.Tags.Prices)
		})
		if err != nil {
			return warnings, details, err
		}
	}

	if len(data.Tags.Locations) > 0 {
		details.LocationsCreated, err = step("location sync", func() (int, error) {
			return s.replaceLocations(tx, eventID, data.Tags.Locations)
		})
		if err != nil {
			return warnings, details, err
		}
	}

	if data.CoverImageURL != "" {
		details.ImagesCreated, err = step("cover image", func() (int, error) {
			return s.ensureCoverImage(tx, eventID, data)
		})
		if err != nil {
			return warnings, details, err
		}
	}

	if !data.Tags.IsAllClubs && len(data.Tags.ClubSlugs) > 0 {
		linked, clubWarnings, clubErr := s.replaceClubLinks(ctx, tx, eventID, data.Tags.ClubSlugs)
		warnings = append(warnings, clubWarnings...)
		details.ClubsLinked = linked
		if clubErr != nil {
			if s.strict {
				return warnings, details, fmt.Errorf("club links: %w", clubErr)
			}
			s.log.WithError(clubErr).WithField("event_id", eventID).Warn("club link sync failed, continuing")
			warnings = append(warnings, fmt.Sprintf("club links failed: %v", clubErr))
		}
	}

	return warnings, details, nil
}

func (s *Syncer) replaceSessions(tx *gorm.DB, eventID uint, sessions []ParsedSession) (int, error) {
	if err := tx.Unscoped().Where("event_id = ?", eventID).Delete(&models.EventSession{}).Error; err != nil {
		return 0, err
	}
	rows := make([]models.EventSession, len(sessions))
	for i, session := range sessions {
		rows[i] = models.EventSession{
			EventID:     eventID,
			SessionDate: session.Date,
			StartTime:   session.StartTime,
			EndTime:     session.EndTime,
			Notes:       session.Notes,
			Status:      models.SessionStatusScheduled,
		}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *Syncer) replacePrices(tx *gorm.DB, eventID uint, prices []ParsedPrice) (int, error) {
	if err := tx.Unscoped().Where("event_id = ?", eventID).Delete(&models.EventPrice{}).Error; err != nil {
		return 0, err
	}
	rows := make([]models.EventPrice, len(prices))
	for i, price := range prices {
		rows[i] = models.EventPrice{
			EventID:      eventID,
			Label:        price.Label,
			PriceCents:   price.PriceCents,
			Currency:     "EUR",
			DisplayOrder: i,
		}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *Syncer) replaceLocations(tx *gorm.DB, eventID uint, locations []ParsedLocation) (int, error) {
	if err := tx.Unscoped().Where("event_id = ?", eventID).Delete(&models.EventLocation{}).Error; err != nil {
		return 0, err
	}
	rows := make([]models.EventLocation, len(locations))
	for i, location := range locations {
		name := location.Name
		if name == "" {
			name = location.Raw
		}
		rows[i] = models.EventLocation{
			EventID:      eventID,
			Name:         name,
			Address:      location.Address,
			City:         location.City,
			IsPrimary:    i == 0,
			DisplayOrder: i,
		}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ensureCoverImage inserts the payload's cover photo unless some image row
// already holds the cover flag for this event.
func (s *Syncer) ensureCoverImage(tx *gorm.DB, eventID uint, data EventData) (int, error) {
	var count int64
	if err := tx.Model(&models.EventImage{}).
		Where("event_id = ? AND is_cover = ?", eventID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	image := models.EventImage{
		EventID:  eventID,
		ImageURL: data.CoverImageURL,
		Title:    data.Title,
		AltText:  data.Title,
		IsCover:  true,
	}
	if err := tx.Create(&image).Error; err != nil {
		return 0, err
	}
	return 1, nil
}

func (s *Syncer) replaceClubLinks(ctx context.Context, tx *gorm.DB, eventID uint, slugs []string) (int, []string, error) {
	if err := tx.Where("event_id = ?", eventID).Delete(&models.EventClub{}).Error; err != nil {
		return 0, nil, err
	}

	var linked int
	var warnings []string
	for _, slug := range slugs {
		clubID := s.findClubBySlug(ctx, tx, slug)
		if clubID == nil {
			warnings = append(warnings, fmt.Sprintf("club %q not found, association skipped", slug))
			continue
		}
		if err := tx.Create(&models.EventClub{EventID: eventID, ClubID: *clubID}).Error; err != nil {
			return linked, warnings, err
		}
		linked++
	}
	return linked, warnings, nil
}
