package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/backstage/services/events/internal/cache"
	"example.com/backstage/services/events/internal/models"
	"example.com/backstage/services/events/internal/repository"
)

// eventCacheTTL bounds staleness of cached event lookups
const eventCacheTTL = 5 * time.Minute

// EventService handles event-related business logic
type EventService struct {
	db     *gorm.DB
	events repository.EventRepository
	cache  *cache.RedisCache
}

// NewEventService creates a new event service
func NewEventService(db *gorm.DB, redisCache *cache.RedisCache) *EventService {
	return &EventService{
		db:     db,
		events: repository.NewEventRepository(db),
		cache:  redisCache,
	}
}

// EventPatch carries the optional fields of a partial event update
type EventPatch struct {
	Name         *string
	Description  *string
	StartTime    *time.Time
	EndTime      *time.Time
	Location     *string
	MaxAttendees *int64
	Status       *models.EventStatus
}

// CreateEvent persists a new event
func (s *EventService) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.Status == "" {
		event.Status = models.EventScheduled
	}

	if err := s.events.Create(ctx, event); err != nil {
		return err
	}

	log.Info().
		Uint("event_id", event.EventID).
		Str("name", event.Name).
		Int64("max_attendees", event.MaxAttendees).
		Msg("Event created")

	return nil
}

// UpdateEvent applies a partial update to an existing event
func (s *EventService) UpdateEvent(ctx context.Context, eventID uint, patch EventPatch) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if patch.Name != nil {
		event.Name = *patch.Name
	}
	if patch.Description != nil {
		event.Description = patch.Description
	}
	if patch.StartTime != nil {
		event.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		event.EndTime = *patch.EndTime
	}
	if patch.Location != nil {
		event.Location = *patch.Location
	}
	if patch.MaxAttendees != nil {
		event.MaxAttendees = *patch.MaxAttendees
	}
	if patch.Status != nil {
		event.Status = *patch.Status
	}

	if err := s.events.Save(ctx, event); err != nil {
		return nil, err
	}

	// Drop the cached copy so the next read sees the update
	if err := s.cache.Invalidate(ctx, cache.EventCacheKey(event.EventID)); err != nil {
		log.Warn().Err(err).Uint("event_id", event.EventID).Msg("Failed to invalidate cached event")
	}

	return event, nil
}

// ListEvents returns events matching the optional status and location filters
func (s *EventService) ListEvents(ctx context.Context, status models.EventStatus, location string) ([]models.Event, error) {
	events, err := s.events.List(ctx, status, location)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNoEventsFound
	}
	return events, nil
}

// GetEvent returns an event by ID, read through the cache when enabled
func (s *EventService) GetEvent(ctx context.Context, eventID uint) (*models.Event, error) {
	key := cache.EventCacheKey(eventID)

	if s.cache.Enabled() {
		var cached models.Event
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, event, eventCacheTTL); err != nil {
			log.Warn().Err(err).Uint("event_id", eventID).Msg("Failed to cache event")
		}
	}

	return event, nil
}
