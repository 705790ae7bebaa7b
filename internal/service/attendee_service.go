package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/backstage/services/events/internal/metrics"
	"example.com/backstage/services/events/internal/models"
	"example.com/backstage/services/events/internal/repository"
	"example.com/backstage/services/events/internal/roster"
)

// AttendeeService handles attendee registration and check-in logic
type AttendeeService struct {
	db        *gorm.DB
	events    *EventService
	attendees repository.AttendeeRepository
	metrics   *metrics.Metrics
}

// NewAttendeeService creates a new attendee service
func NewAttendeeService(db *gorm.DB, events *EventService, collector *metrics.Metrics) *AttendeeService {
	return &AttendeeService{
		db:        db,
		events:    events,
		attendees: repository.NewAttendeeRepository(db),
		metrics:   collector,
	}
}

// Register registers a single attendee to an event. The capacity check and
// the insert run in one transaction holding a lock on the event row, so the
// max_attendees invariant holds under concurrent registrations.
func (s *AttendeeService) Register(ctx context.Context, attendee *models.Attendee) error {
	attendee.Email = roster.NormalizeEmail(attendee.Email)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := lockEvent(tx, attendee.EventID)
		if err != nil {
			return err
		}

		store := repository.NewAttendeeRepository(tx)

		count, err := store.CountByEvent(ctx, event.EventID)
		if err != nil {
			return err
		}
		if count >= event.MaxAttendees {
			return ErrEventFull
		}

		_, err = store.FindByEventAndEmail(ctx, event.EventID, attendee.Email)
		if err == nil {
			return ErrDuplicateAttendee
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		return store.Create(ctx, attendee)
	})
	if err != nil {
		return err
	}

	s.metrics.IncrementCounter(metrics.CounterAttendeesAdded)

	log.Info().
		Uint("attendee_id", attendee.AttendeeID).
		Uint("event_id", attendee.EventID).
		Str("email", attendee.Email).
		Msg("Attendee registered")

	return nil
}

// CheckIn flips an attendee's check-in flag. Checking in an already
// checked-in attendee is a no-op, not an error.
func (s *AttendeeService) CheckIn(ctx context.Context, attendeeID uint) (*models.Attendee, error) {
	attendee, err := s.attendees.FindByID(ctx, attendeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttendeeNotFound
		}
		return nil, err
	}

	if attendee.CheckInStatus {
		return attendee, nil
	}

	attendee.CheckInStatus = true
	if err := s.attendees.Save(ctx, attendee); err != nil {
		return nil, err
	}

	s.metrics.IncrementCounter(metrics.CounterAttendeesChecked)

	log.Info().
		Uint("attendee_id", attendee.AttendeeID).
		Uint("event_id", attendee.EventID).
		Msg("Attendee checked in")

	return attendee, nil
}

// ListByEvent returns all attendees registered to an event
func (s *AttendeeService) ListByEvent(ctx context.Context, eventID uint) ([]models.Attendee, error) {
	attendees, err := s.attendees.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(attendees) == 0 {
		return nil, ErrNoAttendeesFound
	}
	return attendees, nil
}

// BulkRegister ingests a registration CSV for an event and commits the
// admitted subset as one unit of work. The persisted count and registered
// emails are read once at batch start; the admission decision then works
// off that snapshot while the event row stays locked.
func (s *AttendeeService) BulkRegister(ctx context.Context, eventID uint, payload []byte) (int, error) {
	var added int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := lockEvent(tx, eventID)
		if err != nil {
			return err
		}

		store := repository.NewAttendeeRepository(tx)

		count, err := store.CountByEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if count >= event.MaxAttendees {
			return ErrCapacityReached
		}

		batch, skipped, err := roster.ReadRegistrationBatch(payload)
		if err != nil {
			return err
		}
		if skipped > 0 {
			s.metrics.IncrementCounterBy(metrics.CounterRowsSkipped, int64(skipped))
			log.Debug().Int("rows", skipped).Uint("event_id", eventID).Msg("Skipped malformed upload rows")
		}

		emails, err := store.EmailsByEvent(ctx, eventID)
		if err != nil {
			return err
		}
		registered := make(map[string]struct{}, len(emails))
		for _, email := range emails {
			registered[email] = struct{}{}
		}

		accepted := roster.PlanAdmission(roster.Snapshot{
			EventID:          eventID,
			Capacity:         event.MaxAttendees,
			Registered:       count,
			RegisteredEmails: registered,
		}, batch)
		if len(accepted) == 0 {
			return nil
		}

		rows := make([]models.Attendee, len(accepted))
		for i, candidate := range accepted {
			rows[i] = models.Attendee{
				FirstName:   candidate.FirstName,
				LastName:    candidate.LastName,
				Email:       candidate.Email,
				PhoneNumber: candidate.PhoneNumber,
				EventID:     candidate.EventID,
			}
		}
		if err := store.CreateBatch(ctx, rows); err != nil {
			return err
		}

		added = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.IncrementCounterBy(metrics.CounterAttendeesAdded, int64(added))

	log.Info().
		Uint("event_id", eventID).
		Int("added", added).
		Msg("Bulk registration committed")

	return added, nil
}

// BulkCheckIn ingests a check-in CSV for an event and flips the check-in
// flag of matching unchecked attendees, all in one transaction.
func (s *AttendeeService) BulkCheckIn(ctx context.Context, eventID uint, payload []byte) (int, error) {
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return 0, err
	}

	emails, err := roster.ReadCheckInBatch(payload)
	if err != nil {
		return 0, err
	}

	var updated int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := repository.NewAttendeeRepository(tx)
		updated, err = reconcileCheckIns(ctx, store, eventID, emails)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.metrics.IncrementCounterBy(metrics.CounterAttendeesChecked, int64(updated))

	log.Info().
		Uint("event_id", eventID).
		Int("updated", updated).
		Msg("Bulk check-in committed")

	return updated, nil
}

// checkInStore is the slice of attendee storage the reconciler needs
type checkInStore interface {
	FindByEventAndEmail(ctx context.Context, eventID uint, email string) (*models.Attendee, error)
	Save(ctx context.Context, attendee *models.Attendee) error
}

// reconcileCheckIns processes a batch of normalized emails against the
// store. Each attendee is touched at most once per call; the returned count
// covers only attendees whose state actually changed.
func reconcileCheckIns(ctx context.Context, store checkInStore, eventID uint, emails []string) (int, error) {
	processed := make(map[string]struct{}, len(emails))
	var updated int

	for _, email := range emails {
		if _, done := processed[email]; done {
			continue
		}

		attendee, err := store.FindByEventAndEmail(ctx, eventID, email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Unknown email, no effect and not an error
				continue
			}
			return 0, err
		}

		processed[email] = struct{}{}
		if attendee.CheckInStatus {
			continue
		}

		attendee.CheckInStatus = true
		if err := store.Save(ctx, attendee); err != nil {
			return 0, err
		}
		updated++
	}

	return updated, nil
}

// lockEvent reads an event under a row lock for the duration of the
// surrounding transaction
func lockEvent(tx *gorm.DB, eventID uint) (*models.Event, error) {
	var event models.Event
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, eventID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, errors.Wrap(err, "failed to lock event")
	}
	return &event, nil
}
