package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/backstage/services/events/internal/models"
)

// AttendeeRepository defines data access for attendees
type AttendeeRepository interface {
	Create(ctx context.Context, attendee *models.Attendee) error
	CreateBatch(ctx context.Context, attendees []models.Attendee) error
	Save(ctx context.Context, attendee *models.Attendee) error
	FindByID(ctx context.Context, id uint) (*models.Attendee, error)
	FindByEventAndEmail(ctx context.Context, eventID uint, email string) (*models.Attendee, error)
	ListByEvent(ctx context.Context, eventID uint) ([]models.Attendee, error)
	CountByEvent(ctx context.Context, eventID uint) (int64, error)
	EmailsByEvent(ctx context.Context, eventID uint) ([]string, error)
}

// attendeeRepository implements AttendeeRepository
type attendeeRepository struct {
	db *gorm.DB
}

// NewAttendeeRepository creates a new attendee repository
func NewAttendeeRepository(db *gorm.DB) AttendeeRepository {
	return &attendeeRepository{db: db}
}

// Create inserts a new attendee
func (r *attendeeRepository) Create(ctx context.Context, attendee *models.Attendee) error {
	if err := r.db.WithContext(ctx).Create(attendee).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return errors.Wrap(err, "failed to create attendee")
	}
	return nil
}

// CreateBatch inserts a batch of attendees in one statement
func (r *attendeeRepository) CreateBatch(ctx context.Context, attendees []models.Attendee) error {
	if len(attendees) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&attendees).Error; err != nil {
		return errors.Wrap(err, "failed to create attendee batch")
	}
	return nil
}

// Save persists all fields of an existing attendee
func (r *attendeeRepository) Save(ctx context.Context, attendee *models.Attendee) error {
	if err := r.db.WithContext(ctx).Save(attendee).Error; err != nil {
		return errors.Wrap(err, "failed to save attendee")
	}
	return nil
}

// FindByID finds an attendee by its ID
func (r *attendeeRepository) FindByID(ctx context.Context, id uint) (*models.Attendee, error) {
	var attendee models.Attendee
	err := r.db.WithContext(ctx).First(&attendee, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find attendee")
	}
	return &attendee, nil
}

// FindByEventAndEmail finds an attendee registered to an event under an email
func (r *attendeeRepository) FindByEventAndEmail(ctx context.Context, eventID uint, email string) (*models.Attendee, error) {
	var attendee models.Attendee
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND email = ?", eventID, email).
		First(&attendee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find attendee by event and email")
	}
	return &attendee, nil
}

// ListByEvent returns all attendees registered to an event
func (r *attendeeRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.Attendee, error) {
	var attendees []models.Attendee
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("attendee_id").
		Find(&attendees).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list attendees")
	}
	return attendees, nil
}

// CountByEvent counts attendees registered to an event
func (r *attendeeRepository) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Attendee{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count attendees")
	}
	return count, nil
}

// EmailsByEvent returns the emails already registered to an event
func (r *attendeeRepository) EmailsByEvent(ctx context.Context, eventID uint) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).
		Model(&models.Attendee{}).
		Where("event_id = ?", eventID).
		Pluck("email", &emails).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load registered emails")
	}
	return emails, nil
}
