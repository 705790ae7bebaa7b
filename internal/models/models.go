package models

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// EventStatus represents the lifecycle state of an event
type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCanceled  EventStatus = "canceled"
)

// IsValid reports whether the status is one of the known states
func (s EventStatus) IsValid() bool {
	switch s {
	case EventScheduled, EventOngoing, EventCompleted, EventCanceled:
		return true
	}
	return false
}

// Event represents a schedulable activity with a bounded attendee capacity
type Event struct {
	EventID      uint        `gorm:"primaryKey;autoIncrement" json:"event_id"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	Name         string      `gorm:"not null" json:"name"`
	Description  *string     `json:"description"`
	StartTime    time.Time   `gorm:"not null" json:"start_time"`
	EndTime      time.Time   `gorm:"not null" json:"end_time"`
	Location     string      `gorm:"not null;index" json:"location"`
	MaxAttendees int64       `gorm:"not null" json:"max_attendees"`
	Status       EventStatus `gorm:"type:varchar(16);not null;default:scheduled;index" json:"status"`
	Attendees    []Attendee  `gorm:"foreignKey:EventID" json:"-"`
}

// Attendee represents a person registered to an event.
// An email may register at most once per event.
type Attendee struct {
	AttendeeID    uint      `gorm:"primaryKey;autoIncrement" json:"attendee_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	FirstName     string    `gorm:"not null" json:"first_name"`
	LastName      string    `gorm:"not null" json:"last_name"`
	Email         string    `gorm:"not null;uniqueIndex:idx_attendees_event_email" json:"email"`
	PhoneNumber   string    `json:"phone_number"`
	EventID       uint      `gorm:"not null;uniqueIndex:idx_attendees_event_email;index" json:"event_id"`
	CheckInStatus bool      `gorm:"not null;default:false" json:"check_in_status"`
	Event         Event     `gorm:"foreignKey:EventID" json:"-"`
}

// APIToken represents an opaque bearer token accepted by the API
type APIToken struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Token      string     `gorm:"not null;uniqueIndex" json:"-"`
	Name       string     `gorm:"not null" json:"name"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Event{},
		&Attendee{},
		&APIToken{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to migrate database schema")
	}
	return nil
}
