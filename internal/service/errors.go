package service

import "errors"

// Expected outcomes surfaced as error kinds. The API layer maps these to
// response codes; anything else is treated as an internal fault.
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrAttendeeNotFound  = errors.New("attendee not found")
	ErrEventFull         = errors.New("event is fully booked")
	ErrCapacityReached   = errors.New("max attendees limit reached")
	ErrDuplicateAttendee = errors.New("attendee already registered for this event")
	ErrNoEventsFound     = errors.New("no events found matching the criteria")
	ErrNoAttendeesFound  = errors.New("no attendees found for this event")
)
