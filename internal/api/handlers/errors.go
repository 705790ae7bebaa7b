package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/events/internal/roster"
	"example.com/backstage/services/events/internal/service"
)

// respondError maps expected error kinds to status codes and messages.
// Anything unrecognized becomes a 500 with a generic message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, service.ErrAttendeeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Attendee not found"})
	case errors.Is(err, service.ErrNoEventsFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No events found matching the criteria"})
	case errors.Is(err, service.ErrNoAttendeesFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No attendees found for this event"})
	case errors.Is(err, service.ErrEventFull):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event is fully booked"})
	case errors.Is(err, service.ErrCapacityReached):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Max attendees limit reached"})
	case errors.Is(err, service.ErrDuplicateAttendee):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Attendee already registered for this event"})
	case errors.Is(err, roster.ErrBadEncoding):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file encoding. Please upload a UTF-8 encoded CSV file."})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred"})
	}
}
