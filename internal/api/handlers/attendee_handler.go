package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"example.com/backstage/services/events/internal/models"
	"example.com/backstage/services/events/internal/roster"
)

// AttendeeService is the slice of attendee logic the handler needs
type AttendeeService interface {
	Register(ctx context.Context, attendee *models.Attendee) error
	CheckIn(ctx context.Context, attendeeID uint) (*models.Attendee, error)
	ListByEvent(ctx context.Context, eventID uint) ([]models.Attendee, error)
	BulkRegister(ctx context.Context, eventID uint, payload []byte) (int, error)
	BulkCheckIn(ctx context.Context, eventID uint, payload []byte) (int, error)
}

// AttendeeHandler handles attendee-related HTTP requests
type AttendeeHandler struct {
	attendees     AttendeeService
	maxUploadSize int64
}

// NewAttendeeHandler creates a new attendee handler
func NewAttendeeHandler(attendees AttendeeService, maxUploadSize int64) *AttendeeHandler {
	return &AttendeeHandler{
		attendees:     attendees,
		maxUploadSize: maxUploadSize,
	}
}

// AttendeeCreateRequest is the body of a single registration request
type AttendeeCreateRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number"`
	EventID     uint   `json:"event_id" binding:"required"`
}

// AttendeeRecord is a flattened attendee row returned by the list endpoint
type AttendeeRecord struct {
	AttendeeID    uint   `json:"attendee_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	EventID       uint   `json:"event_id"`
	CheckInStatus bool   `json:"check_in_status"`
}

// HandleRegisterAttendee registers a single attendee to an event
func (h *AttendeeHandler) HandleRegisterAttendee(c *gin.Context) {
	var req AttendeeCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attendee := &models.Attendee{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		EventID:     req.EventID,
	}

	if err := h.attendees.Register(c.Request.Context(), attendee); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, attendee)
}

// HandleCheckInAttendee flips an attendee's check-in flag; repeated calls are no-ops
func (h *AttendeeHandler) HandleCheckInAttendee(c *gin.Context) {
	attendeeID, err := parseID(c.Param("attendee_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attendee ID"})
		return
	}

	attendee, err := h.attendees.CheckIn(c.Request.Context(), attendeeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, attendee)
}

// HandleListAttendees returns the flattened attendee roster for an event
func (h *AttendeeHandler) HandleListAttendees(c *gin.Context) {
	eventID, err := parseID(c.Query("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	attendees, err := h.attendees.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	records := make([]AttendeeRecord, len(attendees))
	for i, a := range attendees {
		records[i] = AttendeeRecord{
			AttendeeID:    a.AttendeeID,
			FirstName:     a.FirstName,
			LastName:      a.LastName,
			Email:         a.Email,
			Phone:         a.PhoneNumber,
			EventID:       a.EventID,
			CheckInStatus: a.CheckInStatus,
		}
	}

	c.JSON(http.StatusOK, records)
}

// HandleBulkUpload ingests a registration CSV for an event
func (h *AttendeeHandler) HandleBulkUpload(c *gin.Context) {
	eventID, err := parseID(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	payload, ok := h.readUpload(c)
	if !ok {
		return
	}

	added, err := h.attendees.BulkRegister(c.Request.Context(), eventID, payload)
	if err != nil {
		if errors.Is(err, roster.ErrSchemaMismatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CSV format"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Successfully added %d attendees", added)})
}

// HandleBulkCheckIn ingests a check-in CSV for an event
func (h *AttendeeHandler) HandleBulkCheckIn(c *gin.Context) {
	eventID, err := parseID(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	payload, ok := h.readUpload(c)
	if !ok {
		return
	}

	updated, err := h.attendees.BulkCheckIn(c.Request.Context(), eventID, payload)
	if err != nil {
		if errors.Is(err, roster.ErrSchemaMismatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CSV format. Expected headers: 'email'"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Successfully checked in %d attendees", updated)})
}

// readUpload reads the multipart CSV file from the request. On failure the
// response has already been written.
func (h *AttendeeHandler) readUpload(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return nil, false
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return nil, false
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred"})
		return nil, false
	}
	return payload, true
}

// RegisterRoutes registers the handler's routes
func (h *AttendeeHandler) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/attendees")
	group.POST("/", h.HandleRegisterAttendee)
	group.PUT("/:attendee_id/checkin", h.HandleCheckInAttendee)
	group.GET("/attendees", h.HandleListAttendees)
	group.POST("/attendee/:event_id/bulk-upload", h.HandleBulkUpload)
	group.POST("/attendee/:event_id/bulk-check-in", h.HandleBulkCheckIn)
}
