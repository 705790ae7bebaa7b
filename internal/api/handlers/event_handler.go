package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"example.com/backstage/services/events/internal/models"
	"example.com/backstage/services/events/internal/service"
)

// EventService is the slice of event logic the handler needs
type EventService interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, eventID uint, patch service.EventPatch) (*models.Event, error)
	ListEvents(ctx context.Context, status models.EventStatus, location string) ([]models.Event, error)
}

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	events EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(events EventService) *EventHandler {
	return &EventHandler{events: events}
}

// RegisterValidations registers custom binding validations
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("eventstatus", func(fl validator.FieldLevel) bool {
			return models.EventStatus(fl.Field().String()).IsValid()
		})
	}
}

// EventCreateRequest is the body of a create-event request
type EventCreateRequest struct {
	Name         string    `json:"name" binding:"required"`
	Description  *string   `json:"description"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required"`
	Location     string    `json:"location" binding:"required"`
	MaxAttendees int64     `json:"max_attendees" binding:"gte=0"`
	Status       string    `json:"status" binding:"omitempty,eventstatus"`
}

// EventUpdateRequest is the body of a partial event update; every field is optional
type EventUpdateRequest struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Location     *string    `json:"location"`
	MaxAttendees *int64     `json:"max_attendees" binding:"omitempty,gte=0"`
	Status       *string    `json:"status" binding:"omitempty,eventstatus"`
}

// HandleCreateEvent creates a new event
func (h *EventHandler) HandleCreateEvent(c *gin.Context) {
	var req EventCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := &models.Event{
		Name:         req.Name,
		Description:  req.Description,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Location:     req.Location,
		MaxAttendees: req.MaxAttendees,
		Status:       models.EventStatus(req.Status),
	}

	if err := h.events.CreateEvent(c.Request.Context(), event); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// HandleUpdateEvent applies a partial update to an event
func (h *EventHandler) HandleUpdateEvent(c *gin.Context) {
	eventID, err := parseID(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var req EventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := service.EventPatch{
		Name:         req.Name,
		Description:  req.Description,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Location:     req.Location,
		MaxAttendees: req.MaxAttendees,
	}
	if req.Status != nil {
		status := models.EventStatus(*req.Status)
		patch.Status = &status
	}

	event, err := h.events.UpdateEvent(c.Request.Context(), eventID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// HandleListEvents returns events matching the optional status and location filters
func (h *EventHandler) HandleListEvents(c *gin.Context) {
	status := models.EventStatus(c.Query("status"))
	location := c.Query("location")

	events, err := h.events.ListEvents(c.Request.Context(), status, location)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// RegisterRoutes registers the handler's routes
func (h *EventHandler) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/events")
	group.POST("/", h.HandleCreateEvent)
	group.PUT("/:event_id", h.HandleUpdateEvent)
	group.GET("/", h.HandleListEvents)
}

// parseID parses a positive integer path or query parameter
func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
