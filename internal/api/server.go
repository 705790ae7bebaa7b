package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/events/config"
	"example.com/backstage/services/events/internal/api/handlers"
	"example.com/backstage/services/events/internal/metrics"
	"example.com/backstage/services/events/internal/repository"
	"example.com/backstage/services/events/internal/service"
)

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	events     *service.EventService
	attendees  *service.AttendeeService
	tokens     repository.TokenRepository
	metrics    *metrics.Metrics
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.Config,
	events *service.EventService,
	attendees *service.AttendeeService,
	tokens repository.TokenRepository,
	collector *metrics.Metrics,
) *Server {
	server := &Server{
		config:    cfg,
		events:    events,
		attendees: attendees,
		tokens:    tokens,
		metrics:   collector,
	}

	server.router = server.setupRouter()

	server.httpServer = &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      server.router,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: cfg.ServerTimeout,
	}

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.RegisterValidations()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		LoggingMiddleware(),
		MetricsMiddleware(s.metrics),
	)

	// Health and metrics stay outside auth
	metricsHandler := handlers.NewMetricsHandler(s.metrics)
	metricsHandler.RegisterRoutes(router)

	// Everything else requires a valid bearer token
	authorized := router.Group("", BearerAuth(s.tokens))

	eventHandler := handlers.NewEventHandler(s.events)
	eventHandler.RegisterRoutes(authorized)

	attendeeHandler := handlers.NewAttendeeHandler(s.attendees, s.config.Upload.MaxFileSize)
	attendeeHandler.RegisterRoutes(authorized)

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	// Create a timeout context for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
