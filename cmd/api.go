package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"example.com/backstage/services/events/config"
	"example.com/backstage/services/events/internal/api"
	"example.com/backstage/services/events/internal/cache"
	"example.com/backstage/services/events/internal/metrics"
	"example.com/backstage/services/events/internal/models"
	"example.com/backstage/services/events/internal/repository"
	"example.com/backstage/services/events/internal/service"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the HTTP API server for event and attendee management`,
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize database connection
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if err := models.SetupModels(db); err != nil {
		return err
	}

	// Initialize cache
	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
		redisCache = nil
	}

	// Initialize metrics
	collector := metrics.NewMetrics()

	// Initialize services
	eventService := service.NewEventService(db, redisCache)
	attendeeService := service.NewAttendeeService(db, eventService, collector)
	tokenRepo := repository.NewTokenRepository(db)

	// Initialize and start the server
	server := api.NewServer(cfg, eventService, attendeeService, tokenRepo, collector)

	// Start the server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	// Shutdown the server
	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}

	log.Info().Msg("Shutting down API server")
	return nil
}
