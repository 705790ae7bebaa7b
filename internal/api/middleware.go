package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/events/internal/metrics"
	"example.com/backstage/services/events/internal/models"
	"example.com/backstage/services/events/internal/repository"
)

// Constants for middleware
const (
	requestIDKey = "X-Request-ID"
	tokenKey     = "api_token"
)

// RequestIDMiddleware adds a request ID to the context
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get request ID from header or generate a new one
		requestID := c.GetHeader(requestIDKey)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// Set request ID in context and header
		c.Set(requestIDKey, requestID)
		c.Header(requestIDKey, requestID)

		c.Next()
	}
}

// LoggingMiddleware logs API requests
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		requestID := c.GetString(requestIDKey)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("request_id", requestID).
			Msg("API request")
	}
}

// MetricsMiddleware records request counts and latencies
func MetricsMiddleware(collector *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		collector.IncrementCounter(metrics.CounterHTTPRequests)
		if c.Writer.Status() >= http.StatusInternalServerError {
			collector.IncrementCounter(metrics.CounterHTTPRequestsError)
		}
		collector.RecordTimer("http_request", time.Since(start))
	}
}

// BearerAuth validates opaque bearer tokens from the Authorization header
func BearerAuth(tokens repository.TokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Check if Authorization header is present
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from header
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid Authorization header format. Expected: 'Bearer {token}'",
			})
			c.Abort()
			return
		}

		apiToken, err := tokens.FindByToken(c.Request.Context(), parts[1])
		if err != nil {
			log.Warn().Err(err).Msg("Rejected unknown API token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// Check if the token is expired
		if apiToken.ExpiresAt != nil && apiToken.ExpiresAt.Before(time.Now()) {
			log.Warn().Str("name", apiToken.Name).Msg("Rejected expired API token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// Update last used timestamp without blocking the request
		now := time.Now()
		apiToken.LastUsedAt = &now
		go func(t models.APIToken) {
			if err := tokens.Save(context.Background(), &t); err != nil {
				log.Warn().Err(err).Msg("Failed to update token last_used_at")
			}
		}(*apiToken)

		// Store the token in context for later use if needed
		c.Set(tokenKey, apiToken)

		c.Next()
	}
}
