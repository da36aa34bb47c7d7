package api

import (
	"context"
	"time"

	"github.com/grounded-ai/groundedqa/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	cfg         *config.Config
	redisClient *redis.Client
}

// NewHealthHandler creates a health check handler. redisClient may be nil
// when rate limiting runs in-process.
func NewHealthHandler(cfg *config.Config, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		cfg:         cfg,
		redisClient: redisClient,
	}
}

// HealthCheck reports the service status and its dependency checks.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	redisStatus := h.checkRedis()
	providerStatus := h.checkProviders()

	overallStatus := "healthy"
	statusCode := fiber.StatusOK
	if redisStatus == "unhealthy" || providerStatus == "unhealthy" {
		overallStatus = "degraded"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": fiber.Map{
			"redis":     redisStatus,
			"providers": providerStatus,
		},
	})
}

func (h *HealthHandler) checkRedis() string {
	if h.redisClient == nil {
		return "disabled"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

// checkProviders verifies at least one provider has credentials configured.
// It does not issue upstream calls; a health probe should not burn quota.
func (h *HealthHandler) checkProviders() string {
	for _, providerConfig := range h.cfg.Providers {
		if providerConfig.APIKey != "" {
			return "healthy"
		}
	}
	return "unhealthy"
}
