package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blogem/corpdata-hub/repositories"
)

const healthCheckTimeout = 2 * time.Second

// HealthController reports whether the data store is reachable
type HealthController struct {
	items  repositories.ItemRepository
	logger logrus.FieldLogger
}

// NewHealthController creates a new health controller
func NewHealthController(items repositories.ItemRepository, logger logrus.FieldLogger) *HealthController {
	return &HealthController{
		items:  items,
		logger: logger,
	}
}

// Index handles GET /health
func (c *HealthController) Index(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := c.items.Ping(ctx); err != nil {
		c.logger.WithError(err).Warn("health check failed")
		renderJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"service": "corpdata-hub",
			"error":   err.Error(),
		})
		return
	}

	renderJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "corpdata-hub",
	})
}
