package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/blogem/corpdata-hub/repositories"
	"github.com/blogem/corpdata-hub/server"
)

// StatsSource reports live dispatcher counters
type StatsSource interface {
	Stats() server.Stats
}

// renderJSON writes data as a JSON document with the given status code
func renderJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// Controllers holds all controller instances
type Controllers struct {
	Health *HealthController
	Stats  *StatsController
}

// NewControllers creates and initializes all controller instances
func NewControllers(items repositories.ItemRepository, stats StatsSource, logger logrus.FieldLogger) *Controllers {
	return &Controllers{
		Health: NewHealthController(items, logger),
		Stats:  NewStatsController(stats),
	}
}
