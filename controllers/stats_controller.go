package controllers

import (
	"net/http"
)

// StatsController exposes connection and subscriber counters
type StatsController struct {
	source StatsSource
}

// NewStatsController creates a new stats controller
func NewStatsController(source StatsSource) *StatsController {
	return &StatsController{source: source}
}

// Index handles GET /stats
func (c *StatsController) Index(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, c.source.Stats())
}
