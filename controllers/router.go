package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	reqlog "github.com/blogem/corpdata-hub/middleware"
)

// NewRouter configures the admin routes
func NewRouter(ctrl *Controllers, logger logrus.FieldLogger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(reqlog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", ctrl.Health.Index)
	r.Get("/stats", ctrl.Stats.Index)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	return r
}
