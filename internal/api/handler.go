package api

import (
	"encoding/json"
	"net/http"

	"github.com/jc230285/s42-dashboard/internal/auth"
	"github.com/jc230285/s42-dashboard/internal/calendar"
	"github.com/jc230285/s42-dashboard/internal/config"
	"github.com/jc230285/s42-dashboard/internal/http/errors"
	"github.com/jc230285/s42-dashboard/internal/store"
)

// Handler serves the JSON API consumed by the dashboard frontend.
type Handler struct {
	cfg         *config.Config
	store       *store.Store
	authService *auth.Service
	aggregator  *calendar.Aggregator
}

func NewHandler(cfg *config.Config, store *store.Store, authService *auth.Service, aggregator *calendar.Aggregator) *Handler {
	return &Handler{cfg: cfg, store: store, authService: authService, aggregator: aggregator}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errors.LogError(r, "encode json response", err)
	}
}
