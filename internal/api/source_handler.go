package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jc230285/s42-dashboard/internal/auth"
	"github.com/jc230285/s42-dashboard/internal/http/errors"
	"github.com/jc230285/s42-dashboard/internal/store"
)

type sourceView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Color     string    `json:"color"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
}

func toSourceView(s store.CalendarSource) sourceView {
	return sourceView{ID: s.ID, Name: s.Name, URL: s.URL, Color: s.Color, Owner: s.OwnerLabel, CreatedAt: s.CreatedAt}
}

// ListSources returns the caller's saved calendar sources.
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	sources, err := h.store.CalendarSources.ListByUser(r.Context(), user.ID)
	if err != nil {
		errors.InternalError(w, r, err, "list calendar sources")
		return
	}

	views := make([]sourceView, 0, len(sources))
	for _, s := range sources {
		views = append(views, toSourceView(s))
	}
	h.writeJSON(w, r, http.StatusOK, views)
}

// CreateSource saves a new calendar source for the caller.
func (h *Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		URL   string `json:"url"`
		Color string `json:"color"`
		Owner string `json:"owner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.InternalError(w, r, err, "decode create source request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)
	if req.Name == "" || req.URL == "" {
		errors.BadRequestError(w, r, fmt.Errorf("name=%q url=%q", req.Name, req.URL), "Name and URL are required")
		return
	}
	if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errors.BadRequestError(w, r, fmt.Errorf("unsupported url %q", req.URL), "URL must be http or https")
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	src, err := h.store.CalendarSources.Create(r.Context(), store.CalendarSource{
		UserID:     user.ID,
		Name:       req.Name,
		URL:        req.URL,
		Color:      req.Color,
		OwnerLabel: req.Owner,
	})
	if err != nil {
		errors.InternalError(w, r, err, "create calendar source")
		return
	}

	h.writeJSON(w, r, http.StatusCreated, toSourceView(*src))
}

// DeleteSource removes one of the caller's saved sources.
func (h *Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		errors.BadRequestError(w, r, err, "Invalid source id")
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	if err := h.store.CalendarSources.Delete(r.Context(), user.ID, id); err != nil {
		if err == store.ErrNotFound {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		errors.InternalError(w, r, err, "delete calendar source")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
