package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jc230285/s42-dashboard/internal/auth"
	"github.com/jc230285/s42-dashboard/internal/http/errors"
)

type sessionView struct {
	ID         string    `json:"id"`
	UserAgent  string    `json:"userAgent,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
	Current    bool      `json:"current"`
}

// Sessions lists the caller's active sessions, flagging the current one.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	currentID := auth.SessionIDFromContext(r.Context())

	sessions, err := h.store.Sessions.ListByUser(r.Context(), user.ID)
	if err != nil {
		errors.InternalError(w, r, err, "list sessions")
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		v := sessionView{
			ID:         s.ID,
			CreatedAt:  s.CreatedAt,
			ExpiresAt:  s.ExpiresAt,
			LastSeenAt: s.LastSeenAt,
			Current:    s.ID == currentID,
		}
		if s.UserAgent != nil {
			v.UserAgent = *s.UserAgent
		}
		if s.IPAddress != nil {
			v.IPAddress = *s.IPAddress
		}
		views = append(views, v)
	}
	h.writeJSON(w, r, http.StatusOK, views)
}

// RevokeSession revokes one of the caller's sessions.
func (h *Handler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, _ := auth.UserFromContext(r.Context())

	session, err := h.store.Sessions.GetByID(r.Context(), id)
	if err != nil || session.UserID != user.ID {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	if err := h.store.Sessions.Revoke(r.Context(), id); err != nil {
		errors.InternalError(w, r, err, "revoke session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RevokeAllSessions revokes every session belonging to the caller, including
// the current one.
func (h *Handler) RevokeAllSessions(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	if err := h.store.Sessions.RevokeAllForUser(r.Context(), user.ID); err != nil {
		errors.InternalError(w, r, err, "revoke all sessions")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
