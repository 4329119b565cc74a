package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jc230285/s42-dashboard/internal/auth"
	"github.com/jc230285/s42-dashboard/internal/http/errors"
	"github.com/jc230285/s42-dashboard/internal/store"
)

type tokenView struct {
	ID         int64      `json:"id"`
	Label      string     `json:"label"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

func toTokenView(t store.APIToken) tokenView {
	return tokenView{
		ID:         t.ID,
		Label:      t.Label,
		CreatedAt:  t.CreatedAt,
		ExpiresAt:  t.ExpiresAt,
		RevokedAt:  t.RevokedAt,
		LastUsedAt: t.LastUsedAt,
	}
}

// ListTokens returns the caller's API tokens. Hashes are never exposed.
func (h *Handler) ListTokens(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	tokens, err := h.store.APITokens.ListByUser(r.Context(), user.ID)
	if err != nil {
		errors.InternalError(w, r, err, "list api tokens")
		return
	}

	views := make([]tokenView, 0, len(tokens))
	for _, t := range tokens {
		views = append(views, toTokenView(t))
	}
	h.writeJSON(w, r, http.StatusOK, views)
}

// CreateToken mints a new API token. The plaintext token appears in this
// response only.
func (h *Handler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label     string `json:"label"`
		ExpiresAt string `json:"expiresAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.InternalError(w, r, err, "decode create token request")
		return
	}

	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		errors.BadRequestError(w, r, fmt.Errorf("empty label"), "Label is required")
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			errors.BadRequestError(w, r, err, "Invalid expiry date")
			return
		}
		expiresAt = &t
	}

	user, _ := auth.UserFromContext(r.Context())
	token, plaintext, err := h.authService.IssueAPIToken(r.Context(), user.ID, req.Label, expiresAt)
	if err != nil {
		errors.InternalError(w, r, err, "issue api token")
		return
	}

	h.writeJSON(w, r, http.StatusCreated, struct {
		tokenView
		Token string `json:"token"`
	}{toTokenView(*token), plaintext})
}

// RevokeToken revokes one of the caller's tokens.
func (h *Handler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		errors.BadRequestError(w, r, err, "Invalid token id")
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	token, err := h.store.APITokens.GetByID(r.Context(), id)
	if err != nil || token.UserID != user.ID {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	if err := h.store.APITokens.Revoke(r.Context(), id); err != nil {
		errors.InternalError(w, r, err, "revoke api token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
