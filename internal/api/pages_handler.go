package api

import (
	"net/http"

	"github.com/jc230285/s42-dashboard/internal/auth"
	"github.com/jc230285/s42-dashboard/internal/http/errors"
	"github.com/jc230285/s42-dashboard/internal/store"
)

type pageView struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Pages returns the dashboard pages visible to the caller. A page with no
// allowed groups is visible to everyone; otherwise the caller needs at least
// one of the page's groups.
func (h *Handler) Pages(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	pages, err := h.store.Pages.List(r.Context())
	if err != nil {
		errors.InternalError(w, r, err, "list pages")
		return
	}

	views := make([]pageView, 0, len(pages))
	for _, p := range pages {
		if !pageVisible(p, user.Groups) {
			continue
		}
		views = append(views, pageView{Slug: p.Slug, Title: p.Title, Path: p.Path})
	}
	h.writeJSON(w, r, http.StatusOK, views)
}

func pageVisible(p store.Page, groups []string) bool {
	if len(p.AllowedGroups) == 0 {
		return true
	}
	for _, allowed := range p.AllowedGroups {
		for _, g := range groups {
			if g == allowed {
				return true
			}
		}
	}
	return false
}
