package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jc230285/s42-dashboard/internal/store"
)

type fakePageRepo struct {
	pages []store.Page
	err   error
}

func (f *fakePageRepo) List(ctx context.Context) ([]store.Page, error) {
	return f.pages, f.err
}

func TestPagesVisibility(t *testing.T) {
	repo := &fakePageRepo{pages: []store.Page{
		{Slug: "dashboard", Title: "Dashboard", Path: "/"},
		{Slug: "projects", Title: "Projects", Path: "/projects", AllowedGroups: []string{"scalearth", "admins"}},
		{Slug: "users", Title: "Users", Path: "/users", AllowedGroups: []string{"admins"}},
	}}
	h := newTestHandler(&store.Store{Pages: repo})

	tests := []struct {
		name   string
		groups []string
		want   []string
	}{
		{"no groups", nil, []string{"dashboard"}},
		{"scalearth member", []string{"scalearth"}, []string{"dashboard", "projects"}},
		{"admin", []string{"admins"}, []string{"dashboard", "projects", "users"}},
		{"unrelated group", []string{"guests"}, []string{"dashboard"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := withTestUser(httptest.NewRequest(http.MethodGet, "/api/pages", nil), 1, tc.groups...)
			rec := httptest.NewRecorder()
			h.Pages(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var views []pageView
			if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
				t.Fatalf("decode: %v", err)
			}
			var slugs []string
			for _, v := range views {
				slugs = append(slugs, v.Slug)
			}
			if len(slugs) != len(tc.want) {
				t.Fatalf("slugs = %v, want %v", slugs, tc.want)
			}
			for i := range slugs {
				if slugs[i] != tc.want[i] {
					t.Fatalf("slugs = %v, want %v", slugs, tc.want)
				}
			}
		})
	}
}
