package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jc230285/s42-dashboard/internal/store"
)

type fakeTokenRepo struct {
	tokens  map[int64]*store.APIToken
	revoked []int64
}

func newFakeTokenRepo(tokens ...store.APIToken) *fakeTokenRepo {
	f := &fakeTokenRepo{tokens: make(map[int64]*store.APIToken)}
	for i := range tokens {
		t := tokens[i]
		f.tokens[t.ID] = &t
	}
	return f
}

func (f *fakeTokenRepo) Create(ctx context.Context, token store.APIToken) (*store.APIToken, error) {
	token.ID = int64(len(f.tokens) + 1)
	token.CreatedAt = time.Now()
	f.tokens[token.ID] = &token
	return &token, nil
}

func (f *fakeTokenRepo) ListByUser(ctx context.Context, userID int64) ([]store.APIToken, error) {
	var out []store.APIToken
	for id := int64(1); id <= int64(len(f.tokens)); id++ {
		if t, ok := f.tokens[id]; ok && t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTokenRepo) FindValidByUser(ctx context.Context, userID int64) ([]store.APIToken, error) {
	all, _ := f.ListByUser(ctx, userID)
	var out []store.APIToken
	for _, t := range all {
		if t.RevokedAt == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTokenRepo) GetByID(ctx context.Context, id int64) (*store.APIToken, error) {
	t, ok := f.tokens[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t, nil
}

func (f *fakeTokenRepo) Revoke(ctx context.Context, id int64) error {
	t, ok := f.tokens[id]
	if !ok {
		return store.ErrNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	f.revoked = append(f.revoked, id)
	return nil
}

func (f *fakeTokenRepo) TouchLastUsed(ctx context.Context, id int64) error {
	return nil
}

func TestListTokensHidesHashes(t *testing.T) {
	repo := newFakeTokenRepo(
		store.APIToken{ID: 1, UserID: 7, Label: "ci", TokenHash: "$2a$10$secret"},
		store.APIToken{ID: 2, UserID: 8, Label: "other"},
	)
	h := newTestHandler(&store.Store{APITokens: repo})

	req := withTestUser(httptest.NewRequest(http.MethodGet, "/api/tokens", nil), 7)
	rec := httptest.NewRecorder()
	h.ListTokens(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Error("response leaked a token hash")
	}

	var views []tokenView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 1 || views[0].Label != "ci" {
		t.Fatalf("views = %+v, want only the caller's tokens", views)
	}
}

func revokeTokenRequest(t *testing.T, h *Handler, userID int64, id string) *httptest.ResponseRecorder {
	t.Helper()
	req := withTestUser(httptest.NewRequest(http.MethodDelete, "/api/tokens/"+id, nil), userID)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h.RevokeToken(rec, req)
	return rec
}

func TestRevokeToken(t *testing.T) {
	repo := newFakeTokenRepo(store.APIToken{ID: 5, UserID: 7, Label: "ci"})
	h := newTestHandler(&store.Store{APITokens: repo})

	if rec := revokeTokenRequest(t, h, 9, "5"); rec.Code != http.StatusNotFound {
		t.Errorf("revoke another user's token: status = %d, want 404", rec.Code)
	}
	if rec := revokeTokenRequest(t, h, 7, "5"); rec.Code != http.StatusNoContent {
		t.Errorf("revoke own token: status = %d, want 204", rec.Code)
	}
	if len(repo.revoked) != 1 || repo.revoked[0] != 5 {
		t.Errorf("revoked = %v", repo.revoked)
	}
	if rec := revokeTokenRequest(t, h, 7, "99"); rec.Code != http.StatusNotFound {
		t.Errorf("revoke unknown token: status = %d, want 404", rec.Code)
	}
}
