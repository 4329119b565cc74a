package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/jc230285/s42-dashboard/internal/config"
	"github.com/jc230285/s42-dashboard/internal/store"
)

const stateCookieName = "s42_oauth_state"

// Service encapsulates the OIDC login flow and request authentication for
// both browser sessions and API tokens.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	sessions *SessionManager
	verifier *oidc.IDTokenVerifier
	oauth    oauth2.Config
	secure   bool
}

// NewService discovers the OIDC provider and prepares the OAuth2 exchange
// configuration. The identity provider is the system's source of truth for
// who a user is and which groups they belong to.
func NewService(ctx context.Context, cfg *config.Config, st *store.Store, sessions *SessionManager) (*Service, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OAuth.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}

	return &Service{
		cfg:      cfg,
		store:    st,
		sessions: sessions,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.OAuth.ClientID}),
		oauth: oauth2.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  strings.TrimSuffix(cfg.BaseURL, "/") + cfg.OAuth.RedirectPath,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		secure: strings.HasPrefix(cfg.BaseURL, "https://"),
	}, nil
}

// BeginOAuth starts the OIDC authorization code flow.
func (s *Service) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	state, err := randomToken()
	if err != nil {
		http.Error(w, "failed to start login", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

// HandleOAuthCallback completes the code flow: it validates state, exchanges
// the code, verifies the ID token, upserts the user with their group claims
// and starts a session.
func (s *Service) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "invalid oauth state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	ctx := r.Context()
	token, err := s.oauth.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		slog.Warn("oauth code exchange failed", "err", err)
		http.Error(w, "login failed", http.StatusBadGateway)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "login failed: no id_token in response", http.StatusBadGateway)
		return
	}

	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		slog.Warn("id token verification failed", "err", err)
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	email, name, groups, err := s.extractClaims(idToken)
	if err != nil {
		slog.Warn("id token claims rejected", "err", err)
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	user, err := s.store.Users.UpsertOAuthUser(ctx, idToken.Subject, email, name, groups)
	if err != nil {
		slog.Error("user upsert failed", "subject", idToken.Subject, "err", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	sessionID := uuid.NewString()
	ua := r.UserAgent()
	ip := clientIP(r)
	session := store.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(sessionLifetime),
	}
	if ua != "" {
		session.UserAgent = &ua
	}
	if ip != "" {
		session.IPAddress = &ip
	}
	if err := s.store.Sessions.Create(ctx, session); err != nil {
		slog.Error("session create failed", "user_id", user.ID, "err", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	if err := s.sessions.Issue(w, sessionID); err != nil {
		slog.Error("session cookie issue failed", "err", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "email", email)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Service) extractClaims(idToken *oidc.IDToken) (email, name string, groups []string, err error) {
	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return "", "", nil, err
	}

	email, _ = claims["email"].(string)
	if email == "" {
		return "", "", nil, errors.New("id token has no email claim")
	}
	name, _ = claims["name"].(string)

	if raw, ok := claims[s.cfg.OAuth.GroupsClaim].([]any); ok {
		for _, g := range raw {
			if str, ok := g.(string); ok && str != "" {
				groups = append(groups, str)
			}
		}
	}
	return email, name, groups, nil
}

// Logout revokes the server-side session and clears the cookie.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	if id := SessionIDFromContext(r.Context()); id != "" {
		if err := s.store.Sessions.Revoke(r.Context(), id); err != nil {
			slog.Warn("session revoke failed", "session_id", id, "err", err)
		}
	}
	s.sessions.Clear(w)
	http.Redirect(w, r, "/auth/login", http.StatusFound)
}

// authenticateSession resolves the request's cookie to a live user.
func (s *Service) authenticateSession(r *http.Request) (*store.User, string, bool) {
	sessionID, ok := s.sessions.CurrentSessionID(r)
	if !ok {
		return nil, "", false
	}

	session, err := s.store.Sessions.GetByID(r.Context(), sessionID)
	if err != nil || session.RevokedAt != nil || session.ExpiresAt.Before(time.Now()) {
		return nil, "", false
	}

	user, err := s.store.Users.GetByID(r.Context(), session.UserID)
	if err != nil {
		return nil, "", false
	}

	if err := s.store.Sessions.TouchLastSeen(r.Context(), sessionID); err != nil {
		slog.Warn("session touch failed", "session_id", sessionID, "err", err)
	}
	return user, sessionID, true
}

// RequireSession gates browser routes behind a valid session cookie.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, sessionID, ok := s.authenticateSession(r)
		if !ok {
			http.Redirect(w, r, "/auth/login", http.StatusFound)
			return
		}
		ctx := WithUser(r.Context(), user)
		ctx = WithSessionID(ctx, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAPIAuth gates API routes. A Bearer API token is checked first; a
// session cookie is accepted as a fallback so the dashboard UI can call the
// same endpoints. Unauthenticated requests get a bare 401 without touching
// the handler.
func (s *Service) RequireAPIAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			user, err := s.ValidateAPIToken(r.Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
			return
		}

		user, sessionID, ok := s.authenticateSession(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := WithUser(r.Context(), user)
		ctx = WithSessionID(ctx, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireGroup gates a route behind membership of one of the given groups.
// Must run after RequireSession/RequireAPIAuth.
func (s *Service) RequireGroup(groups ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			for _, want := range groups {
				for _, have := range user.Groups {
					if have == want {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

// IssueAPIToken mints a new API token for a user and returns the stored
// record plus the plaintext secret, which is shown once and never persisted.
// The wire format is "<id>.<secret>" so validation can look up the hash
// directly.
func (s *Service) IssueAPIToken(ctx context.Context, userID int64, label string, expiresAt *time.Time) (*store.APIToken, string, error) {
	secret, err := randomToken()
	if err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash api token: %w", err)
	}

	token, err := s.store.APITokens.Create(ctx, store.APIToken{
		UserID:    userID,
		Label:     label,
		TokenHash: string(hash),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, "", err
	}

	return token, fmt.Sprintf("%d.%s", token.ID, secret), nil
}

// ValidateAPIToken checks a presented "<id>.<secret>" token against the
// stored bcrypt hash and returns the owning user.
func (s *Service) ValidateAPIToken(ctx context.Context, presented string) (*store.User, error) {
	idPart, secret, ok := strings.Cut(presented, ".")
	if !ok || secret == "" {
		return nil, errors.New("malformed api token")
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return nil, errors.New("malformed api token")
	}

	token, err := s.store.APITokens.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("unknown api token")
	}
	if token.RevokedAt != nil {
		return nil, errors.New("api token revoked")
	}
	if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("api token expired")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(token.TokenHash), []byte(secret)); err != nil {
		return nil, errors.New("invalid api token")
	}

	if err := s.store.APITokens.TouchLastUsed(ctx, token.ID); err != nil {
		slog.Warn("api token touch failed", "token_id", token.ID, "err", err)
	}

	return s.store.Users.GetByID(ctx, token.UserID)
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
