package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// userRepo implements UserRepository.
type userRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `id, oauth_subject, primary_email, display_name, groups, created_at, last_login_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.OAuthSubject, &u.PrimaryEmail, &u.DisplayName, &u.Groups, &u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *userRepo) UpsertOAuthUser(ctx context.Context, subject, email, displayName string, groups []string) (*User, error) {
	defer observeDB(ctx, "users.upsert_oauth")()
	if groups == nil {
		groups = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (oauth_subject, primary_email, display_name, groups)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (oauth_subject) DO UPDATE SET
			primary_email = EXCLUDED.primary_email,
			display_name = EXCLUDED.display_name,
			groups = EXCLUDED.groups,
			last_login_at = now()
		RETURNING `+userColumns,
		subject, email, displayName, groups)
	return scanUser(row)
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	defer observeDB(ctx, "users.get_by_id")()
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	defer observeDB(ctx, "users.get_by_email")()
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE primary_email = $1`, email)
	return scanUser(row)
}

// sessionRepo implements SessionRepository.
type sessionRepo struct {
	pool *pgxpool.Pool
}

const sessionColumns = `id, user_id, user_agent, ip_address, created_at, expires_at, last_seen_at, revoked_at`

func (r *sessionRepo) Create(ctx context.Context, session Session) error {
	defer observeDB(ctx, "sessions.create")()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.UserID, session.UserAgent, session.IPAddress, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*Session, error) {
	defer observeDB(ctx, "sessions.get_by_id")()
	var s Session
	err := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.UserAgent, &s.IPAddress, &s.CreatedAt, &s.ExpiresAt, &s.LastSeenAt, &s.RevokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (r *sessionRepo) ListByUser(ctx context.Context, userID int64) ([]Session, error) {
	defer observeDB(ctx, "sessions.list_by_user")()
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > now()
		ORDER BY last_seen_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.UserAgent, &s.IPAddress, &s.CreatedAt, &s.ExpiresAt, &s.LastSeenAt, &s.RevokedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepo) TouchLastSeen(ctx context.Context, id string) error {
	defer observeDB(ctx, "sessions.touch_last_seen")()
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET last_seen_at = now() WHERE id = $1`, id)
	return err
}

func (r *sessionRepo) Revoke(ctx context.Context, id string) error {
	defer observeDB(ctx, "sessions.revoke")()
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	return err
}

func (r *sessionRepo) RevokeAllForUser(ctx context.Context, userID int64) error {
	defer observeDB(ctx, "sessions.revoke_all")()
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	return err
}

// apiTokenRepo implements APITokenRepository.
type apiTokenRepo struct {
	pool *pgxpool.Pool
}

const apiTokenColumns = `id, user_id, label, token_hash, created_at, expires_at, revoked_at, last_used_at`

func scanAPIToken(row pgx.Row) (*APIToken, error) {
	var t APIToken
	err := row.Scan(&t.ID, &t.UserID, &t.Label, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt, &t.RevokedAt, &t.LastUsedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan api token: %w", err)
	}
	return &t, nil
}

func (r *apiTokenRepo) Create(ctx context.Context, token APIToken) (*APIToken, error) {
	defer observeDB(ctx, "api_tokens.create")()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO api_tokens (user_id, label, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+apiTokenColumns,
		token.UserID, token.Label, token.TokenHash, token.ExpiresAt)
	return scanAPIToken(row)
}

func (r *apiTokenRepo) listByUser(ctx context.Context, userID int64, onlyValid bool) ([]APIToken, error) {
	q := `SELECT ` + apiTokenColumns + ` FROM api_tokens WHERE user_id = $1`
	if onlyValid {
		q += ` AND revoked_at IS NULL AND (expires_at IS NULL OR expires_at > now())`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list api tokens: %w", err)
	}
	defer rows.Close()

	var tokens []APIToken
	for rows.Next() {
		var t APIToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Label, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt, &t.RevokedAt, &t.LastUsedAt); err != nil {
			return nil, fmt.Errorf("scan api token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *apiTokenRepo) ListByUser(ctx context.Context, userID int64) ([]APIToken, error) {
	defer observeDB(ctx, "api_tokens.list_by_user")()
	return r.listByUser(ctx, userID, false)
}

func (r *apiTokenRepo) FindValidByUser(ctx context.Context, userID int64) ([]APIToken, error) {
	defer observeDB(ctx, "api_tokens.find_valid")()
	return r.listByUser(ctx, userID, true)
}

func (r *apiTokenRepo) GetByID(ctx context.Context, id int64) (*APIToken, error) {
	defer observeDB(ctx, "api_tokens.get_by_id")()
	row := r.pool.QueryRow(ctx, `SELECT `+apiTokenColumns+` FROM api_tokens WHERE id = $1`, id)
	return scanAPIToken(row)
}

func (r *apiTokenRepo) Revoke(ctx context.Context, id int64) error {
	defer observeDB(ctx, "api_tokens.revoke")()
	_, err := r.pool.Exec(ctx, `UPDATE api_tokens SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	return err
}

func (r *apiTokenRepo) TouchLastUsed(ctx context.Context, id int64) error {
	defer observeDB(ctx, "api_tokens.touch_last_used")()
	_, err := r.pool.Exec(ctx, `UPDATE api_tokens SET last_used_at = now() WHERE id = $1`, id)
	return err
}

// calendarSourceRepo implements CalendarSourceRepository.
type calendarSourceRepo struct {
	pool *pgxpool.Pool
}

const calendarSourceColumns = `id, user_id, name, url, color, owner_label, created_at`

func (r *calendarSourceRepo) ListByUser(ctx context.Context, userID int64) ([]CalendarSource, error) {
	defer observeDB(ctx, "calendar_sources.list_by_user")()
	rows, err := r.pool.Query(ctx, `
		SELECT `+calendarSourceColumns+` FROM calendar_sources
		WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list calendar sources: %w", err)
	}
	defer rows.Close()

	var sources []CalendarSource
	for rows.Next() {
		var s CalendarSource
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.URL, &s.Color, &s.OwnerLabel, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan calendar source: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *calendarSourceRepo) Create(ctx context.Context, src CalendarSource) (*CalendarSource, error) {
	defer observeDB(ctx, "calendar_sources.create")()
	var out CalendarSource
	err := r.pool.QueryRow(ctx, `
		INSERT INTO calendar_sources (user_id, name, url, color, owner_label)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+calendarSourceColumns,
		src.UserID, src.Name, src.URL, src.Color, src.OwnerLabel).
		Scan(&out.ID, &out.UserID, &out.Name, &out.URL, &out.Color, &out.OwnerLabel, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create calendar source: %w", err)
	}
	return &out, nil
}

func (r *calendarSourceRepo) Delete(ctx context.Context, userID, id int64) error {
	defer observeDB(ctx, "calendar_sources.delete")()
	tag, err := r.pool.Exec(ctx, `DELETE FROM calendar_sources WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete calendar source: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// pageRepo implements PageRepository.
type pageRepo struct {
	pool *pgxpool.Pool
}

func (r *pageRepo) List(ctx context.Context) ([]Page, error) {
	defer observeDB(ctx, "pages.list")()
	rows, err := r.pool.Query(ctx, `
		SELECT id, slug, title, path, allowed_groups, sort_order
		FROM pages ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Path, &p.AllowedGroups, &p.SortOrder); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
