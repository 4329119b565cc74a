package store

import "context"

// UserRepository defines persistence operations for users.
type UserRepository interface {
	UpsertOAuthUser(ctx context.Context, subject, email, displayName string, groups []string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// SessionRepository tracks server-side browser sessions.
type SessionRepository interface {
	Create(ctx context.Context, session Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	ListByUser(ctx context.Context, userID int64) ([]Session, error)
	TouchLastSeen(ctx context.Context, id string) error
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// APITokenRepository handles hashed API token storage.
type APITokenRepository interface {
	Create(ctx context.Context, token APIToken) (*APIToken, error)
	ListByUser(ctx context.Context, userID int64) ([]APIToken, error)
	FindValidByUser(ctx context.Context, userID int64) ([]APIToken, error)
	GetByID(ctx context.Context, id int64) (*APIToken, error)
	Revoke(ctx context.Context, id int64) error
	TouchLastUsed(ctx context.Context, id int64) error
}

// CalendarSourceRepository manages a user's saved feed descriptors.
type CalendarSourceRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]CalendarSource, error)
	Create(ctx context.Context, src CalendarSource) (*CalendarSource, error)
	Delete(ctx context.Context, userID, id int64) error
}

// PageRepository lists dashboard pages for visibility filtering.
type PageRepository interface {
	List(ctx context.Context) ([]Page, error)
}
