package store

import "time"

// User represents a person authenticated via the OIDC provider. Groups holds
// the provider's group-membership claims as of the last login and drives page
// visibility.
type User struct {
	ID           int64
	OAuthSubject string
	PrimaryEmail string
	DisplayName  string
	Groups       []string
	CreatedAt    time.Time
	LastLoginAt  time.Time
}

// Session is a server-side record of one browser session.
type Session struct {
	ID         string
	UserID     int64
	UserAgent  *string
	IPAddress  *string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastSeenAt time.Time
	RevokedAt  *time.Time
}

// APIToken is a per-client credential for non-interactive API access.
type APIToken struct {
	ID         int64
	UserID     int64
	Label      string
	TokenHash  string
	CreatedAt  time.Time
	ExpiresAt  *time.Time
	RevokedAt  *time.Time
	LastUsedAt *time.Time
}

// CalendarSource is a user's saved feed descriptor. OwnerLabel is the display
// attribution shown next to the feed, not a user reference.
type CalendarSource struct {
	ID         int64
	UserID     int64
	Name       string
	URL        string
	Color      string
	OwnerLabel string
	CreatedAt  time.Time
}

// Page is one dashboard page. An empty AllowedGroups list makes the page
// visible to every signed-in user; otherwise the user needs at least one of
// the listed groups.
type Page struct {
	ID            int64
	Slug          string
	Title         string
	Path          string
	AllowedGroups []string
	SortOrder     int
}
