package calendar

import "time"

// ParticipationStatus mirrors the ICS PARTSTAT vocabulary. It doubles as the
// event-level status: the viewing user's RSVP state when one is discoverable.
type ParticipationStatus string

const (
	StatusAccepted    ParticipationStatus = "ACCEPTED"
	StatusDeclined    ParticipationStatus = "DECLINED"
	StatusTentative   ParticipationStatus = "TENTATIVE"
	StatusNeedsAction ParticipationStatus = "NEEDS-ACTION"
	StatusDelegated   ParticipationStatus = "DELEGATED"
)

// MeetingType classifies a detected conferencing link.
type MeetingType string

const (
	MeetingZoom       MeetingType = "zoom"
	MeetingTeams      MeetingType = "teams"
	MeetingGoogleMeet MeetingType = "google-meet"
	MeetingOther      MeetingType = "other"
)

// Source describes one remote ICS feed. The URL doubles as the cache key.
type Source struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Color string `json:"color"`
	Owner string `json:"owner"`
}

// Attendee is one ATTENDEE entry of an event. Email is the identity key
// within an event, case-sensitive as given by the feed.
type Attendee struct {
	Email  string              `json:"email"`
	Name   string              `json:"name,omitempty"`
	Status ParticipationStatus `json:"status,omitempty"`
}

// Event is a single parsed VEVENT. Source holds the display name of the feed
// the event came from; after merging it may be a comma-joined list of names.
// ID is the feed-provided UID and is not unique across feeds.
type Event struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Start       time.Time           `json:"start"`
	End         time.Time           `json:"end"`
	Location    string              `json:"location,omitempty"`
	Attendees   []Attendee          `json:"attendees"`
	Organizer   string              `json:"organizer,omitempty"`
	Status      ParticipationStatus `json:"status,omitempty"`
	MeetingLink string              `json:"meetingLink,omitempty"`
	MeetingType MeetingType         `json:"meetingType,omitempty"`
	Source      string              `json:"source"`
	IsRecurring bool                `json:"isRecurring"`
	URL         string              `json:"url,omitempty"`
}
