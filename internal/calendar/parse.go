package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// VEVENT property parsing. The properties we care about are a small subset of
// RFC5545 and the feeds in the wild are loose about parameter ordering, so
// extraction is pattern-driven rather than a full grammar.

var (
	mailtoPattern   = regexp.MustCompile(`mailto:([^;]+)`)
	cnPattern       = regexp.MustCompile(`CN=([^;:]+)`)
	partstatPattern = regexp.MustCompile(`PARTSTAT=([A-Z-]+)`)
)

// ParseEvents consumes logical lines and extracts every complete VEVENT
// block. Events missing a title, start or end are dropped; everything outside
// BEGIN:VEVENT/END:VEVENT is ignored. All produced events carry the supplied
// source name.
func ParseEvents(sc *LineScanner, sourceName string) []Event {
	var events []Event
	var cur *Event

	for sc.Scan() {
		line := sc.Text()

		switch {
		case line == "BEGIN:VEVENT":
			cur = &Event{Source: sourceName, Attendees: []Attendee{}}
		case line == "END:VEVENT":
			if cur != nil && cur.Title != "" && !cur.Start.IsZero() && !cur.End.IsZero() {
				events = append(events, *cur)
			}
			cur = nil
		case cur == nil:
			// Calendar-level properties, VTIMEZONE blocks, etc.
		case strings.HasPrefix(line, "UID:"):
			cur.ID = strings.TrimPrefix(line, "UID:")
		case strings.HasPrefix(line, "SUMMARY:"):
			cur.Title = strings.TrimPrefix(line, "SUMMARY:")
		case strings.HasPrefix(line, "DTSTART"):
			if v, ok := propertyValue(line); ok {
				if t, err := parseICSDate(v); err == nil {
					cur.Start = t
				}
			}
		case strings.HasPrefix(line, "DTEND"):
			if v, ok := propertyValue(line); ok {
				if t, err := parseICSDate(v); err == nil {
					cur.End = t
				}
			}
		case strings.HasPrefix(line, "URL:"):
			cur.URL = strings.TrimPrefix(line, "URL:")
		case strings.HasPrefix(line, "ORGANIZER"):
			if org := parseOrganizer(line); org != "" {
				cur.Organizer = org
			}
		case strings.HasPrefix(line, "ATTENDEE"):
			if att, ok := parseAttendee(line); ok {
				cur.Attendees = append(cur.Attendees, att)
				// First PARTSTAT seen within the event doubles as the
				// event-level RSVP status unless STATUS: overrides it later.
				if cur.Status == "" && att.Status != "" {
					cur.Status = att.Status
				}
			}
		case strings.HasPrefix(line, "DESCRIPTION:"):
			desc := unescapeText(strings.TrimPrefix(line, "DESCRIPTION:"))
			cur.Description = desc
			if link, typ, ok := extractMeetingLink(desc); ok {
				cur.MeetingLink = link
				cur.MeetingType = typ
			}
		case strings.HasPrefix(line, "LOCATION:"):
			cur.Location = strings.TrimPrefix(line, "LOCATION:")
			if cur.MeetingLink == "" {
				if link, typ, ok := extractMeetingLink(cur.Location); ok {
					cur.MeetingLink = link
					cur.MeetingType = typ
				}
			}
		case strings.HasPrefix(line, "STATUS:"):
			switch strings.TrimPrefix(line, "STATUS:") {
			case "CANCELLED":
				cur.Status = StatusDeclined
			case "TENTATIVE":
				cur.Status = StatusTentative
			}
		case strings.HasPrefix(line, "RRULE:"):
			// Recurrence rules are flagged, never expanded.
			cur.IsRecurring = true
		}
	}

	return events
}

// ParseFeed unfolds and parses a raw ICS payload in one step.
func ParseFeed(raw, sourceName string) []Event {
	return ParseEvents(NewLineScanner(raw), sourceName)
}

// propertyValue returns the text after the first colon, skipping any property
// parameters (e.g. DTSTART;TZID=Europe/Oslo:20240301T090000).
func propertyValue(line string) (string, bool) {
	idx := strings.Index(line, ":")
	if idx == -1 {
		return "", false
	}
	return line[idx+1:], true
}

// parseOrganizer extracts a display string from an ORGANIZER property: the
// bare email when only a mailto is present, "Name <email>" when a CN
// parameter accompanies it, and "" when no email can be found.
func parseOrganizer(line string) string {
	email := ""
	if m := mailtoPattern.FindStringSubmatch(line); m != nil {
		email = m[1]
	}
	if email == "" {
		return ""
	}
	if m := cnPattern.FindStringSubmatch(line); m != nil {
		return fmt.Sprintf("%s <%s>", m[1], email)
	}
	return email
}

// parseAttendee extracts one attendee from an ATTENDEE property. The mailto
// email is required; CN and PARTSTAT are optional.
func parseAttendee(line string) (Attendee, bool) {
	m := mailtoPattern.FindStringSubmatch(line)
	if m == nil {
		return Attendee{}, false
	}
	att := Attendee{Email: m[1]}
	if c := cnPattern.FindStringSubmatch(line); c != nil {
		att.Name = c[1]
	}
	if p := partstatPattern.FindStringSubmatch(line); p != nil {
		att.Status = ParticipationStatus(p[1])
	}
	return att, true
}

// unescapeText reverses the ICS text escapes for newlines and commas.
func unescapeText(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\,`, ",")
	return s
}

// parseICSDate reads a DTSTART/DTEND value. Values containing a T are
// date-times: the T and any Z markers are stripped and the remainder is read
// as fixed-width YYYYMMDD[HHMMSS] fields, missing time fields defaulting to
// zero. Values without a T are all-day dates at local midnight. Any TZID
// parameter was already discarded by the caller and a trailing Z is not
// converted, so times are interpreted in the ambient local zone exactly as
// the feed wrote them.
func parseICSDate(value string) (time.Time, error) {
	digits := value
	if strings.ContainsAny(digits, "TZ") {
		digits = strings.Map(func(r rune) rune {
			if r == 'T' || r == 'Z' {
				return -1
			}
			return r
		}, digits)
	}
	if len(digits) < 8 {
		return time.Time{}, fmt.Errorf("datetime value too short: %q", value)
	}

	year, err := atoiField(digits[0:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime %q: %w", value, err)
	}
	month, err := atoiField(digits[4:6])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime %q: %w", value, err)
	}
	day, err := atoiField(digits[6:8])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime %q: %w", value, err)
	}

	var hour, minute, sec int
	if len(digits) >= 10 {
		if hour, err = atoiField(digits[8:10]); err != nil {
			return time.Time{}, fmt.Errorf("invalid datetime %q: %w", value, err)
		}
	}
	if len(digits) >= 12 {
		if minute, err = atoiField(digits[10:12]); err != nil {
			return time.Time{}, fmt.Errorf("invalid datetime %q: %w", value, err)
		}
	}
	if len(digits) >= 14 {
		if sec, err = atoiField(digits[12:14]); err != nil {
			return time.Time{}, fmt.Errorf("invalid datetime %q: %w", value, err)
		}
	}

	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.Local), nil
}

func atoiField(s string) (int, error) {
	return strconv.Atoi(s)
}
