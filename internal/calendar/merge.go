package calendar

import (
	"strings"
	"time"
)

// Merge collapses events that describe the same occurrence observed through
// several feeds. Two events are the same occurrence iff their start instant
// and lower-cased trimmed title are equal; nothing else participates in
// identity. The output keeps first-seen order, so callers that sorted the
// input get sorted output back.
func Merge(events []Event) []Event {
	index := make(map[string]int, len(events))
	merged := make([]Event, 0, len(events))

	for _, ev := range events {
		key := ev.Start.Format(time.RFC3339) + "|" + strings.ToLower(strings.TrimSpace(ev.Title))
		i, seen := index[key]
		if !seen {
			index[key] = len(merged)
			rep := ev
			rep.Attendees = append([]Attendee(nil), ev.Attendees...)
			merged = append(merged, rep)
			continue
		}
		mergeInto(&merged[i], ev)
	}

	return merged
}

// mergeInto folds src into the first-seen representative. Attendees are
// unioned by email with the later event winning per email; organizer, meeting
// link and location are first-found; source names accumulate; differing
// descriptions are concatenated. Every other field keeps the representative's
// value.
func mergeInto(dst *Event, src Event) {
	for _, att := range src.Attendees {
		replaced := false
		for i := range dst.Attendees {
			if dst.Attendees[i].Email == att.Email {
				dst.Attendees[i] = att
				replaced = true
				break
			}
		}
		if !replaced {
			dst.Attendees = append(dst.Attendees, att)
		}
	}

	if dst.Organizer == "" {
		dst.Organizer = src.Organizer
	}
	if dst.MeetingLink == "" && src.MeetingLink != "" {
		dst.MeetingLink = src.MeetingLink
		dst.MeetingType = src.MeetingType
	}
	if src.Source != "" && !strings.Contains(dst.Source, src.Source) {
		dst.Source += ", " + src.Source
	}
	if src.Description != "" && src.Description != dst.Description {
		if dst.Description == "" {
			dst.Description = src.Description
		} else {
			dst.Description += "\n\n---\n" + src.Description
		}
	}
	if dst.Location == "" {
		dst.Location = src.Location
	}
}
