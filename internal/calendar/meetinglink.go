package calendar

import "regexp"

// Conferencing link detection. The patterns are evaluated in order and the
// first match wins, so zoom outranks teams which outranks google meet when a
// text mentions several. URLs are matched up to the first whitespace, quote,
// paren or angle bracket so links survive being embedded in prose.
var meetingLinkPatterns = []struct {
	Type    MeetingType
	Pattern *regexp.Regexp
}{
	{MeetingZoom, regexp.MustCompile(`https?://[^\s"'<>()]*zoom\.us/[^\s"'<>()]*`)},
	{MeetingTeams, regexp.MustCompile(`https?://[^\s"'<>()]*teams\.microsoft\.com/[^\s"'<>()]*`)},
	{MeetingGoogleMeet, regexp.MustCompile(`https?://[^\s"'<>()]*meet\.google\.com/[^\s"'<>()]*`)},
}

// extractMeetingLink scans free text for a known conferencing URL.
func extractMeetingLink(text string) (string, MeetingType, bool) {
	for _, p := range meetingLinkPatterns {
		if m := p.Pattern.FindString(text); m != "" {
			return m, p.Type, true
		}
	}
	return "", "", false
}
