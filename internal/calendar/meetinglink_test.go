package calendar

import "testing"

func TestExtractMeetingLink(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLink string
		wantType MeetingType
		wantOK   bool
	}{
		{
			"zoom in prose",
			"Join us at https://zoom.us/j/123456789 before 10am",
			"https://zoom.us/j/123456789", MeetingZoom, true,
		},
		{
			"zoom subdomain",
			"https://company.zoom.us/j/987?pwd=abc",
			"https://company.zoom.us/j/987?pwd=abc", MeetingZoom, true,
		},
		{
			"teams",
			"link: https://teams.microsoft.com/l/meetup-join/xyz",
			"https://teams.microsoft.com/l/meetup-join/xyz", MeetingTeams, true,
		},
		{
			"google meet",
			"https://meet.google.com/abc-defg-hij",
			"https://meet.google.com/abc-defg-hij", MeetingGoogleMeet, true,
		},
		{
			"stops at closing paren",
			"(https://zoom.us/j/555)",
			"https://zoom.us/j/555", MeetingZoom, true,
		},
		{
			"stops at quote",
			`href="https://meet.google.com/abc"`,
			"https://meet.google.com/abc", MeetingGoogleMeet, true,
		},
		{
			"stops at angle bracket",
			"<https://zoom.us/j/1>",
			"https://zoom.us/j/1", MeetingZoom, true,
		},
		{
			"no link",
			"Conference room 4B",
			"", "", false,
		},
		{
			"unrelated url",
			"https://example.com/agenda",
			"", "", false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			link, typ, ok := extractMeetingLink(tc.text)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if link != tc.wantLink {
				t.Errorf("link = %q, want %q", link, tc.wantLink)
			}
			if typ != tc.wantType {
				t.Errorf("type = %q, want %q", typ, tc.wantType)
			}
		})
	}
}

func TestExtractMeetingLinkPriority(t *testing.T) {
	// Zoom outranks teams outranks google meet regardless of position in the
	// text.
	text := "backup https://meet.google.com/xyz then https://teams.microsoft.com/l/1 main https://zoom.us/j/1"
	link, typ, ok := extractMeetingLink(text)
	if !ok || typ != MeetingZoom {
		t.Fatalf("got (%q, %q, %v), want zoom match", link, typ, ok)
	}

	noZoom := "backup https://meet.google.com/xyz then https://teams.microsoft.com/l/1"
	_, typ, _ = extractMeetingLink(noZoom)
	if typ != MeetingTeams {
		t.Errorf("type = %q, want teams when no zoom link present", typ)
	}
}
