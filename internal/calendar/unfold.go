package calendar

import "strings"

// LineScanner yields logical iCalendar lines from raw feed text, reversing
// RFC5545 line folding. A physical line that begins with a single space or
// tab continues the previous logical line; the one leading whitespace byte is
// stripped and the rest is appended verbatim. Logical lines are trimmed of
// surrounding whitespace only when finalized.
//
// The scanner is forward-only, in the style of bufio.Scanner:
//
//	sc := NewLineScanner(raw)
//	for sc.Scan() {
//		line := sc.Text()
//	}
type LineScanner struct {
	physical []string
	pos      int
	current  string
}

func NewLineScanner(raw string) *LineScanner {
	if raw == "" {
		return &LineScanner{}
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	return &LineScanner{physical: strings.Split(raw, "\n")}
}

// Scan advances to the next logical line, folding in any continuation lines
// that follow it. A trailing continuation at end of input is still flushed.
func (s *LineScanner) Scan() bool {
	if s.pos >= len(s.physical) {
		return false
	}
	line := s.physical[s.pos]
	s.pos++
	for s.pos < len(s.physical) {
		next := s.physical[s.pos]
		if !strings.HasPrefix(next, " ") && !strings.HasPrefix(next, "\t") {
			break
		}
		line += next[1:]
		s.pos++
	}
	s.current = strings.TrimSpace(line)
	return true
}

// Text returns the logical line produced by the last call to Scan.
func (s *LineScanner) Text() string {
	return s.current
}
