package screenplay

import "strings"

const titleMarker = "TITLE:"

// StripQuotes removes one layer of surrounding quote characters from a title.
// Models frequently wrap short answers in quotes despite instructions.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		trimmed := strings.TrimPrefix(s, "“")
		trimmed = strings.TrimSuffix(trimmed, "”")
		if trimmed == s {
			break
		}
		s = strings.TrimSpace(trimmed)
	}
	return s
}

// SplitTitleMarker extracts a leading 'TITLE: ...' marker line from raw model
// output, returning the title and the remaining body. The heuristic is
// deliberately confined to this function; a missing marker is a normal
// outcome, not an error.
func SplitTitleMarker(raw string) (title, body string, ok bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", "", false
	}

	line, rest, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(strings.ToUpper(line), titleMarker) {
		return "", "", false
	}

	title = StripQuotes(strings.TrimSpace(line[len(titleMarker):]))
	if title == "" {
		return "", "", false
	}
	return title, strings.TrimSpace(rest), true
}
