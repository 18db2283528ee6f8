package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize converts extracted text to NFC, collapses runs of horizontal
// whitespace into single spaces, collapses runs of blank lines into a single
// line break, and trims the result.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		collapsed := collapseSpaces(line)
		if collapsed == "" {
			continue
		}
		out = append(out, collapsed)
	}
	return strings.Join(out, "\n")
}

// collapseSpaces trims line and replaces every internal whitespace run,
// including non-breaking spaces, with one ASCII space.
func collapseSpaces(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	pending := false
	for _, r := range line {
		if unicode.IsSpace(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
