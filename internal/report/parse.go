package report

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMalformedResponse is returned only when a reply holds no usable text at
// all. Missing or garbled sections never produce it.
var ErrMalformedResponse = errors.New("malformed analysis response")

// Section labels requested from the analysis service.
const (
	LabelScore        = "Polarization score"
	LabelSummary      = "Main viewpoint summary"
	LabelBiases       = "Detected biases"
	LabelMissing      = "Missing perspectives"
	LabelAlternatives = "Alternative viewpoints"
)

var (
	// The number either follows on the label's line or opens a later line
	// after nothing but whitespace and emphasis markers.
	scoreRe = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(LabelScore) + `[*_]*\s*:(?:[^\d\n-]*|[*_\s]*)(-?\d+)`)

	labels = map[string]labelPattern{
		LabelSummary:      newLabelPattern(LabelSummary),
		LabelBiases:       newLabelPattern(LabelBiases),
		LabelMissing:      newLabelPattern(LabelMissing),
		LabelAlternatives: newLabelPattern(LabelAlternatives),
	}

	// A section ends at a Markdown heading, at a line opening one of the known
	// labels, or at a bare "Label:" line with nothing after the colon. Items
	// shaped like "Phrase: text" stay inside the section.
	headingRe    = regexp.MustCompile(`^\s*#{1,6}\s+\S`)
	bareLabelRe  = regexp.MustCompile(`^\s*[*_]{0,2}[A-Za-z][A-Za-z0-9 '’&/()-]{0,60}?[*_]{0,2}\s*:[*_]{0,2}\s*$`)
	knownLabelRe = regexp.MustCompile(`(?i)^[ \t>#*_]*(?:` + strings.Join([]string{
		regexp.QuoteMeta(LabelScore),
		regexp.QuoteMeta(LabelSummary),
		regexp.QuoteMeta(LabelBiases),
		regexp.QuoteMeta(LabelMissing),
		regexp.QuoteMeta(LabelAlternatives),
	}, "|") + `)[*_]*\s*(?::|$)`)

	bulletRe   = regexp.MustCompile(`^\s*(?:[-*•–]|\d{1,2}[.)])\s*`)
	sentenceRe = regexp.MustCompile(`^.*?[.!?]+["'”’)]*(?:\s|$)`)
	linkRe     = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]*)\)(.*)`)
)

// labelPattern finds a section label, preferring occurrences that open a
// line over mentions inside running text.
type labelPattern struct {
	lineStart *regexp.Regexp
	anywhere  *regexp.Regexp
}

func newLabelPattern(label string) labelPattern {
	tail := regexp.QuoteMeta(label) + `[*_]*\s*:?[*_]*`
	return labelPattern{
		lineStart: regexp.MustCompile(`(?im)^[ \t>#*_-]*` + tail),
		anywhere:  regexp.MustCompile(`(?i)` + tail),
	}
}

func (p labelPattern) find(text string) []int {
	if loc := p.lineStart.FindStringIndex(text); loc != nil {
		return loc
	}
	return p.anywhere.FindStringIndex(text)
}

// Parse extracts a Report from the reply text. Every section is located
// independently, so order and omissions don't matter; absent sections take
// their defaults.
func Parse(raw string) (Report, error) {
	if !utf8.ValidString(raw) {
		return Report{}, fmt.Errorf("%w: reply is not valid UTF-8 text", ErrMalformedResponse)
	}
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	return Report{
		PolarizationScore:     Score(text),
		Summary:               Summary(text),
		Biases:                List(text, LabelBiases),
		MissingPerspectives:   List(text, LabelMissing),
		AlternativeViewpoints: Viewpoints(text),
	}, nil
}

// Score returns the first integer after the score label, clamped to [MinScore, MaxScore], or DefaultScore when absent.
func Score(text string) int {
	m := scoreRe.FindStringSubmatch(text)
	if m == nil {
		return DefaultScore
	}
	n, err := strconv.Atoi(m[1])
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(m[1], "-") {
			return MinScore
		}
		return MaxScore
	}
	if err != nil {
		return DefaultScore
	}
	return clamp(n)
}

// Summary returns the first sentence of the summary section.
func Summary(text string) string {
	body, ok := Section(text, LabelSummary)
	if !ok {
		return ""
	}
	var parts []string
	for _, line := range strings.Split(body, "\n") {
		if s := strings.TrimSpace(bulletRe.ReplaceAllString(line, "")); s != "" {
			parts = append(parts, s)
		}
	}
	joined := strings.Join(parts, " ")
	if m := sentenceRe.FindString(joined); m != "" {
		return strings.TrimSpace(m)
	}
	return joined
}

// List returns up to MaxItems bullet items from the section named label.
func List(text, label string) []string {
	items := []string{}
	body, ok := Section(text, label)
	if !ok {
		return items
	}
	for _, line := range strings.Split(body, "\n") {
		item := strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		if item == "" {
			continue
		}
		items = append(items, item)
		if len(items) == MaxItems {
			break
		}
	}
	return items
}

// Viewpoints returns up to MaxItems alternative viewpoints. Lines holding a
// Markdown link yield title, URL and description; other lines become a
// bare title pointing at PlaceholderURL.
func Viewpoints(text string) []Viewpoint {
	out := []Viewpoint{}
	body, ok := Section(text, LabelAlternatives)
	if !ok {
		return out
	}
	for _, line := range strings.Split(body, "\n") {
		v, ok := viewpoint(line)
		if !ok {
			continue
		}
		out = append(out, v)
		if len(out) == MaxItems {
			break
		}
	}
	return out
}

func viewpoint(line string) (Viewpoint, bool) {
	stripped := strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
	if stripped == "" {
		return Viewpoint{}, false
	}
	m := linkRe.FindStringSubmatch(stripped)
	if m == nil {
		return Viewpoint{Title: stripped, URL: PlaceholderURL}, true
	}
	v := Viewpoint{
		Title:       strings.TrimSpace(m[1]),
		URL:         strings.TrimSpace(m[2]),
		Description: cleanDescription(m[3]),
	}
	if v.Title == "" {
		return Viewpoint{}, false
	}
	if v.URL == "" {
		v.URL = PlaceholderURL
	}
	return v, true
}

func cleanDescription(s string) string {
	return strings.TrimSpace(strings.TrimLeft(s, " \t-–—:|•"))
}

func isHeader(line string) bool {
	return headingRe.MatchString(line) || knownLabelRe.MatchString(line) || bareLabelRe.MatchString(line)
}

// Section returns the text following label up to, but not including, the
// next line that looks like a section header. The remainder of the label's
// own line is included. ok is false when the label is absent.
func Section(text, label string) (string, bool) {
	pat, found := labels[label]
	if !found {
		pat = newLabelPattern(label)
	}
	loc := pat.find(text)
	if loc == nil {
		return "", false
	}
	lines := strings.Split(text[loc[1]:], "\n")
	body := []string{lines[0]}
	for _, line := range lines[1:] {
		if isHeader(line) {
			break
		}
		body = append(body, line)
	}
	return strings.TrimSpace(strings.Join(body, "\n")), true
}
