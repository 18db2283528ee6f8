package extract

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/biaslens/internal/metrics"
)

// DefaultMinChars is the minimum content length, in characters, accepted by
// an extraction.
const DefaultMinChars = 100

// ErrInsufficientContent is returned when no strategy, including the raw body
// fallback, yields at least the minimum amount of text.
var ErrInsufficientContent = errors.New("not enough content found on page")

// strategy is one extraction heuristic. It returns the candidate text and
// whether it found anything at all.
type strategy struct {
	name string
	run  func(doc *goquery.Document) (string, bool)
}

// semanticSelectors are tried in order; the first one present wins.
var semanticSelectors = []string{
	"article",
	`[role="article"]`,
	`[role="main"]`,
	"main",
	"#article",
	".article",
	".post-content",
	".entry-content",
}

const noiseSelector = "header, footer, nav, aside, script, style, .header, .footer, .nav, .menu, .sidebar, .ad, .advertisement"

// minParagraphChars is the length a trimmed paragraph must exceed to be kept
// by the paragraph strategy.
const minParagraphChars = 20

var cascade = []strategy{
	{name: "semantic", run: semanticContent},
	{name: "main", run: mainContent},
	{name: "paragraphs", run: paragraphContent},
	{name: "body", run: bodyContent},
}

func semanticContent(doc *goquery.Document) (string, bool) {
	for _, sel := range semanticSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s.Text(), true
		}
	}
	return "", false
}

func mainContent(doc *goquery.Document) (string, bool) {
	s := doc.Find("main").First()
	if s.Length() == 0 {
		return "", false
	}
	return s.Text(), true
}

func paragraphContent(doc *goquery.Document) (string, bool) {
	var kept []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(text) > minParagraphChars {
			kept = append(kept, text)
		}
	})
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, "\n\n"), true
}

// bodyContent works on a detached copy of <body> so the page is left intact.
func bodyContent(doc *goquery.Document) (string, bool) {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return "", false
	}
	clone := body.Clone()
	clone.Find(noiseSelector).Remove()
	return clone.Text(), true
}

func rawBody(doc *goquery.Document) string {
	return doc.Find("body").First().Text()
}

// Cascade extracts page text by trying each strategy in priority order until
// one produces more than MinChars characters of normalized text.
type Cascade struct {
	MinChars int

	now func() time.Time
}

// NewCascade returns a Cascade with the given minimum; non-positive values use
// DefaultMinChars.
func NewCascade(minChars int) *Cascade {
	return &Cascade{MinChars: minChars}
}

func (c *Cascade) minChars() int {
	if c == nil || c.MinChars <= 0 {
		return DefaultMinChars
	}
	return c.MinChars
}

func (c *Cascade) clock() time.Time {
	if c != nil && c.now != nil {
		return c.now()
	}
	return time.Now()
}

// Extract runs the cascade over p and returns the normalized content with
// title and metadata.
func (c *Cascade) Extract(p *Page) (PageContent, error) {
	if p == nil || p.Doc == nil {
		return PageContent{}, errors.New("extract: nil page")
	}
	text, used := c.pageText(p.Doc)
	if utf8.RuneCountInString(text) < c.minChars() {
		metrics.ExtractionFailures.Inc()
		log.Debug().Str("url", p.urlString()).Int("chars", utf8.RuneCountInString(text)).Msg("insufficient content")
		return PageContent{}, ErrInsufficientContent
	}
	metrics.ExtractionStrategy.WithLabelValues(used).Inc()
	return c.build(p, text), nil
}

// pageText returns normalized text and the name of the strategy that
// produced it. When every strategy falls short the raw body text is returned
// without a length check.
func (c *Cascade) pageText(doc *goquery.Document) (string, string) {
	limit := c.minChars()
	for _, s := range cascade {
		raw, ok := s.run(doc)
		if !ok {
			log.Debug().Str("strategy", s.name).Msg("extraction strategy found nothing")
			continue
		}
		text := Normalize(raw)
		if utf8.RuneCountInString(text) > limit {
			log.Debug().Str("strategy", s.name).Int("chars", utf8.RuneCountInString(text)).Msg("extraction strategy succeeded")
			return text, s.name
		}
		log.Debug().Str("strategy", s.name).Int("chars", utf8.RuneCountInString(text)).Msg("extraction strategy too short")
	}
	return Normalize(rawBody(doc)), "raw"
}

func (c *Cascade) build(p *Page, text string) PageContent {
	return PageContent{
		URL:       p.urlString(),
		Domain:    p.domain(),
		Title:     p.title(),
		Content:   text,
		Metadata:  ReadMetadata(p.Doc),
		Timestamp: c.clock(),
	}
}
