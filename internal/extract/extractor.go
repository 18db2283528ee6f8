package extract

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/biaslens/internal/metrics"
)

// Extractor turns a parsed page into normalized PageContent.
// Implementations must not modify the page.
type Extractor interface {
	Extract(p *Page) (PageContent, error)
}

// Extraction modes accepted by New.
const (
	ModeCascade     = "cascade"
	ModeReadability = "readability"
)

// New returns the extractor for mode. Unknown or empty modes use the cascade.
func New(mode string, minChars int) Extractor {
	c := NewCascade(minChars)
	if strings.EqualFold(strings.TrimSpace(mode), ModeReadability) {
		return &ReadabilityExtractor{MinChars: minChars, Fallback: c}
	}
	return c
}

// ReadabilityExtractor tries Mozilla-style readability scoring first and
// defers to Fallback when it errors or returns too little text.
type ReadabilityExtractor struct {
	MinChars int
	Fallback Extractor

	now func() time.Time
}

func (r *ReadabilityExtractor) Extract(p *Page) (PageContent, error) {
	if p != nil && p.Doc != nil && p.URL != nil {
		if text, ok := r.readable(p); ok {
			metrics.ExtractionStrategy.WithLabelValues(ModeReadability).Inc()
			c := &Cascade{MinChars: r.MinChars, now: r.now}
			return c.build(p, text), nil
		}
	}
	fb := r.Fallback
	if fb == nil {
		fb = &Cascade{MinChars: r.MinChars, now: r.now}
	}
	return fb.Extract(p)
}

func (r *ReadabilityExtractor) readable(p *Page) (string, bool) {
	// Parse a serialized copy; readability rewrites the tree it is given.
	src, err := goquery.OuterHtml(p.Doc.Selection)
	if err != nil {
		return "", false
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(src), p.URL)
	if err != nil {
		log.Debug().Err(err).Str("url", p.urlString()).Msg("readability failed")
		return "", false
	}
	text := Normalize(HTMLText(article.Content))
	if utf8.RuneCountInString(text) < (&Cascade{MinChars: r.MinChars}).minChars() {
		log.Debug().Int("chars", utf8.RuneCountInString(text)).Msg("readability text too short")
		return "", false
	}
	return text, true
}
