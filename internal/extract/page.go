package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is a parsed, queryable page document together with the URL it was
// loaded from. Extractors never modify Doc.
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

// NewPage parses HTML from r. rawURL must be an absolute URL; it becomes the
// PageContent URL and supplies the domain.
func NewPage(rawURL string, r io.Reader) (*Page, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Url = u
	return &Page{URL: u, Doc: doc}, nil
}

// PageContent is the normalized text of one page plus its metadata, captured
// at Timestamp.
type PageContent struct {
	URL       string    `json:"url"`
	Domain    string    `json:"domain"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	Timestamp time.Time `json:"timestamp"`
}

// Metadata is read from well-known meta tags. Missing tags leave fields empty.
type Metadata struct {
	Author      string `json:"author,omitempty"`
	PublishDate string `json:"publishDate,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	Description string `json:"description,omitempty"`
}

func (p *Page) title() string {
	return strings.TrimSpace(p.Doc.Find("head title").First().Text())
}

func (p *Page) domain() string {
	if p.URL == nil {
		return ""
	}
	return p.URL.Hostname()
}

func (p *Page) urlString() string {
	if p.URL == nil {
		return ""
	}
	return p.URL.String()
}
