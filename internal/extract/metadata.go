package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReadMetadata looks up author, publish date, keywords and description from
// <meta> tags, matching either the name or the property attribute. Each field
// is independent; a missing tag leaves it empty.
func ReadMetadata(doc *goquery.Document) Metadata {
	return Metadata{
		Author:      metaContent(doc, "author", "article:author"),
		PublishDate: metaContent(doc, "article:published_time", "publishedDate"),
		Keywords:    metaContent(doc, "keywords"),
		Description: metaContent(doc, "description"),
	}
}

// metaContent returns the first non-empty content among names, in order.
func metaContent(doc *goquery.Document, names ...string) string {
	for _, name := range names {
		sel := fmt.Sprintf(`meta[name=%q], meta[property=%q]`, name, name)
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
