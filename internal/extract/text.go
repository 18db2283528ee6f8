package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLText renders an HTML fragment as plain text, placing line breaks around
// block elements and skipping scripts, styles and navigation.
func HTMLText(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type: html.ElementNode,
		Data: "div",
	})
	if err != nil {
		return ""
	}
	var b strings.Builder
	for _, n := range nodes {
		collectText(&b, n, false)
	}
	return b.String()
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "nav", "footer", "aside", "iframe":
			return
		case "pre":
			inPre = true
			b.WriteString("\n")
		case "br", "hr", "ul", "ol":
			b.WriteString("\n")
		case "p", "div", "section", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr":
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\n", " ")
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
			b.WriteString("\n\n")
		case "li", "div", "section", "tr", "pre":
			b.WriteString("\n")
		}
	}
}
