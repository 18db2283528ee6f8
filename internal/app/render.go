package app

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RenderMarkdown formats a result as a short Markdown report.
func RenderMarkdown(res Result) string {
	var b strings.Builder
	title := res.Page.Title
	if title == "" {
		title = res.Page.Domain
	}
	fmt.Fprintf(&b, "# Bias analysis: %s\n\n", title)
	if res.Page.URL != "" {
		fmt.Fprintf(&b, "Source: [%s](%s)\n\n", res.Page.Domain, res.Page.URL)
	}
	r := res.Report
	fmt.Fprintf(&b, "**Polarization score:** %d/100 (%s)\n\n", r.PolarizationScore, res.Level.Title)
	fmt.Fprintf(&b, "%s\n\n", res.Level.Message)

	b.WriteString("## Summary\n\n")
	if r.Summary == "" {
		b.WriteString("_No summary provided._\n\n")
	} else {
		b.WriteString(r.Summary + "\n\n")
	}
	writeList(&b, "Detected biases", r.Biases)
	writeList(&b, "Missing perspectives", r.MissingPerspectives)

	b.WriteString("## Alternative viewpoints\n\n")
	if len(r.AlternativeViewpoints) == 0 {
		b.WriteString("_None suggested._\n")
	}
	for _, v := range r.AlternativeViewpoints {
		line := "- " + v.Title
		if v.URL != "" && v.URL != "#" {
			line = fmt.Sprintf("- [%s](%s)", v.Title, v.URL)
		}
		if v.Description != "" {
			line += " - " + v.Description
		}
		b.WriteString(line + "\n")
	}
	if res.Cached {
		b.WriteString("\n_Served from cache._\n")
	}
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	fmt.Fprintf(b, "## %s\n\n", heading)
	if len(items) == 0 {
		b.WriteString("_None identified._\n\n")
		return
	}
	for _, it := range items {
		b.WriteString("- " + it + "\n")
	}
	b.WriteString("\n")
}

// RenderJSON encodes a result with two-space indentation. Page text is
// omitted to keep the output readable.
func RenderJSON(res Result) ([]byte, error) {
	res.Page.Content = ""
	return json.MarshalIndent(res, "", "  ")
}
