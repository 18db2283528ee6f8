package extract

import (
	"strings"
	"testing"
)

// Benchmark the cascade on pages where different strategies win.
func BenchmarkCascade(b *testing.B) {
	pages := map[string]string{
		"article":    makeHTML("<article>", "</article>", 50),
		"paragraphs": makeHTML("<div>", "</div>", 50),
		"large":      makeHTML("<main>", "</main>", 400),
	}
	c := NewCascade(0)
	for name, html := range pages {
		p, err := NewPage("https://example.org/"+name, strings.NewReader(html))
		if err != nil {
			b.Fatalf("NewPage: %v", err)
		}
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := c.Extract(p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func makeHTML(open, close string, paras int) string {
	builder := new(strings.Builder)
	builder.WriteString("<html><head><title>demo</title></head><body><nav>menu</nav>")
	builder.WriteString(open)
	for i := 0; i < paras; i++ {
		builder.WriteString("<h2>Heading</h2><p>")
		builder.WriteString(sampleText)
		builder.WriteString("</p>")
	}
	builder.WriteString(close)
	builder.WriteString("</body></html>")
	return builder.String()
}

const sampleText = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."
