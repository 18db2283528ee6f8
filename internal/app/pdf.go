package app

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var pdfLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// WriteReportPDF renders the Markdown produced by RenderMarkdown into a PDF.
// Headings become bold lines and links stay clickable; other Markdown is
// written as plain text.
func WriteReportPDF(markdown string, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			pdf.Ln(3)
			continue
		}
		if strings.HasPrefix(s, "#") {
			level := len(s) - len(strings.TrimLeft(s, "#"))
			text := strings.TrimSpace(s[level:])
			if text == "" {
				continue
			}
			size := 16.0
			if level >= 2 {
				size = 13.0
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.MultiCell(0, 8, tr(text), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		s = strings.ReplaceAll(s, "**", "")
		if len(s) > 1 && strings.HasPrefix(s, "_") && strings.HasSuffix(s, "_") {
			s = strings.Trim(s, "_")
		}
		parts := pdfLinkRe.FindAllStringSubmatchIndex(s, -1)
		if len(parts) == 0 {
			pdf.MultiCell(0, 5, tr(s), "", "L", false)
			continue
		}
		pos := 0
		for _, m := range parts {
			if m[0] > pos {
				pdf.Write(5, tr(s[pos:m[0]]))
			}
			pdf.WriteLinkString(5, tr(s[m[2]:m[3]]), s[m[4]:m[5]])
			pos = m[1]
		}
		if pos < len(s) {
			pdf.Write(5, tr(s[pos:]))
		}
		pdf.Ln(6)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(outPath)
}
