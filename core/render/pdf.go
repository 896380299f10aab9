// Package render: PDF renderer.
// Converts Markdown into a plain PDF using gofpdf. Headings, paragraphs and
// lists are typeset in Helvetica; code, tables and display math are set in
// Courier exactly as they appear in the Markdown, since the core fonts
// cannot typeset LaTeX.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core"
	"github.com/gaurav-prasanna/arxiv2md/core/chunk"
	"github.com/jung-kurt/gofpdf"
)

var (
	headingLineRe  = regexp.MustCompile(`^(#{1,6})[ \t]+(.*)$`)
	numberedItemRe = regexp.MustCompile(`^\d+\.\s`)
	boldRe         = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe       = regexp.MustCompile(`(^|\s)\*([^*\s][^*]*)\*`)
	codeSpanRe     = regexp.MustCompile("`([^`]+)`")
	linkRe         = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
)

var headingSizes = [...]float64{18, 15, 13, 12, 11, 10}

// PDFRenderer renders Markdown content as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render converts Markdown into PDF bytes.
func (r *PDFRenderer) Render(markdown string, meta core.PaperMetadata) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if meta.Title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, tr(meta.Title), "", "L", false)
		pdf.Ln(4)
	}
	if meta.Source != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, tr("Source: "+meta.Source), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(6)
	}

	for _, block := range chunk.Blocks(markdown) {
		trimmed := strings.TrimSpace(block)
		switch {
		case strings.HasPrefix(trimmed, "```"):
			lines := strings.Split(trimmed, "\n")
			if len(lines) >= 2 {
				lines = lines[1 : len(lines)-1]
			}
			verbatim(pdf, tr, lines)
		case strings.HasPrefix(trimmed, "$$"), strings.HasPrefix(trimmed, "|"):
			verbatim(pdf, tr, strings.Split(trimmed, "\n"))
		case headingLineRe.MatchString(trimmed):
			m := headingLineRe.FindStringSubmatch(trimmed)
			heading(pdf, tr(cleanInlineMarkdown(m[2])), len(m[1]))
		default:
			paragraph(pdf, tr, block)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

func verbatim(pdf *gofpdf.Fpdf, tr func(string) string, lines []string) {
	pdf.SetFont("Courier", "", 9)
	pdf.SetFillColor(245, 245, 245)
	for _, line := range lines {
		pdf.MultiCell(0, 4.5, tr(line), "", "L", true)
	}
}

func heading(pdf *gofpdf.Fpdf, text string, level int) {
	size := headingSizes[min(max(level, 1), 6)-1]
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, text, "", "L", false)
	pdf.Ln(2)
}

// paragraph writes prose and list lines; list items keep one line each.
func paragraph(pdf *gofpdf.Fpdf, tr func(string) string, block string) {
	pdf.SetFont("Helvetica", "", 10)
	var prose []string
	flush := func() {
		if len(prose) > 0 {
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(strings.Join(prose, " "))), "", "L", false)
			prose = nil
		}
	}
	for _, line := range strings.Split(block, "\n") {
		t := strings.TrimSpace(line)
		indent := float64(len(line)-len(strings.TrimLeft(line, " "))) * 2
		switch {
		case strings.HasPrefix(t, "- "):
			flush()
			pdf.SetX(pdf.GetX() + indent)
			pdf.MultiCell(0, 5, tr("• "+cleanInlineMarkdown(t[2:])), "", "L", false)
		case numberedItemRe.MatchString(t):
			flush()
			pdf.SetX(pdf.GetX() + indent)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(t)), "", "L", false)
		case strings.HasPrefix(t, "> "):
			flush()
			pdf.SetFont("Helvetica", "I", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(t[2:])), "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
		case t == "---":
			flush()
			y := pdf.GetY() + 2
			pdf.Line(10, y, 200, y)
			pdf.Ln(4)
		default:
			prose = append(prose, t)
		}
	}
	flush()
}

// cleanInlineMarkdown strips inline Markdown formatting. Math is left in its
// $...$ form.
func cleanInlineMarkdown(text string) string {
	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1$2")
	text = codeSpanRe.ReplaceAllString(text, "$1")
	text = linkRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
