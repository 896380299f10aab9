// Package render: JSON renderer.
// Builds the structured JSON output from Markdown and paper metadata.
// The Markdown is parsed with goldmark (GFM tables included) to collect
// headings, links, sections and block counts; math spans are counted with
// the same scanner the converter uses.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core"
	"github.com/gaurav-prasanna/arxiv2md/core/chunk"
	"github.com/gaurav-prasanna/arxiv2md/core/mathnorm"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// JSONRenderer produces structured JSON output from Markdown.
type JSONRenderer struct {
	// ChunkSize, when positive, adds retrieval chunks of about that many
	// words to the output.
	ChunkSize int
	md        goldmark.Markdown
}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer(chunkSize int) *JSONRenderer {
	return &JSONRenderer{
		ChunkSize: chunkSize,
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Render converts Markdown and metadata into the JSON document.
func (r *JSONRenderer) Render(markdown string, meta core.PaperMetadata) ([]byte, error) {
	src := []byte(markdown)
	doc := r.md.Parser().Parse(text.NewReader(src))

	s := survey{src: src}
	s.structure.Headings = []core.Heading{}
	s.structure.Links = []core.Link{}
	if err := ast.Walk(doc, s.visit); err != nil {
		return nil, fmt.Errorf("walking markdown: %w", err)
	}
	s.structure.InlineMath, s.structure.DisplayMath = countMath(markdown)

	paper := core.PaperJSON{
		Metadata: meta,
		Content: core.PaperContent{
			Text:     s.text(doc),
			Markdown: markdown,
			Sections: s.sections(),
		},
		Structure: s.structure,
	}
	if r.ChunkSize > 0 {
		paper.Chunks = chunk.New(r.ChunkSize).Chunk(markdown)
	}

	data, err := json.MarshalIndent(paper, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// headingSpan locates a heading line in the source.
type headingSpan struct {
	heading    core.Heading
	start, end int
}

type survey struct {
	src       []byte
	structure core.PaperStructure
	spans     []headingSpan
}

func (s *survey) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	switch n := n.(type) {
	case *ast.Heading:
		h := core.Heading{Level: n.Level, Text: plainText(n, s.src)}
		s.structure.Headings = append(s.structure.Headings, h)
		if lines := n.Lines(); lines.Len() > 0 {
			start, end := lineBounds(s.src, lines.At(0).Start)
			s.spans = append(s.spans, headingSpan{heading: h, start: start, end: end})
		}
		return ast.WalkSkipChildren, nil
	case *ast.Link:
		s.structure.Links = append(s.structure.Links, core.Link{Text: plainText(n, s.src), Href: string(n.Destination)})
		return ast.WalkSkipChildren, nil
	case *ast.AutoLink:
		url := string(n.URL(s.src))
		s.structure.Links = append(s.structure.Links, core.Link{Text: string(n.Label(s.src)), Href: url})
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		s.structure.CodeBlocks++
		return ast.WalkSkipChildren, nil
	case *extast.Table:
		s.structure.Tables++
	case *ast.List:
		s.structure.Lists++
	}
	return ast.WalkContinue, nil
}

// sections cuts the source at each heading line; a section's text runs to
// the next heading of any level.
func (s *survey) sections() []core.Section {
	if len(s.spans) == 0 {
		return nil
	}
	out := make([]core.Section, 0, len(s.spans))
	for i, sp := range s.spans {
		end := len(s.src)
		if i+1 < len(s.spans) {
			end = s.spans[i+1].start
		}
		body := ""
		if sp.end < end {
			body = strings.TrimSpace(string(s.src[sp.end:end]))
		}
		out = append(out, core.Section{Heading: sp.heading.Text, Level: sp.heading.Level, Text: body})
	}
	return out
}

// text flattens the document to plain text, one paragraph per block.
func (s *survey) text(doc ast.Node) string {
	var parts []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if t := blockText(n, s.src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

func blockText(n ast.Node, src []byte) string {
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	case *ast.Paragraph, *ast.Heading, *ast.TextBlock, *extast.TableCell:
		return plainText(n, src)
	}
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	sep := "\n"
	if _, ok := n.(*extast.TableRow); ok {
		sep = " "
	} else if _, ok := n.(*extast.TableHeader); ok {
		sep = " "
	}
	return strings.Join(parts, sep)
}

// plainText joins the inline text below n.
func plainText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				buf.Write(c.Segment.Value(src))
				if c.SoftLineBreak() || c.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(c.Value)
			case *ast.AutoLink:
				buf.Write(c.Label(src))
			case *ast.RawHTML:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// lineBounds returns the start and end offsets of the line holding pos.
func lineBounds(src []byte, pos int) (int, int) {
	start := bytes.LastIndexByte(src[:pos], '\n') + 1
	end := len(src)
	if i := bytes.IndexByte(src[pos:], '\n'); i >= 0 {
		end = pos + i
	}
	return start, end
}

// countMath counts math spans outside code.
func countMath(md string) (inline, display int) {
	for _, b := range chunk.Blocks(md) {
		if strings.HasPrefix(strings.TrimSpace(b), "```") {
			continue
		}
		for _, seg := range mathnorm.Scan(b) {
			switch {
			case !seg.Math:
			case seg.Display:
				display++
			default:
				inline++
			}
		}
	}
	return inline, display
}
