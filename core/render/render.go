package render

import (
	"fmt"

	"github.com/gaurav-prasanna/arxiv2md/core"
)

// Format names an output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatPDF      Format = "pdf"
)

// Options are the renderer settings taken from configuration.
type Options struct {
	Frontmatter bool
	ChunkSize   int
}

// For returns the renderer for format f.
func For(f Format, opts Options) (core.Renderer, error) {
	switch f {
	case FormatMarkdown, "":
		return NewMarkdownRenderer(opts.Frontmatter), nil
	case FormatJSON:
		return NewJSONRenderer(opts.ChunkSize), nil
	case FormatPDF:
		return NewPDFRenderer(), nil
	}
	return nil, fmt.Errorf("unknown output format %q", f)
}
