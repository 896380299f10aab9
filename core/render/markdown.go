// Package render provides output renderers for converted papers.
// This file implements the Markdown renderer, a passthrough with optional
// YAML frontmatter.
package render

import (
	"bytes"
	"fmt"

	"github.com/gaurav-prasanna/arxiv2md/core"
	"gopkg.in/yaml.v3"
)

// MarkdownRenderer writes Markdown as-is, since Markdown is already the
// pipeline's canonical format.
type MarkdownRenderer struct {
	// Frontmatter prepends the paper metadata as a YAML block.
	Frontmatter bool
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer(frontmatter bool) *MarkdownRenderer {
	return &MarkdownRenderer{Frontmatter: frontmatter}
}

// Render returns the Markdown as bytes, ending in a single newline.
func (r *MarkdownRenderer) Render(markdown string, meta core.PaperMetadata) ([]byte, error) {
	var buf bytes.Buffer
	if r.Frontmatter {
		fm, err := yaml.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("marshaling frontmatter: %w", err)
		}
		buf.WriteString("---\n")
		buf.Write(fm)
		buf.WriteString("---\n\n")
	}
	buf.WriteString(markdown)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
