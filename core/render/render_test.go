package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/arxiv2md/core"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

const sample = `# Attention Is Enough

Intro with $x^2$ and a [link](https://example.com).

## 1 Method

We minimize

$$\mathcal{L} = \sum_i \ell_i$$

- first
- second

| a | b |
| --- | --- |
| 1 | 2 |

` + "```python\nprint(1)\n```"

var meta = core.PaperMetadata{ID: "2401.00001", Source: "2401.00001", Title: "Attention Is Enough", FetchedAt: "2026-01-01T00:00:00Z"}

func TestMarkdownRenderer(t *testing.T) {
	out, err := NewMarkdownRenderer(false).Render("# T\n\nbody", meta)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out); got != "# T\n\nbody\n" {
		t.Errorf("got %q", got)
	}
}

func TestMarkdownRenderer_Frontmatter(t *testing.T) {
	out, err := NewMarkdownRenderer(true).Render("# T", meta)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "---\n") || !strings.HasSuffix(s, "---\n\n# T\n") {
		t.Fatalf("unexpected layout:\n%s", s)
	}
	var got core.PaperMetadata
	if err := yaml.Unmarshal([]byte(strings.Split(s, "---\n")[1]), &got); err != nil {
		t.Fatalf("frontmatter is not YAML: %v", err)
	}
	if diff := cmp.Diff(meta, got); diff != "" {
		t.Errorf("frontmatter mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONRenderer(t *testing.T) {
	out, err := NewJSONRenderer(0).Render(sample, meta)
	if err != nil {
		t.Fatal(err)
	}
	var got core.PaperJSON
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	wantHeadings := []core.Heading{{Level: 1, Text: "Attention Is Enough"}, {Level: 2, Text: "1 Method"}}
	if diff := cmp.Diff(wantHeadings, got.Structure.Headings); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]core.Link{{Text: "link", Href: "https://example.com"}}, got.Structure.Links); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}

	s := got.Structure
	if s.CodeBlocks != 1 || s.Tables != 1 || s.Lists != 1 || s.InlineMath != 1 || s.DisplayMath != 1 {
		t.Errorf("counts = %+v", s)
	}

	if len(got.Content.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(got.Content.Sections))
	}
	if sec := got.Content.Sections[0]; sec.Text != "Intro with $x^2$ and a [link](https://example.com)." {
		t.Errorf("first section text = %q", sec.Text)
	}
	if !strings.HasPrefix(got.Content.Sections[1].Text, "We minimize") {
		t.Errorf("second section text = %q", got.Content.Sections[1].Text)
	}
	if got.Chunks != nil {
		t.Errorf("chunks present without chunk size")
	}
	if got.Content.Markdown != sample {
		t.Errorf("markdown not carried through")
	}
}

func TestJSONRenderer_Chunks(t *testing.T) {
	out, err := NewJSONRenderer(8).Render(sample, meta)
	if err != nil {
		t.Fatal(err)
	}
	var got core.PaperJSON
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Chunks) < 2 {
		t.Errorf("chunks = %q, want several", got.Chunks)
	}
}

func TestPDFRenderer(t *testing.T) {
	out, err := NewPDFRenderer().Render(sample, meta)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header")
	}
}

func TestFor(t *testing.T) {
	for f, ext := range map[Format]string{FormatMarkdown: ".md", FormatJSON: ".json", FormatPDF: ".pdf", "": ".md"} {
		r, err := For(f, Options{})
		if err != nil {
			t.Fatalf("For(%q): %v", f, err)
		}
		if r.Extension() != ext {
			t.Errorf("For(%q).Extension() = %q, want %q", f, r.Extension(), ext)
		}
	}
	if _, err := For("docx", Options{}); err == nil {
		t.Error("expected error for unknown format")
	}
}
