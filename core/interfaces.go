// Package core defines the pipeline interfaces for arxiv2md.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"

	"golang.org/x/net/html"
)

// Document is one conversion input: the raw markup plus where it came from.
// Source is an arXiv identifier or a local file path.
type Document struct {
	Source string
	HTML   string
}

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	ID         string
	URL        string
	StatusCode int
	HTML       string
}

// Extraction is what an Extractor finds in a parsed page.
type Extraction struct {
	Title    string
	Language string
	// Content is the node holding the paper body. It is part of the parsed
	// tree, not a copy.
	Content *html.Node
}

// PaperMetadata holds metadata about a converted paper.
type PaperMetadata struct {
	ID        string `json:"id" yaml:"id"`
	Source    string `json:"source" yaml:"source"`
	Title     string `json:"title" yaml:"title"`
	Language  string `json:"language,omitempty" yaml:"language,omitempty"`
	FetchedAt string `json:"fetched_at" yaml:"fetched_at"` // ISO8601
	Warnings  int    `json:"warnings" yaml:"warnings"`
}

// Warning is a non-fatal problem recorded while converting a document.
type Warning struct {
	Stage string
	Err   error
}

func (w Warning) Error() string {
	return w.Stage + ": " + w.Err.Error()
}

func (w Warning) Unwrap() error {
	return w.Err
}

// Section represents a heading-delimited section of content.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Text    string `json:"text"`
}

// Heading represents a single heading found in the content.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link represents a hyperlink found in the content.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// PaperContent holds the text and structured content of a paper.
type PaperContent struct {
	Text     string    `json:"text"`
	Markdown string    `json:"markdown"`
	Sections []Section `json:"sections"`
}

// PaperStructure holds structural metadata parsed from the content.
type PaperStructure struct {
	Headings    []Heading `json:"headings"`
	Links       []Link    `json:"links"`
	CodeBlocks  int       `json:"code_blocks"`
	Tables      int       `json:"tables"`
	Lists       int       `json:"lists"`
	InlineMath  int       `json:"inline_math"`
	DisplayMath int       `json:"display_math"`
}

// PaperJSON is the complete JSON output for a single paper.
type PaperJSON struct {
	Metadata  PaperMetadata  `json:"metadata"`
	Content   PaperContent   `json:"content"`
	Structure PaperStructure `json:"structure"`
	Chunks    []string       `json:"chunks,omitempty"`
}

// Fetcher retrieves the raw HTML for an arXiv identifier or local path.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*FetchResult, error)
}

// Extractor locates the paper body and title in a parsed page.
type Extractor interface {
	Extract(root *html.Node) (*Extraction, error)
}

// Normalizer converts HTML into Markdown (the canonical format).
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Renderer converts Markdown (and metadata) into a final output format.
type Renderer interface {
	Render(markdown string, meta PaperMetadata) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
