// Package pipeline sequences the converter: math normalization, structural
// mapping, progressive stripping and rendering.
//
// A conversion is a pure function of its input. Convert holds no shared
// state, so separate documents may be converted concurrently, but the stages
// of one document always run in order.
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core"
	"github.com/gaurav-prasanna/arxiv2md/core/chunk"
	"github.com/gaurav-prasanna/arxiv2md/core/extract"
	"github.com/gaurav-prasanna/arxiv2md/core/mathnorm"
	"github.com/gaurav-prasanna/arxiv2md/core/normalize"
	"github.com/gaurav-prasanna/arxiv2md/core/strip"
	"github.com/gaurav-prasanna/arxiv2md/core/structure"
	"github.com/gaurav-prasanna/arxiv2md/core/tree"
	"github.com/gaurav-prasanna/arxiv2md/internal/logger"
	"golang.org/x/net/html"
)

// Result is the output pair of a conversion plus what was learned on the way.
type Result struct {
	Markdown string
	Title    string
	Filename string
	Language string
	Blocks   []structure.Block
	Warnings []core.Warning
	Reports  []StageReport
}

// Option configures a Converter.
type Option func(*Converter)

// WithMaxNameLength bounds the derived filename.
func WithMaxNameLength(n int) Option {
	return func(c *Converter) { c.maxName = n }
}

// WithExtractor replaces the content extractor.
func WithExtractor(e core.Extractor) Option {
	return func(c *Converter) { c.extractor = e }
}

// WithFallback replaces the normalizer used when the pipeline yields nothing.
func WithFallback(n core.Normalizer) Option {
	return func(c *Converter) { c.fallback = n }
}

// WithLogger sets the logger stage reports go to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.log = l }
}

// Converter turns one HTML document into Markdown.
type Converter struct {
	extractor core.Extractor
	fallback  core.Normalizer
	stages    []strip.Stage
	maxName   int
	log       *slog.Logger
}

// New creates a Converter with the standard stages.
func New(opts ...Option) *Converter {
	c := &Converter{
		extractor: extract.New(),
		fallback:  normalize.New(),
		stages:    strip.Stages(),
		maxName:   DefaultMaxNameLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.With("component", "pipeline")
	}
	return c
}

// Normalize converts html and returns only the Markdown, so a Converter can
// stand in wherever a core.Normalizer is expected.
func (c *Converter) Normalize(html string) (string, error) {
	res, err := c.Convert(core.Document{HTML: html})
	if err != nil {
		return "", err
	}
	return res.Markdown, nil
}

// Convert runs the full pipeline over doc. Problems confined to part of the
// document are returned as warnings; an error means there is no usable
// output at all.
func (c *Converter) Convert(doc core.Document) (*Result, error) {
	raw := strings.ToValidUTF8(doc.HTML, "\ufffd")
	raw = strings.TrimPrefix(raw, "\ufeff")
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: document %q is empty", core.ErrEmptyResult, doc.Source)
	}

	st := &State{Source: doc.Source}
	var res *Result
	if LooksLikeMarkup(raw) {
		res = c.convertHTML(st, raw)
	} else {
		res = c.convertMarkdown(st, raw)
	}
	if res.Markdown == "" {
		return nil, fmt.Errorf("%w: no content in %q", core.ErrEmptyResult, doc.Source)
	}

	res.Filename = DeriveFilename(res.Title, doc.Source, c.maxName)
	res.Warnings = st.Warnings
	res.Reports = st.Reports
	return res, nil
}

func (c *Converter) convertHTML(st *State, raw string) *Result {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		st.warn("parse", fmt.Errorf("%w: %v", core.ErrMalformedInput, err))
		return c.convertMarkdown(st, plainText(raw))
	}

	ex, err := c.extractor.Extract(root)
	if err != nil || ex.Content == nil {
		if err == nil {
			err = errors.New("no content container")
		}
		st.warn("extract", fmt.Errorf("%w: %v", core.ErrMalformedInput, err))
		ex = &core.Extraction{Content: root}
	}
	st.Tree = tree.FromHTML(ex.Content)
	if st.Tree.Kind != tree.KindDocument {
		st.Tree = &tree.Node{Kind: tree.KindDocument, Children: []*tree.Node{st.Tree}}
	}
	c.advance(st, PhaseFetched, "parse")

	c.guard(st, "math", func() {
		var errs []error
		st.Tree, errs = mathnorm.Normalize(st.Tree)
		st.warnAll("math", errs)
	})
	c.advance(st, PhaseMathNormalized, "math")

	c.guard(st, "structure", func() {
		st.Tree = structure.Map(st.Tree)
	})
	c.advance(st, PhaseStructureMapped, "structure")

	for _, s := range c.stages {
		var errs []error
		st.Tree, errs = strip.Apply(s, st.Tree)
		st.warnAll("strip/"+s.Name, errs)
		c.advance(st, PhaseStripped, "strip/"+s.Name)
	}

	var blocks []structure.Block
	c.guard(st, "render", func() {
		blocks = structure.Blocks(st.Tree)
	})
	md := structure.Join(blocks)
	c.advance(st, PhaseRendered, "render")

	if md == "" {
		md = c.fallbackMarkdown(st, ex.Content)
	}

	title := ex.Title
	if title == "" {
		title = markdownTitle(md)
	}
	return &Result{Markdown: md, Title: title, Language: ex.Language, Blocks: blocks}
}

// convertMarkdown passes text that carries no markup through block by block.
func (c *Converter) convertMarkdown(st *State, raw string) *Result {
	md := structure.Tidy(decodeEntities(raw))
	st.Tree = &tree.Node{Kind: tree.KindDocument}
	blocks := make([]structure.Block, 0)
	for _, b := range chunk.Blocks(md) {
		st.Tree.Children = append(st.Tree.Children, &tree.Node{Kind: tree.KindMarkdown, Text: b, Protected: true})
		blocks = append(blocks, structure.Block{Kind: tree.KindMarkdown, Text: b})
	}
	c.advance(st, PhaseRendered, "passthrough")
	return &Result{Markdown: md, Title: markdownTitle(md), Blocks: blocks}
}

// fallbackMarkdown converts the content with the generic normalizer when the
// pipeline produced nothing.
func (c *Converter) fallbackMarkdown(st *State, content *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, content); err != nil {
		st.warn("fallback", err)
		return ""
	}
	md, err := c.fallback.Normalize(buf.String())
	if err != nil {
		st.warn("fallback", err)
		return ""
	}
	md = structure.Tidy(md)
	if md != "" {
		st.warn("render", fmt.Errorf("%w: pipeline produced no content, used generic conversion", core.ErrEmptyResult))
	}
	return md
}

// guard runs one phase; if it panics the tree degrades to its plain text.
func (c *Converter) guard(st *State, phase string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			st.warn(phase, fmt.Errorf("%w: %v", core.ErrMalformedInput, r))
			text := ""
			if st.Tree != nil {
				text = st.Tree.TextContent()
			}
			st.Tree = &tree.Node{Kind: tree.KindDocument, Children: []*tree.Node{
				{Kind: tree.KindParagraph, Children: []*tree.Node{tree.NewText(text)}},
			}}
		}
	}()
	fn()
}

func (c *Converter) advance(st *State, phase Phase, stage string) {
	r := st.advance(phase, stage)
	c.log.Debug("stage complete",
		"source", st.Source,
		"phase", r.Phase.String(),
		"stage", r.Stage,
		"nodes", r.Nodes,
		"warnings", len(st.Warnings),
	)
}

// plainText strips anything tag-shaped from s.
func plainText(s string) string {
	return tagRe.ReplaceAllString(s, " ")
}
