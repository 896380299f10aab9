// Package extract implements the Extractor interface.
// It locates the paper body in a parsed arXiv page by:
//  1. Reading the title from the document heading or <title>
//  2. Finding the best content container (article.ltx_document, <main>,
//     <article> or <body>)
//
// Noise removal is left to the strip stages, which work on the whole tree.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/arxiv2md/core"
	"golang.org/x/net/html"
)

var (
	// containerSelectors are tried in order; the first match wins.
	containerSelectors = []cascadia.Selector{
		cascadia.MustCompile("article.ltx_document"),
		cascadia.MustCompile("main"),
		cascadia.MustCompile("article"),
		cascadia.MustCompile("body"),
	}

	titleSelectors = []cascadia.Selector{
		cascadia.MustCompile("h1.ltx_title_document"),
		cascadia.MustCompile("title"),
		cascadia.MustCompile("h1"),
	}

	// titleNoise holds elements inside a heading that are not title text.
	titleNoise = cascadia.MustCompile(".ltx_note, .ltx_ERROR, annotation, annotation-xml, script, style")

	// arXiv page titles carry the identifier as "[2401.00001] Title".
	idPrefixRe = regexp.MustCompile(`^\[[^\]]+\]\s*`)
)

// HTMLExtractor finds the title and content container of a paper page.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract never fails on a parsed tree: without any container the root
// itself is the content.
func (e *HTMLExtractor) Extract(root *html.Node) (*core.Extraction, error) {
	doc := goquery.NewDocumentFromNode(root)

	ex := &core.Extraction{Content: root, Title: title(doc)}
	ex.Language, _ = doc.Find("html").First().Attr("lang")

	for _, sel := range containerSelectors {
		if s := doc.FindMatcher(sel); s.Length() > 0 {
			ex.Content = s.Get(0)
			break
		}
	}
	return ex, nil
}

func title(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		s := doc.FindMatcher(sel).First()
		if s.Length() == 0 {
			continue
		}
		c := s.Clone()
		c.FindMatcher(titleNoise).Remove()
		t := strings.Join(strings.Fields(c.Text()), " ")
		t = idPrefixRe.ReplaceAllString(t, "")
		if t != "" {
			return t
		}
	}
	return ""
}
