package extract

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parse(t *testing.T, s string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return root
}

func TestExtract_LaTeXMLPage(t *testing.T) {
	root := parse(t, `<html lang="en"><head><title>[2401.00001] Page Title</title></head><body>
<nav class="ltx_page_navbar">Contents</nav>
<main><article class="ltx_document">
<h1 class="ltx_title ltx_title_document">Attention
  Is All <span class="ltx_note ltx_role_thanks"><sup>*</sup>Funded by X.</span>You Need</h1>
<p>Body.</p>
</article></main></body></html>`)

	ex, err := New().Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ex.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", ex.Title)
	}
	if ex.Language != "en" {
		t.Errorf("Language = %q", ex.Language)
	}
	if ex.Content == nil || ex.Content.Data != "article" {
		t.Fatalf("Content = %v, want the article element", ex.Content)
	}

	// The note is dropped from the title only, not from the document.
	var buf strings.Builder
	if err := html.Render(&buf, root); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Funded by X.") {
		t.Error("title cleanup modified the document")
	}
}

func TestExtract_PageTitle(t *testing.T) {
	root := parse(t, `<html><head><title>[2401.00001]   Deep   Nets</title></head><body><main><p>x</p></main></body></html>`)

	ex, err := New().Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ex.Title != "Deep Nets" {
		t.Errorf("Title = %q", ex.Title)
	}
	if ex.Language != "" {
		t.Errorf("Language = %q, want empty", ex.Language)
	}
	if ex.Content.Data != "main" {
		t.Errorf("Content = <%s>, want <main>", ex.Content.Data)
	}
}

func TestExtract_BodyFallback(t *testing.T) {
	root := parse(t, `<p>Just a paragraph.</p>`)

	ex, err := New().Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ex.Title != "" {
		t.Errorf("Title = %q, want empty", ex.Title)
	}
	if ex.Content.Data != "body" {
		t.Errorf("Content = <%s>, want <body>", ex.Content.Data)
	}
}

func TestExtract_HeadingTitle(t *testing.T) {
	root := parse(t, `<html><head><title>  </title></head><body><article><h1>Plain <b>Heading</b></h1></article></body></html>`)

	ex, err := New().Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ex.Title != "Plain Heading" {
		t.Errorf("Title = %q", ex.Title)
	}
	if ex.Content.Data != "article" {
		t.Errorf("Content = <%s>, want <article>", ex.Content.Data)
	}
}
