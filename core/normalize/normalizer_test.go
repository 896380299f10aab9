package normalize

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	md, err := New().Normalize(`<h1>Title</h1><p>Some <strong>bold</strong> text and a <a href="/abs/2401.00001">link</a>.</p>`)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, want := range []string{"# Title", "**bold**", "https://arxiv.org/abs/2401.00001"} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
}

func TestNormalize_Empty(t *testing.T) {
	md, err := New().Normalize("")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if strings.TrimSpace(md) != "" {
		t.Errorf("got %q, want empty", md)
	}
}
