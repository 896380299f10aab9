package chunk

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBlocks(t *testing.T) {
	md := "# Title\n\nfirst paragraph\nsecond line\n\n```\ncode\n\nmore code\n```\n\n$$\\begin{aligned}\na &= b \\\\\n\nc &= d\n\\end{aligned}$$\n\nlast"
	want := []string{
		"# Title",
		"first paragraph\nsecond line",
		"```\ncode\n\nmore code\n```",
		"$$\\begin{aligned}\na &= b \\\\\n\nc &= d\n\\end{aligned}$$",
		"last",
	}
	if diff := cmp.Diff(want, Blocks(md)); diff != "" {
		t.Errorf("Blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestChunk_PacksBlocks(t *testing.T) {
	md := "one two\n\nthree four\n\nfive six seven"
	got := New(4).Chunk(md)
	want := []string{"one two\n\nthree four", "five six seven"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Chunk mismatch (-want +got):\n%s", diff)
	}
}

func TestChunk_SplitsLongProse(t *testing.T) {
	got := New(2).Chunk("a b c d e")
	want := []string{"a b", "c d", "e"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Chunk mismatch (-want +got):\n%s", diff)
	}
}

func TestChunk_KeepsInlineMathWhole(t *testing.T) {
	got := New(3).Chunk("we add ($a + b$) to x and $c$, then stop")
	want := []string{"we add ($a + b$)", "to x and", "$c$, then stop"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Chunk mismatch (-want +got):\n%s", diff)
	}
}

func TestWords(t *testing.T) {
	tests := map[string][]string{
		"a b":              {"a", "b"},
		"x $a + b$ y":      {"x", "$a + b$", "y"},
		"($a$)$b$, c":      {"($a$)$b$,", "c"},
		"$$x = y$$":        {"$$x = y$$"},
		"cost \\$5 and $6": {"cost", "\\$5", "and", "$6"},
	}
	for in, want := range tests {
		if diff := cmp.Diff(want, words(in)); diff != "" {
			t.Errorf("words(%q) mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestChunk_KeepsMathWhole(t *testing.T) {
	math := "$$a + b + c + d + e$$"
	got := New(3).Chunk("intro\n\n" + math + "\n\noutro")
	for _, c := range got {
		if strings.Contains(c, "$$") && !strings.Contains(c, math) {
			t.Errorf("display math split across chunks: %q", got)
		}
	}
	if strings.Count(strings.Join(got, ""), "$$") != 2 {
		t.Errorf("math delimiters lost: %q", got)
	}
}

func TestChunk_Empty(t *testing.T) {
	if got := New(0).Chunk("  \n\n "); got != nil {
		t.Errorf("got %q, want nil", got)
	}
	if New(0).Size != DefaultSize {
		t.Errorf("default size = %d", New(0).Size)
	}
}
