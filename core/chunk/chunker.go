// Package chunk splits converted Markdown into word-bounded chunks for
// retrieval. Chunks break only between blocks, so fenced code and display
// math never end up split across two chunks. Words are whitespace separated
// and stand in for tokens; an inline math expression counts as one word.
package chunk

import (
	"strings"
	"unicode"

	"github.com/gaurav-prasanna/arxiv2md/core/mathnorm"
)

// DefaultSize is the chunk size used when none is given.
const DefaultSize = 512

// Chunker packs Markdown blocks into chunks of about Size words.
type Chunker struct {
	Size int // words per chunk
}

// New creates a Chunker. Defaults to DefaultSize if size <= 0.
func New(size int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	return &Chunker{Size: size}
}

// Chunk packs whole blocks into chunks of at most Size words. A prose block
// longer than Size is split at word boundaries; a code or math block longer
// than Size becomes a chunk of its own.
func (c *Chunker) Chunk(md string) []string {
	var (
		chunks  []string
		current []string
		count   int
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current, count = nil, 0
		}
	}

	for _, b := range Blocks(md) {
		f := words(b)
		n := len(f)
		switch {
		case n == 0:
			continue
		case n > c.Size && !atomic(b):
			flush()
			for i := 0; i < len(f); i += c.Size {
				chunks = append(chunks, strings.Join(f[i:min(i+c.Size, len(f))], " "))
			}
			continue
		case count+n > c.Size:
			flush()
		}
		current = append(current, b)
		count += n
	}
	flush()
	return chunks
}

// words splits b at whitespace outside inline math, so "$a + b$" stays one
// word together with any text it touches.
func words(b string) []string {
	var out []string
	open := false // the last word continues into the next segment
	for _, seg := range mathnorm.Scan(b) {
		if seg.Math {
			if open {
				out[len(out)-1] += seg.Raw
			} else {
				out = append(out, seg.Raw)
			}
			open = true
			continue
		}
		f := strings.Fields(seg.Text)
		if len(f) == 0 {
			open = open && seg.Text == ""
			continue
		}
		if open && !startsSpace(seg.Text) {
			out[len(out)-1] += f[0]
			f = f[1:]
		}
		out = append(out, f...)
		open = !endsSpace(seg.Text)
	}
	return out
}

func startsSpace(s string) bool {
	return strings.TrimLeftFunc(s, unicode.IsSpace) != s
}

func endsSpace(s string) bool {
	return strings.TrimRightFunc(s, unicode.IsSpace) != s
}

// Blocks splits Markdown on blank lines. Fenced code blocks and $$ display
// math are kept whole even when they contain blank lines.
func Blocks(md string) []string {
	var (
		blocks  []string
		current []string
		inFence bool
		inMath  bool
	)
	for _, line := range strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if !inMath && strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if !inFence && strings.Count(trimmed, "$$")%2 == 1 {
			inMath = !inMath
		}
		if trimmed == "" && !inFence && !inMath {
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

// atomic blocks must not be split.
func atomic(b string) bool {
	t := strings.TrimSpace(b)
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "$$") || strings.HasPrefix(t, "|")
}
