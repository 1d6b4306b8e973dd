// Package chunker splits normalised document text into overlapping chunks
// targeting a configured character budget.
package chunker

import (
	"unicode"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

// Default chunking parameters.
const (
	// DefaultSize is the target chunk size in runes.
	DefaultSize = 500

	// DefaultOverlap is the number of runes shared between consecutive
	// chunks, so no semantic unit straddling a cut point is lost from
	// both neighbours.
	DefaultOverlap = 50

	// DefaultMinSize is the minimum viable chunk size; a trailing
	// fragment below it is merged into the previous chunk.
	DefaultMinSize = 100
)

// Chunker splits text into ordered chunks with positional metadata.
// Splitting prefers paragraph and sentence boundaries where detectable,
// falling back to word boundaries, then hard cuts.
type Chunker struct {
	size    int
	overlap int
	minSize int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithSize sets the target chunk size in runes.
func WithSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in runes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMinSize sets the minimum viable chunk size in runes.
func WithMinSize(minSize int) Option {
	return func(c *Chunker) {
		if minSize >= 0 {
			c.minSize = minSize
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		size:    DefaultSize,
		overlap: DefaultOverlap,
		minSize: DefaultMinSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Keep the invariants the splitting loop relies on.
	if c.overlap >= c.size {
		c.overlap = c.size / 4
	}
	if c.minSize > c.size {
		c.minSize = c.size
	}

	return c
}

// Split cuts content into ordered chunks. Each chunk's Content equals
// content[StartChar:EndChar] in runes exactly, and chunk i+1 always
// starts overlap runes before the end of chunk i, so concatenating
// chunk i with chunk i+1 minus its first overlap runes reproduces the
// source span. DocumentID and Meta are left for the caller to stamp.
func (c *Chunker) Split(content string) []domain.Chunk {
	runes := []rune(content)
	total := len(runes)
	if total == 0 {
		return nil
	}

	if total <= c.size {
		return c.finish([]span{{0, total}}, runes)
	}

	var spans []span
	start := 0
	for start < total {
		if total-start <= c.size {
			// Final chunk; a fragment below the minimum merges
			// into the previous chunk instead of standing alone.
			if total-start < c.minSize && len(spans) > 0 {
				spans[len(spans)-1].end = total
			} else {
				spans = append(spans, span{start, total})
			}
			break
		}

		end := c.cutPoint(runes, start)
		spans = append(spans, span{start, end})

		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return c.finish(spans, runes)
}

// span is a half-open rune range.
type span struct {
	start, end int
}

// cutPoint finds where the chunk starting at start should end. It scans
// backward from the size budget for a paragraph break, then a sentence
// terminator, then whitespace, never cutting below the minimum viable
// size; failing all of those it hard-cuts at the budget.
func (c *Chunker) cutPoint(runes []rune, start int) int {
	limit := start + c.size
	floor := start + c.minSize
	if floor > limit {
		floor = limit
	}

	// Paragraph break: cut after a blank line.
	for i := limit; i > floor; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}

	// Sentence terminator followed by whitespace.
	for i := limit; i > floor; i-- {
		if isSentenceEnd(runes[i-1]) && i < len(runes) && unicode.IsSpace(runes[i]) {
			return i
		}
	}

	// Any whitespace.
	for i := limit; i > floor; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}

	return limit
}

func (c *Chunker) finish(spans []span, runes []rune) []domain.Chunk {
	chunks := make([]domain.Chunk, len(spans))
	for i, s := range spans {
		chunks[i] = domain.Chunk{
			Index:     i,
			Total:     len(spans),
			Content:   string(runes[s.start:s.end]),
			StartChar: s.start,
			EndChar:   s.end,
		}
	}
	return chunks
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '؟', '۔':
		return true
	default:
		return false
	}
}
