package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c := New()
	assert.Equal(t, DefaultSize, c.size)
	assert.Equal(t, DefaultOverlap, c.overlap)
	assert.Equal(t, DefaultMinSize, c.minSize)
}

func TestNew_OverlapClamped(t *testing.T) {
	c := New(WithSize(100), WithOverlap(200))
	assert.Equal(t, 25, c.overlap)
}

func TestSplit_Empty(t *testing.T) {
	assert.Nil(t, New().Split(""))
}

func TestSplit_ShortContentSingleChunk(t *testing.T) {
	content := "A short policy paragraph."
	chunks := New().Split(content)

	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[0].Total)
	assert.Equal(t, 0, chunks[0].StartChar)
	assert.Equal(t, len([]rune(content)), chunks[0].EndChar)
}

func TestSplit_OffsetsMatchContent(t *testing.T) {
	content := strings.Repeat("Employees accrue leave monthly. ", 60)
	chunks := New().Split(content)
	require.Greater(t, len(chunks), 1)

	runes := []rune(content)
	for _, c := range chunks {
		assert.Equal(t, string(runes[c.StartChar:c.EndChar]), c.Content)
		assert.Equal(t, len(chunks), c.Total)
	}
}

// Concatenating chunk i with chunk i+1 minus the overlap reproduces the
// source span exactly.
func TestSplit_OverlapRoundTrip(t *testing.T) {
	content := strings.Repeat("سياسة الإجازات تنطبق على جميع الموظفين. ", 40)
	c := New()
	chunks := c.Split(content)
	require.Greater(t, len(chunks), 1)

	runes := []rune(content)
	for i := 0; i+1 < len(chunks); i++ {
		cur, next := chunks[i], chunks[i+1]
		assert.Equal(t, cur.EndChar-c.overlap, next.StartChar, "chunk %d start", i+1)

		nextRunes := []rune(next.Content)
		joined := cur.Content + string(nextRunes[c.overlap:])
		assert.Equal(t, string(runes[cur.StartChar:next.EndChar]), joined)
	}

	// Full reconstruction from first chunk plus all tails.
	var b strings.Builder
	b.WriteString(chunks[0].Content)
	for i := 1; i < len(chunks); i++ {
		r := []rune(chunks[i].Content)
		b.WriteString(string(r[c.overlap:]))
	}
	assert.Equal(t, content, b.String())
}

func TestSplit_PrefersSentenceBoundaries(t *testing.T) {
	sentence := "The working day starts at eight in the morning and ends at four. "
	content := strings.Repeat(sentence, 30)
	chunks := New().Split(content)
	require.Greater(t, len(chunks), 1)

	// Every non-final chunk should end right after a sentence
	// terminator (possibly with the trailing space).
	for _, c := range chunks[:len(chunks)-1] {
		trimmed := strings.TrimRight(c.Content, " ")
		assert.True(t, strings.HasSuffix(trimmed, "."), "chunk %d ends mid-sentence: %q", c.Index, tail(trimmed))
	}
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("كلمة ", 70)
	content := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)
	chunks := New(WithSize(400), WithOverlap(0), WithMinSize(100)).Split(content)
	require.Greater(t, len(chunks), 1)

	assert.True(t, strings.HasSuffix(chunks[0].Content, "\n\n"),
		"first chunk should end at the paragraph break")
}

func TestSplit_TrailingFragmentMerged(t *testing.T) {
	c := New(WithSize(100), WithOverlap(10), WithMinSize(40))
	// First cut lands at 100, leaving a 25-rune tail after the overlap
	// rewind: below minSize, so it merges into the previous chunk.
	content := strings.Repeat("x", 115)
	chunks := c.Split(content)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].StartChar)
	assert.Equal(t, 115, chunks[0].EndChar)
	assert.Equal(t, content, chunks[0].Content)
}

func TestSplit_HardCutFallback(t *testing.T) {
	// No whitespace at all forces hard cuts at the size budget.
	content := strings.Repeat("a", 1200)
	c := New()
	chunks := c.Split(content)
	require.Greater(t, len(chunks), 1)

	for _, ch := range chunks[:len(chunks)-1] {
		assert.Equal(t, c.size, ch.EndChar-ch.StartChar)
	}
}

func tail(s string) string {
	if len(s) <= 40 {
		return s
	}
	return s[len(s)-40:]
}
