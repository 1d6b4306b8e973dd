package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

func TestFormats(t *testing.T) {
	formats := New().Formats()
	assert.Contains(t, formats, "md")
	assert.Contains(t, formats, "markdown")
}

func TestExtract_StripsHeadings(t *testing.T) {
	text, err := New().Extract([]byte("# Leave Policy\n\nEmployees receive 30 days."))
	require.NoError(t, err)
	assert.Equal(t, "Leave Policy\n\nEmployees receive 30 days.", text)
}

func TestExtract_StripsEmphasisAndLinks(t *testing.T) {
	text, err := New().Extract([]byte("See the **full policy** on [the portal](https://example.com)."))
	require.NoError(t, err)
	assert.Equal(t, "See the full policy on the portal.", text)
}

func TestExtract_RemovesCodeBlocks(t *testing.T) {
	input := "Before.\n\n```\ncode here\n```\n\nAfter."
	text, err := New().Extract([]byte(input))
	require.NoError(t, err)
	assert.NotContains(t, text, "code here")
	assert.Contains(t, text, "Before.")
	assert.Contains(t, text, "After.")
}

func TestExtract_RemovesListMarkers(t *testing.T) {
	input := "- first item\n- second item\n1. numbered"
	text, err := New().Extract([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "first item\nsecond item\nnumbered", text)
}

func TestExtract_RemovesImages(t *testing.T) {
	text, err := New().Extract([]byte("Intro. ![diagram](img.png) Outro."))
	require.NoError(t, err)
	assert.NotContains(t, text, "img.png")
	assert.Contains(t, text, "Intro.")
}

func TestExtract_ArabicMarkdown(t *testing.T) {
	text, err := New().Extract([]byte("## سياسة الإجازات\n\nيحصل الموظف على **٣٠** يوماً."))
	require.NoError(t, err)
	assert.Equal(t, "سياسة الإجازات\n\nيحصل الموظف على ٣٠ يوماً.", text)
}

func TestExtract_OnlySyntax(t *testing.T) {
	_, err := New().Extract([]byte("```\nx\n```\n\n---\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
