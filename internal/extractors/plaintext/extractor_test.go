package plaintext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

func TestFormats(t *testing.T) {
	formats := New().Formats()
	assert.Contains(t, formats, "txt")
	assert.Contains(t, formats, "text")
}

func TestExtract(t *testing.T) {
	text, err := New().Extract([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestExtract_NormalisesLineEndings(t *testing.T) {
	text, err := New().Extract([]byte("first line\r\nsecond line\rthird line"))
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line\nthird line", text)
}

func TestExtract_PreservesParagraphBreaks(t *testing.T) {
	text, err := New().Extract([]byte("para one\n\n\n\npara two"))
	require.NoError(t, err)
	assert.Equal(t, "para one\n\npara two", text)
}

func TestExtract_TrimsTrailingWhitespace(t *testing.T) {
	text, err := New().Extract([]byte("line one   \nline two\t\n"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestExtract_Empty(t *testing.T) {
	_, err := New().Extract([]byte("   \n\t\n  "))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
