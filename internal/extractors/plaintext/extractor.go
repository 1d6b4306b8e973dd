// Package plaintext extracts text from plain-text documents. It is the
// simplest extractor: normalise line endings and whitespace, keep
// paragraph breaks intact.
package plaintext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the format tags this extractor handles.
func (e *Extractor) Formats() []string {
	return []string{"txt", "text"}
}

var (
	trailingSpace = regexp.MustCompile(`(?m)[ \t]+$`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Extract normalises raw text. Line endings become "\n", trailing
// whitespace is dropped per line, and runs of blank lines collapse to a
// single paragraph break so downstream chunking sees "\n\n" boundaries.
func (e *Extractor) Extract(data []byte) (string, error) {
	content := string(data)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = trailingSpace.ReplaceAllString(content, "")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	content = strings.TrimSpace(content)

	if content == "" {
		return "", fmt.Errorf("%w: no text content", domain.ErrExtractionFailed)
	}
	return content, nil
}
