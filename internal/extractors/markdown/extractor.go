// Package markdown extracts plain text from Markdown documents by
// stripping the formatting syntax while keeping the prose and its
// paragraph structure.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the format tags this extractor handles.
func (e *Extractor) Formats() []string {
	return []string{"md", "markdown"}
}

// Pre-compiled regular expressions for Markdown stripping.
var (
	codeBlock     = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode    = regexp.MustCompile("`[^`]+`")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquote    = regexp.MustCompile(`(?m)^>\s*`)
	hr            = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList  = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Extract strips Markdown syntax from the content and returns the
// remaining prose.
func (e *Extractor) Extract(data []byte) (string, error) {
	content := string(data)
	content = strings.ReplaceAll(content, "\r\n", "\n")

	// Remove code blocks (```...```) before inline code so fenced
	// blocks containing backticks do not confuse the inline pattern.
	content = codeBlock.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "")

	// Remove images ![alt](url), convert links [text](url) to text.
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")

	// Remove heading markers (# ## ### etc).
	content = headings.ReplaceAllString(content, "")

	// Remove bold/italic markers.
	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")
	content = strings.ReplaceAll(content, "_", " ")

	// Remove blockquote markers and horizontal rules.
	content = blockquote.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")

	// Remove list markers (- * + and numbered).
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")

	// Collapse multiple newlines.
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	content = strings.TrimSpace(content)

	if content == "" {
		return "", fmt.Errorf("%w: no text content", domain.ErrExtractionFailed)
	}
	return content, nil
}
