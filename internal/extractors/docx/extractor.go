// Package docx extracts text from Office Open XML word processing
// documents. A .docx file is a ZIP archive; the prose lives in
// word/document.xml as a sequence of paragraphs.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the format tags this extractor handles.
func (e *Extractor) Formats() []string {
	return []string{"docx"}
}

// Extract opens the document as a ZIP archive and pulls the paragraph
// text out of word/document.xml. Each document paragraph becomes a
// paragraph in the output, separated by blank lines.
func (e *Extractor) Extract(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a valid docx archive: %v", domain.ErrExtractionFailed, err)
	}

	content, err := extractDocumentText(reader)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", fmt.Errorf("%w: no text content", domain.ErrExtractionFailed)
	}
	return content, nil
}

// extractDocumentText reads word/document.xml from the archive.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
		}

		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
		}

		return parseDocumentXML(raw)
	}
	return "", fmt.Errorf("%w: missing word/document.xml", domain.ErrExtractionFailed)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts the paragraph text from the document XML.
func parseDocumentXML(raw []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	var result strings.Builder
	for _, para := range doc.Body.Paragraphs {
		var line strings.Builder
		for _, r := range para.Runs {
			for _, t := range r.Text {
				line.WriteString(t.Content)
			}
		}
		text := strings.TrimSpace(line.String())
		if text == "" {
			continue
		}
		if result.Len() > 0 {
			result.WriteString("\n\n")
		}
		result.WriteString(text)
	}

	return result.String(), nil
}
