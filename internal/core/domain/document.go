package domain

import (
	"fmt"
	"time"
)

// Language is a supported content language tag.
type Language string

// Supported languages.
const (
	// LanguageArabic is Modern Standard Arabic.
	LanguageArabic Language = "ar"

	// LanguageEnglish is English.
	LanguageEnglish Language = "en"
)

// IsValid returns true if the language tag is recognised.
func (l Language) IsValid() bool {
	return l == LanguageArabic || l == LanguageEnglish
}

// String returns the string representation.
func (l Language) String() string {
	return string(l)
}

// Department is an organisational unit a document belongs to.
type Department string

// Known departments.
const (
	DepartmentHR         Department = "HR"
	DepartmentIT         Department = "IT"
	DepartmentAdmin      Department = "Admin"
	DepartmentFinance    Department = "Finance"
	DepartmentOperations Department = "Operations"
)

// IsValid returns true if the department is recognised.
func (d Department) IsValid() bool {
	switch d {
	case DepartmentHR, DepartmentIT, DepartmentAdmin, DepartmentFinance, DepartmentOperations:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d Department) String() string {
	return string(d)
}

// Classification is a document access level.
type Classification string

// Access levels, ordered from least to most restricted.
const (
	ClassificationPublic       Classification = "public"
	ClassificationInternal     Classification = "internal"
	ClassificationConfidential Classification = "confidential"
)

// IsValid returns true if the classification is recognised.
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationPublic, ClassificationInternal, ClassificationConfidential:
		return true
	default:
		return false
	}
}

// Rank returns the restriction level for clearance comparisons.
// A requester may read documents whose Rank is at most their clearance Rank.
func (c Classification) Rank() int {
	switch c {
	case ClassificationPublic:
		return 0
	case ClassificationInternal:
		return 1
	case ClassificationConfidential:
		return 2
	default:
		return 3 // Unknown classifications are treated as most restricted.
	}
}

// String returns the string representation.
func (c Classification) String() string {
	return string(c)
}

// Known document categories, matching the content taxonomy.
var Categories = []string{
	"policies",
	"procedures",
	"guidelines",
	"forms",
	"manuals",
	"announcements",
	"training_materials",
	"faq",
	"contact_info",
	"other",
}

// IsValidCategory returns true if the category is part of the taxonomy.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// DocumentMeta is the caller-supplied metadata for a document.
type DocumentMeta struct {
	// Title is the human-readable title (required).
	Title string

	// Department owns the document (required).
	Department Department

	// Category places the document in the content taxonomy (required).
	Category string

	// Language is the document's content language (required).
	Language Language

	// Author is the document author (optional).
	Author string

	// Tags are free-form labels (optional).
	Tags []string

	// Classification is the access level; defaults to internal when empty.
	Classification Classification
}

// Document is a unit of organisational knowledge. It is exclusively owned
// by the content manager; the vector index only holds a derived copy of
// its chunks.
type Document struct {
	// ID is the unique identifier.
	ID string

	// DocumentMeta holds the caller-supplied metadata.
	DocumentMeta

	// Version is the semantic version string, bumped on every update.
	Version string

	// Content is the normalised plain text after extraction.
	// Chunks are always derivable by re-running the chunker on this field.
	Content string

	// ContentHash is the SHA-256 hash of the raw content, used for
	// duplicate detection.
	ContentHash string

	// CreatedAt is when the document was first committed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last committed.
	UpdatedAt time.Time
}

// Chunk is a contiguous span of a document's normalised text, the unit of
// retrieval. A chunk belongs to exactly one document version.
type Chunk struct {
	// DocumentID links to the parent document.
	DocumentID string

	// Index is the zero-based position within the document.
	Index int

	// Total is the chunk count of the document at creation time.
	Total int

	// Content is the chunk text.
	Content string

	// StartChar and EndChar are rune offsets into the document's
	// normalised content. Content equals that span exactly.
	StartChar int
	EndChar   int

	// Embedding is the vector representation, set at indexing time.
	Embedding []float32

	// Meta is the parent document's metadata copied for filtering.
	Meta ChunkMeta
}

// ID returns the chunk's stable identity, derived from its document and
// position.
func (c Chunk) ID() string {
	return chunkID(c.DocumentID, c.Index)
}

// chunkID builds the stable chunk identity used by index adapters.
func chunkID(documentID string, index int) string {
	return fmt.Sprintf("%s:%d", documentID, index)
}

// ChunkMeta is the document metadata a chunk carries for search filtering
// and attribution.
type ChunkMeta struct {
	Title          string
	Department     Department
	Category       string
	Language       Language
	Classification Classification
	Version        string
	UpdatedAt      time.Time
}
