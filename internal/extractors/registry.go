package extractors

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
	"github.com/maarif-labs/maarif/internal/extractors/docx"
	"github.com/maarif-labs/maarif/internal/extractors/html"
	"github.com/maarif-labs/maarif/internal/extractors/markdown"
	"github.com/maarif-labs/maarif/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches extraction by format tag. Format tags are
// lower-case file extensions without the dot. Registering an extractor
// for an already-claimed tag replaces the previous owner.
type Registry struct {
	mu       sync.RWMutex
	byFormat map[string]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{byFormat: make(map[string]driven.Extractor)}
}

// Default returns a registry with all built-in extractors registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	return r
}

// Register adds an extractor for all formats it declares.
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, format := range e.Formats() {
		r.byFormat[normaliseTag(format)] = e
	}
}

// Extract dispatches to the extractor registered for the format tag.
func (r *Registry) Extract(format string, data []byte) (string, error) {
	tag := normaliseTag(format)

	r.mu.RLock()
	e, ok := r.byFormat[tag]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	return e.Extract(data)
}

// Formats returns all registered format tags, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.byFormat))
	for tag := range r.byFormat {
		formats = append(formats, tag)
	}
	sort.Strings(formats)
	return formats
}

// normaliseTag makes format matching tolerant of ".md" vs "md" vs "MD".
func normaliseTag(format string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
}
