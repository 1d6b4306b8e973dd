package driving

import (
	"context"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
)

// ContentService is the document lifecycle surface consumed by the
// administrative collaborator. Each mutating call runs as a single
// logical transaction; on failure the prior committed document remains
// the system of record and the index is left untouched.
type ContentService interface {
	// Create ingests a new document: extract, chunk, embed, index,
	// then commit. The format tag selects the extractor.
	Create(ctx context.Context, raw []byte, format string, meta domain.DocumentMeta) (*domain.Document, error)

	// Update replaces a document's content and metadata in one
	// transaction, bumping its version. Concurrent updates to the same
	// document are serialized; a stale expectedVersion (when non-empty)
	// fails with domain.ErrConflict.
	Update(ctx context.Context, id string, raw []byte, format string, meta domain.DocumentMeta, expectedVersion string) (*domain.Document, error)

	// Delete removes the document and all its chunks. Index entries go
	// first, then the record. Idempotent on retry.
	Delete(ctx context.Context, id string) error

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns documents matching the filter.
	List(ctx context.Context, filter driven.ListFilter) ([]domain.Document, error)

	// Reindex rebuilds the vector index from the document store,
	// re-embedding only documents whose cached embeddings no longer
	// match the provider's dimensionality. Returns the number of
	// documents indexed.
	Reindex(ctx context.Context) (int, error)

	// Stats reports document and chunk counts by department and
	// language.
	Stats(ctx context.Context) (*KnowledgeBaseStats, error)

	// Backup snapshots the document store to destPath. An empty
	// destPath picks a timestamped default in the working directory.
	// Returns the path written. The vector index is not included; it
	// is rebuildable from the snapshot via Reindex.
	Backup(ctx context.Context, destPath string) (string, error)
}

// KnowledgeBaseStats summarises the knowledge base contents.
type KnowledgeBaseStats struct {
	Documents     int
	Chunks        int
	ByDepartment  map[domain.Department]int
	ByLanguage    map[domain.Language]int
	IndexedChunks int
}
