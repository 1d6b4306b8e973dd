package driven

import (
	"context"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

// VectorIndex is a metadata-filterable nearest-neighbour store keyed by
// chunk identity. It holds a derived, rebuildable copy of each document's
// chunks; the document store remains the system of record.
type VectorIndex interface {
	// Upsert atomically replaces all chunks for a document with the
	// given set. To any concurrent search the replacement appears
	// either fully applied or not at all; old and new chunks never
	// coexist in one result. Chunks must carry embeddings of the
	// index's configured dimensionality, otherwise
	// domain.ErrDimensionMismatch is returned.
	Upsert(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// Search returns up to topK chunks ranked by cosine similarity,
	// restricted to chunks whose metadata satisfies the filter. Chunks
	// below the configured similarity floor are excluded even if topK
	// is not filled. Ties are broken by most recent document update
	// time, then by lowest document ID. Searching an empty index
	// returns an empty result, never an error.
	Search(ctx context.Context, queryVector []float32, topK int, filter domain.SearchFilter) (*domain.RetrievalResult, error)

	// Delete removes all chunks for the document. Idempotent: deleting
	// an absent ID is a no-op.
	Delete(ctx context.Context, documentID string) error

	// Stats returns the number of indexed documents and chunks.
	Stats(ctx context.Context) (docs, chunks int, err error)

	// Close releases resources.
	Close() error
}
