package driven

import (
	"context"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

// ListFilter restricts a document listing.
type ListFilter struct {
	// Department limits to one department. Empty matches all.
	Department domain.Department

	// Category limits to one category. Empty matches all.
	Category string

	// Language limits to one content language. Empty matches all.
	Language domain.Language
}

// DocumentStore persists documents and their chunk/embedding cache. It is
// the system of record; the vector index is rebuildable from it.
type DocumentStore interface {
	// SaveDocument stores or replaces a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks replaces the stored chunk set for a document. The
	// cached embeddings allow index rebuilds without re-embedding.
	SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound when absent.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves the stored chunks for a document in order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// FindByContentHash returns the document with the given content
	// hash, or domain.ErrNotFound.
	FindByContentHash(ctx context.Context, hash string) (*domain.Document, error)

	// DeleteDocument removes a document and its chunks. Idempotent.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns documents matching the filter, most
	// recently updated first.
	ListDocuments(ctx context.Context, filter ListFilter) ([]domain.Document, error)

	// Backup writes a consistent snapshot of the store to destPath.
	// Fails with domain.ErrConflict when destPath already exists.
	Backup(ctx context.Context, destPath string) error

	// Close releases resources.
	Close() error
}
