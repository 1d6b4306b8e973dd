package driven

import (
	"context"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

// EmbeddingProvider maps text to a fixed-dimension vector.
//
// The provider is multilingual; the language argument is advisory and
// selects a language-appropriate normalisation step applied before
// vectorization. Embed must be deterministic for identical input and
// provider configuration.
//
// Backend or timeout failures are returned as domain.ErrEmbeddingUnavailable
// (wrapped); callers treat this as retryable with backoff, not fatal.
type EmbeddingProvider interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string, language domain.Language) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string, language domain.Language) ([][]float32, error)

	// Dimensions returns the embedding vector size. It is fixed
	// system-wide by configuration; the index rejects other sizes.
	Dimensions() int

	// ModelName returns the embedding model identifier.
	ModelName() string

	// Close releases resources.
	Close() error
}
