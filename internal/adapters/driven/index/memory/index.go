// Package memory provides an in-process vector index. It is the default
// backend for single-node deployments and the reference implementation
// of the index contract: atomic per-document replacement, a similarity
// floor, and deterministic tie-breaking.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// DefaultSimilarityFloor excludes weak matches even when topK is unfilled.
const DefaultSimilarityFloor = 0.7

// Index stores chunk embeddings in memory, keyed by document.
type Index struct {
	mu         sync.RWMutex
	docs       map[string][]domain.Chunk
	dimensions int
	floor      float64
}

// Option configures an Index.
type Option func(*Index)

// WithSimilarityFloor overrides the minimum similarity for search hits.
func WithSimilarityFloor(floor float64) Option {
	return func(idx *Index) {
		idx.floor = floor
	}
}

// New creates an empty index for vectors of the given dimensionality.
func New(dimensions int, opts ...Option) *Index {
	idx := &Index{
		docs:       make(map[string][]domain.Chunk),
		dimensions: dimensions,
		floor:      DefaultSimilarityFloor,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Upsert atomically replaces all chunks for a document. The incoming
// chunks are validated and copied before the lock is taken, so a search
// observes either the old set or the new set, never a mix.
func (idx *Index) Upsert(_ context.Context, documentID string, chunks []domain.Chunk) error {
	if documentID == "" {
		return fmt.Errorf("%w: empty document ID", domain.ErrValidation)
	}
	for i, chunk := range chunks {
		if len(chunk.Embedding) != idx.dimensions {
			return fmt.Errorf("%w: chunk %d has %d dimensions, index expects %d",
				domain.ErrDimensionMismatch, i, len(chunk.Embedding), idx.dimensions)
		}
	}

	replacement := make([]domain.Chunk, len(chunks))
	copy(replacement, chunks)

	idx.mu.Lock()
	idx.docs[documentID] = replacement
	idx.mu.Unlock()
	return nil
}

// Search returns up to topK chunks ranked by cosine similarity.
func (idx *Index) Search(_ context.Context, queryVector []float32, topK int, filter domain.SearchFilter) (*domain.RetrievalResult, error) {
	if len(queryVector) != idx.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(queryVector), idx.dimensions)
	}

	result := &domain.RetrievalResult{QueryEmbedding: queryVector}
	if topK <= 0 {
		return result, nil
	}

	idx.mu.RLock()
	var hits []domain.RetrievedChunk
	for _, chunks := range idx.docs {
		for _, chunk := range chunks {
			if !filter.Matches(chunk.Meta) {
				continue
			}
			sim := cosineSimilarity(queryVector, chunk.Embedding)
			if sim < idx.floor {
				continue
			}
			hits = append(hits, domain.RetrievedChunk{Chunk: chunk, Similarity: sim})
		}
	}
	idx.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		ti, tj := hits[i].Chunk.Meta.UpdatedAt, hits[j].Chunk.Meta.UpdatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return hits[i].Chunk.DocumentID < hits[j].Chunk.DocumentID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}

	result.Hits = hits
	return result, nil
}

// Delete removes all chunks for the document. Idempotent.
func (idx *Index) Delete(_ context.Context, documentID string) error {
	idx.mu.Lock()
	delete(idx.docs, documentID)
	idx.mu.Unlock()
	return nil
}

// Stats returns the number of indexed documents and chunks.
func (idx *Index) Stats(_ context.Context) (int, int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	docs, chunks := 0, 0
	for _, set := range idx.docs {
		if len(set) == 0 {
			continue
		}
		docs++
		chunks += len(set)
	}
	return docs, chunks, nil
}

// Close releases resources.
func (idx *Index) Close() error {
	idx.mu.Lock()
	idx.docs = make(map[string][]domain.Chunk)
	idx.mu.Unlock()
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// A zero vector on either side yields 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
