// Package memory provides in-memory implementations of the storage
// ports, used for tests and ephemeral deployments.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks replaces the stored chunk set for a document.
func (s *DocumentStore) SaveChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	replacement := make([]domain.Chunk, len(chunks))
	copy(replacement, chunks)
	s.chunks[documentID] = replacement
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetChunks retrieves all chunks for a document in order.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.documents[documentID]; !ok {
		return nil, domain.ErrNotFound
	}
	stored := s.chunks[documentID]
	chunks := make([]domain.Chunk, len(stored))
	copy(chunks, stored)
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// FindByContentHash returns the document with the given content hash.
func (s *DocumentStore) FindByContentHash(_ context.Context, hash string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.documents {
		if doc.ContentHash == hash {
			found := doc
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

// DeleteDocument removes a document and its chunks. Idempotent.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// ListDocuments returns documents matching the filter, most recently
// updated first.
func (s *DocumentStore) ListDocuments(_ context.Context, filter driven.ListFilter) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document
	for _, doc := range s.documents {
		if filter.Department != "" && doc.Department != filter.Department {
			continue
		}
		if filter.Category != "" && doc.Category != filter.Category {
			continue
		}
		if filter.Language != "" && doc.Language != filter.Language {
			continue
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UpdatedAt.Equal(docs[j].UpdatedAt) {
			return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// Backup writes the store contents to destPath as JSON. Fails when
// destPath already exists.
func (s *DocumentStore) Backup(_ context.Context, destPath string) error {
	if destPath == "" {
		return fmt.Errorf("%w: backup destination is required", domain.ErrValidation)
	}
	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("%w: backup destination %s already exists", domain.ErrConflict, destPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking backup destination: %w", err)
	}

	s.mu.RLock()
	snapshot := struct {
		Documents map[string]domain.Document `json:"documents"`
		Chunks    map[string][]domain.Chunk  `json:"chunks"`
	}{s.documents, s.chunks}
	data, err := json.Marshal(snapshot)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(destPath, data, 0600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *DocumentStore) Close() error {
	return nil
}
