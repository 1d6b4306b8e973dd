package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/maarif-labs/maarif/internal/chunker"
	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
	"github.com/maarif-labs/maarif/internal/core/ports/driving"
	"github.com/maarif-labs/maarif/internal/logger"
)

// Ensure ContentService implements the interface.
var _ driving.ContentService = (*ContentService)(nil)

// Embedding work is batched and bounded so large documents do not flood
// the provider.
const (
	embedBatchSize   = 32
	embedConcurrency = 4
)

// ContentService owns the document lifecycle: ingestion, replacement,
// deletion and index rebuilds. Mutations to one document are serialized
// on a per-document lock; the store commit happens only after the index
// accepted the chunks, so a failed ingestion never leaves a half-new
// document behind.
type ContentService struct {
	store      driven.DocumentStore
	index      driven.VectorIndex
	embedder   driven.EmbeddingProvider
	extractors driven.ExtractorRegistry
	chunker    *chunker.Chunker
	audit      driven.AuditSink

	maxInputBytes int64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now   func() time.Time
	newID func() string
}

// ContentOption configures a ContentService.
type ContentOption func(*ContentService)

// WithMaxInputBytes sets the raw content ceiling for ingestion.
func WithMaxInputBytes(n int64) ContentOption {
	return func(s *ContentService) {
		s.maxInputBytes = n
	}
}

// WithAuditSink attaches an audit sink for lifecycle events.
func WithAuditSink(sink driven.AuditSink) ContentOption {
	return func(s *ContentService) {
		s.audit = sink
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ContentOption {
	return func(s *ContentService) {
		s.now = now
	}
}

// WithIDGenerator overrides document ID generation.
func WithIDGenerator(gen func() string) ContentOption {
	return func(s *ContentService) {
		s.newID = gen
	}
}

// NewContentService creates a content service.
func NewContentService(
	store driven.DocumentStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingProvider,
	extractors driven.ExtractorRegistry,
	splitter *chunker.Chunker,
	opts ...ContentOption,
) *ContentService {
	s := &ContentService{
		store:         store,
		index:         index,
		embedder:      embedder,
		extractors:    extractors,
		chunker:       splitter,
		maxInputBytes: 10 << 20,
		locks:         make(map[string]*sync.Mutex),
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create ingests a new document.
func (s *ContentService) Create(ctx context.Context, raw []byte, format string, meta domain.DocumentMeta) (*domain.Document, error) {
	logger.Section("Document Ingestion")

	if err := s.validateInput(raw); err != nil {
		return nil, err
	}
	normalized, err := normalizeMeta(meta)
	if err != nil {
		return nil, err
	}

	hash := contentHash(raw)
	if existing, err := s.store.FindByContentHash(ctx, hash); err == nil {
		return nil, fmt.Errorf("%w: identical content already ingested as document %s",
			domain.ErrConflict, existing.ID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	text, err := s.extractors.Extract(format, raw)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := &domain.Document{
		ID:           s.newID(),
		DocumentMeta: normalized,
		Version:      domain.InitialVersion,
		Content:      text,
		ContentHash:  hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	chunks, err := s.buildChunks(ctx, doc)
	if err != nil {
		return nil, err
	}

	if err := s.index.Upsert(ctx, doc.ID, chunks); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, doc, chunks); err != nil {
		// The record never existed; drop the orphaned index entries.
		if cleanupErr := s.index.Delete(context.WithoutCancel(ctx), doc.ID); cleanupErr != nil {
			logger.Error("cleanup after failed create of %s: %v", doc.ID, cleanupErr)
		}
		return nil, err
	}

	logger.Info("Ingested document %s (%d chunks)", doc.ID, len(chunks))
	s.recordLifecycle(ctx, domain.LifecycleCreated, doc, len(chunks))
	return doc, nil
}

// Update replaces a document's content and metadata in one transaction.
func (s *ContentService) Update(ctx context.Context, id string, raw []byte, format string, meta domain.DocumentMeta, expectedVersion string) (*domain.Document, error) {
	logger.Section("Document Update")

	unlock := s.lockDocument(id)
	defer unlock()

	existing, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion != "" && expectedVersion != existing.Version {
		return nil, fmt.Errorf("%w: document %s is at version %s, update expected %s",
			domain.ErrConflict, id, existing.Version, expectedVersion)
	}

	if err := s.validateInput(raw); err != nil {
		return nil, err
	}
	normalized, err := normalizeMeta(meta)
	if err != nil {
		return nil, err
	}

	hash := contentHash(raw)
	contentChanged := hash != existing.ContentHash
	if contentChanged {
		if dup, err := s.store.FindByContentHash(ctx, hash); err == nil && dup.ID != id {
			return nil, fmt.Errorf("%w: identical content already ingested as document %s",
				domain.ErrConflict, dup.ID)
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	doc := &domain.Document{
		ID:           id,
		DocumentMeta: normalized,
		Version:      domain.BumpVersion(existing.Version, contentChanged),
		ContentHash:  hash,
		CreatedAt:    existing.CreatedAt,
		UpdatedAt:    s.now().UTC(),
	}

	var chunks []domain.Chunk
	if contentChanged {
		text, err := s.extractors.Extract(format, raw)
		if err != nil {
			return nil, err
		}
		doc.Content = text
		if chunks, err = s.buildChunks(ctx, doc); err != nil {
			return nil, err
		}
	} else {
		// Metadata-only change: reuse the cached embeddings, refresh
		// the metadata every chunk carries.
		doc.Content = existing.Content
		if chunks, err = s.store.GetChunks(ctx, id); err != nil {
			return nil, err
		}
		meta := chunkMetaFor(doc)
		for i := range chunks {
			chunks[i].Meta = meta
		}
	}

	if err := s.index.Upsert(ctx, id, chunks); err != nil {
		s.restoreIndex(ctx, existing)
		return nil, err
	}
	if err := s.commit(ctx, doc, chunks); err != nil {
		s.restoreIndex(ctx, existing)
		return nil, err
	}

	logger.Info("Updated document %s to version %s (%d chunks)", id, doc.Version, len(chunks))
	s.recordLifecycle(ctx, domain.LifecycleUpdated, doc, len(chunks))
	return doc, nil
}

// Delete removes the document and all its chunks. Index entries go
// first: a retry after a partial failure converges on full removal.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	unlock := s.lockDocument(id)
	defer unlock()

	doc, err := s.store.GetDocument(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.index.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return err
	}

	logger.Info("Deleted document %s", id)
	s.recordLifecycle(ctx, domain.LifecycleDeleted, doc, 0)
	return nil
}

// Get retrieves a document by ID.
func (s *ContentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// List returns documents matching the filter.
func (s *ContentService) List(ctx context.Context, filter driven.ListFilter) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx, filter)
}

// Reindex rebuilds the vector index from the document store. Cached
// embeddings are reused when they match the provider's dimensionality;
// anything else is re-embedded.
func (s *ContentService) Reindex(ctx context.Context) (int, error) {
	logger.Section("Index Rebuild")

	docs, err := s.store.ListDocuments(ctx, driven.ListFilter{})
	if err != nil {
		return 0, err
	}

	indexed := 0
	for i := range docs {
		doc := docs[i]
		chunks, err := s.store.GetChunks(ctx, doc.ID)
		if err != nil {
			return indexed, fmt.Errorf("loading chunks for %s: %w", doc.ID, err)
		}

		if s.needsReembedding(chunks) {
			logger.Debug("Re-embedding document %s", doc.ID)
			if err := s.embedChunks(ctx, chunks, doc.Language); err != nil {
				return indexed, fmt.Errorf("re-embedding %s: %w", doc.ID, err)
			}
			if err := s.store.SaveChunks(ctx, doc.ID, chunks); err != nil {
				return indexed, fmt.Errorf("caching embeddings for %s: %w", doc.ID, err)
			}
		}

		if err := s.index.Upsert(ctx, doc.ID, chunks); err != nil {
			return indexed, fmt.Errorf("indexing %s: %w", doc.ID, err)
		}
		indexed++
	}

	logger.Info("Reindexed %d documents", indexed)
	return indexed, nil
}

// Stats reports document and chunk counts by department and language.
func (s *ContentService) Stats(ctx context.Context) (*driving.KnowledgeBaseStats, error) {
	docs, err := s.store.ListDocuments(ctx, driven.ListFilter{})
	if err != nil {
		return nil, err
	}

	stats := &driving.KnowledgeBaseStats{
		Documents:    len(docs),
		ByDepartment: make(map[domain.Department]int),
		ByLanguage:   make(map[domain.Language]int),
	}
	for _, doc := range docs {
		stats.ByDepartment[doc.Department]++
		stats.ByLanguage[doc.Language]++

		chunks, err := s.store.GetChunks(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		stats.Chunks += len(chunks)
	}

	if _, indexedChunks, err := s.index.Stats(ctx); err == nil {
		stats.IndexedChunks = indexedChunks
	} else {
		logger.Warn("index stats unavailable: %v", err)
	}
	return stats, nil
}

// Backup snapshots the document store. The index is left out: it is
// rebuildable from the snapshot with Reindex.
func (s *ContentService) Backup(ctx context.Context, destPath string) (string, error) {
	if destPath == "" {
		destPath = fmt.Sprintf("maarif-backup-%s.db", s.now().UTC().Format("20060102-150405"))
	}
	if err := s.store.Backup(ctx, destPath); err != nil {
		return "", err
	}
	logger.Info("Backed up knowledge base to %s", destPath)
	return destPath, nil
}

// buildChunks splits the document and embeds every chunk.
func (s *ContentService) buildChunks(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	chunks := s.chunker.Split(doc.Content)
	meta := chunkMetaFor(doc)
	for i := range chunks {
		chunks[i].DocumentID = doc.ID
		chunks[i].Meta = meta
	}
	if err := s.embedChunks(ctx, chunks, doc.Language); err != nil {
		return nil, err
	}
	return chunks, nil
}

// embedChunks fills in embeddings, batched and bounded.
func (s *ContentService) embedChunks(ctx context.Context, chunks []domain.Chunk, language domain.Language) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for start := 0; start < len(chunks); start += embedBatchSize {
		batch := chunks[start:min(start+embedBatchSize, len(chunks))]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i := range batch {
				texts[i] = batch[i].Content
			}
			vectors, err := s.embedder.EmbedBatch(gctx, texts, language)
			if err != nil {
				return err
			}
			for i := range batch {
				batch[i].Embedding = vectors[i]
			}
			return nil
		})
	}
	return g.Wait()
}

// commit persists the document record and its chunk cache.
func (s *ContentService) commit(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return err
	}
	return s.store.SaveChunks(ctx, doc.ID, chunks)
}

// restoreIndex puts a document's previously committed chunks back after
// a failed commit, so the index keeps serving the old version.
func (s *ContentService) restoreIndex(ctx context.Context, doc *domain.Document) {
	ctx = context.WithoutCancel(ctx)
	chunks, err := s.store.GetChunks(ctx, doc.ID)
	if err != nil {
		logger.Error("restore of %s failed reading chunks: %v", doc.ID, err)
		return
	}
	if err := s.index.Upsert(ctx, doc.ID, chunks); err != nil {
		logger.Error("restore of %s failed: %v", doc.ID, err)
	}
}

// needsReembedding reports whether any cached embedding does not match
// the provider's dimensionality.
func (s *ContentService) needsReembedding(chunks []domain.Chunk) bool {
	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.embedder.Dimensions() {
			return true
		}
	}
	return false
}

func (s *ContentService) validateInput(raw []byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty content", domain.ErrValidation)
	}
	if int64(len(raw)) > s.maxInputBytes {
		return fmt.Errorf("%w: content is %d bytes, limit %d",
			domain.ErrOversizeInput, len(raw), s.maxInputBytes)
	}
	return nil
}

// lockDocument serializes mutations of one document.
func (s *ContentService) lockDocument(id string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (s *ContentService) recordLifecycle(ctx context.Context, action domain.LifecycleAction, doc *domain.Document, chunks int) {
	if s.audit == nil {
		return
	}
	s.audit.RecordLifecycle(ctx, domain.LifecycleEvent{
		Action:     action,
		DocumentID: doc.ID,
		Title:      doc.Title,
		Department: doc.Department,
		Version:    doc.Version,
		Chunks:     chunks,
		At:         s.now().UTC(),
	})
}

// normalizeMeta validates caller-supplied metadata and applies defaults.
func normalizeMeta(meta domain.DocumentMeta) (domain.DocumentMeta, error) {
	if meta.Title == "" {
		return meta, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if !meta.Department.IsValid() {
		return meta, fmt.Errorf("%w: unknown department %q", domain.ErrValidation, meta.Department)
	}
	if !domain.IsValidCategory(meta.Category) {
		return meta, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, meta.Category)
	}
	if !meta.Language.IsValid() {
		return meta, fmt.Errorf("%w: unknown language %q", domain.ErrValidation, meta.Language)
	}
	if meta.Classification == "" {
		meta.Classification = domain.ClassificationInternal
	} else if !meta.Classification.IsValid() {
		return meta, fmt.Errorf("%w: unknown classification %q", domain.ErrValidation, meta.Classification)
	}
	return meta, nil
}

// chunkMetaFor copies the filterable document metadata onto its chunks.
func chunkMetaFor(doc *domain.Document) domain.ChunkMeta {
	return domain.ChunkMeta{
		Title:          doc.Title,
		Department:     doc.Department,
		Category:       doc.Category,
		Language:       doc.Language,
		Classification: doc.Classification,
		Version:        doc.Version,
		UpdatedAt:      doc.UpdatedAt,
	}
}

// contentHash is the SHA-256 hex digest of the raw content.
func contentHash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
