package services

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maarif-labs/maarif/internal/adapters/driven/index/memory"
	storememory "github.com/maarif-labs/maarif/internal/adapters/driven/storage/memory"
	"github.com/maarif-labs/maarif/internal/chunker"
	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/extractors"
)

// stubEmbedder produces deterministic bag-of-words vectors, good enough
// to exercise the pipeline without a live backend.
type stubEmbedder struct {
	dims       int
	batchCalls atomic.Int32
}

func (e *stubEmbedder) Embed(_ context.Context, text string, _ domain.Language) ([]float32, error) {
	vec := make([]float32, e.dims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(e.dims)]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string, language domain.Language) ([][]float32, error) {
	e.batchCalls.Add(1)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text, language)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int   { return e.dims }
func (e *stubEmbedder) ModelName() string { return "stub" }
func (e *stubEmbedder) Close() error      { return nil }

// captureAudit records events for assertions.
type captureAudit struct {
	mu        sync.Mutex
	lifecycle []domain.LifecycleEvent
	queries   []domain.QuerySummary
}

func (a *captureAudit) RecordLifecycle(_ context.Context, event domain.LifecycleEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lifecycle = append(a.lifecycle, event)
}

func (a *captureAudit) RecordQuery(_ context.Context, summary domain.QuerySummary) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queries = append(a.queries, summary)
}

func (a *captureAudit) Close() error { return nil }

// flakyStore wraps the in-memory store to inject commit failures.
type flakyStore struct {
	*storememory.DocumentStore
	failSaveChunks bool
}

func (s *flakyStore) SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if s.failSaveChunks {
		return errors.New("disk full")
	}
	return s.DocumentStore.SaveChunks(ctx, documentID, chunks)
}

// flakyIndex wraps the in-memory index to inject upsert failures.
type flakyIndex struct {
	*memory.Index
	upsertFailures int
}

func (i *flakyIndex) Upsert(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if i.upsertFailures > 0 {
		i.upsertFailures--
		return domain.ErrIndexUnavailable
	}
	return i.Index.Upsert(ctx, documentID, chunks)
}

func validMeta() domain.DocumentMeta {
	return domain.DocumentMeta{
		Title:      "Annual Leave Policy",
		Department: domain.DepartmentHR,
		Category:   "policies",
		Language:   domain.LanguageEnglish,
	}
}

type contentFixture struct {
	service  *ContentService
	store    *storememory.DocumentStore
	index    *memory.Index
	embedder *stubEmbedder
	audit    *captureAudit
}

func newContentFixture(t *testing.T, opts ...ContentOption) *contentFixture {
	t.Helper()

	f := &contentFixture{
		store:    storememory.NewDocumentStore(),
		index:    memory.New(8, memory.WithSimilarityFloor(0)),
		embedder: &stubEmbedder{dims: 8},
		audit:    &captureAudit{},
	}
	opts = append([]ContentOption{WithAuditSink(f.audit)}, opts...)
	f.service = NewContentService(f.store, f.index, f.embedder, extractors.Default(), chunker.New(), opts...)
	return f
}

func TestCreateIngestsDocument(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	raw := []byte("Employees are entitled to 30 days of annual leave per year. Requests must be submitted two weeks in advance.")
	doc, err := f.service.Create(ctx, raw, "txt", validMeta())
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, domain.InitialVersion, doc.Version)
	assert.Equal(t, domain.ClassificationInternal, doc.Classification)
	assert.NotEmpty(t, doc.ContentHash)
	assert.Equal(t, doc.CreatedAt, doc.UpdatedAt)

	stored, err := f.store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Content, stored.Content)

	chunks, err := f.store.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.Len(t, chunk.Embedding, 8)
		assert.Equal(t, doc.Title, chunk.Meta.Title)
	}

	vec, err := f.embedder.Embed(ctx, "annual leave", domain.LanguageEnglish)
	require.NoError(t, err)
	result, err := f.index.Search(ctx, vec, 5, domain.SearchFilter{MaxClassification: domain.ClassificationInternal})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, doc.ID, result.Hits[0].Chunk.DocumentID)

	require.Len(t, f.audit.lifecycle, 1)
	assert.Equal(t, domain.LifecycleCreated, f.audit.lifecycle[0].Action)
	assert.Equal(t, doc.ID, f.audit.lifecycle[0].DocumentID)
}

func TestCreateValidatesInput(t *testing.T) {
	f := newContentFixture(t, WithMaxInputBytes(64))
	ctx := context.Background()

	_, err := f.service.Create(ctx, nil, "txt", validMeta())
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.service.Create(ctx, []byte(strings.Repeat("x", 65)), "txt", validMeta())
	assert.ErrorIs(t, err, domain.ErrOversizeInput)
}

func TestCreateValidatesMetadata(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	raw := []byte("some content")

	tests := []struct {
		name   string
		mutate func(*domain.DocumentMeta)
	}{
		{"missing title", func(m *domain.DocumentMeta) { m.Title = "" }},
		{"unknown department", func(m *domain.DocumentMeta) { m.Department = "Legal" }},
		{"unknown category", func(m *domain.DocumentMeta) { m.Category = "memes" }},
		{"unknown language", func(m *domain.DocumentMeta) { m.Language = "fr" }},
		{"unknown classification", func(m *domain.DocumentMeta) { m.Classification = "top_secret" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := validMeta()
			tt.mutate(&meta)
			_, err := f.service.Create(ctx, raw, "txt", meta)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreateRejectsDuplicateContent(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	raw := []byte("identical content body")
	_, err := f.service.Create(ctx, raw, "txt", validMeta())
	require.NoError(t, err)

	meta := validMeta()
	meta.Title = "Different Title"
	_, err = f.service.Create(ctx, raw, "txt", meta)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateRejectsUnsupportedFormat(t *testing.T) {
	f := newContentFixture(t)

	_, err := f.service.Create(context.Background(), []byte("content"), "pdf", validMeta())
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestCreateCleansUpIndexOnCommitFailure(t *testing.T) {
	store := &flakyStore{DocumentStore: storememory.NewDocumentStore(), failSaveChunks: true}
	index := memory.New(8, memory.WithSimilarityFloor(0))
	service := NewContentService(store, index, &stubEmbedder{dims: 8}, extractors.Default(), chunker.New())

	_, err := service.Create(context.Background(), []byte("some content"), "txt", validMeta())
	require.Error(t, err)

	docs, chunks, err := index.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, docs)
	assert.Zero(t, chunks)
}

func TestUpdateRestoresIndexWhenUpsertFails(t *testing.T) {
	index := &flakyIndex{Index: memory.New(8, memory.WithSimilarityFloor(0))}
	embedder := &stubEmbedder{dims: 8}
	service := NewContentService(storememory.NewDocumentStore(), index, embedder, extractors.Default(), chunker.New())
	ctx := context.Background()

	doc, err := service.Create(ctx, []byte("original leave policy"), "txt", validMeta())
	require.NoError(t, err)

	index.upsertFailures = 1
	_, err = service.Update(ctx, doc.ID, []byte("revised leave policy"), "txt", validMeta(), doc.Version)
	require.Error(t, err)

	// The failed update must leave the original content searchable.
	vec, err := embedder.Embed(ctx, "original leave policy", domain.LanguageEnglish)
	require.NoError(t, err)
	result, err := index.Search(ctx, vec, 5, domain.SearchFilter{MaxClassification: domain.ClassificationInternal})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Contains(t, result.Hits[0].Chunk.Content, "original")
}

func TestUpdateBumpsMajorOnContentChange(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	doc, err := f.service.Create(ctx, []byte("original content"), "txt", validMeta())
	require.NoError(t, err)

	updated, err := f.service.Update(ctx, doc.ID, []byte("revised content"), "txt", validMeta(), doc.Version)
	require.NoError(t, err)

	assert.Equal(t, "2.0", updated.Version)
	assert.Equal(t, "revised content", updated.Content)
	assert.NotEqual(t, doc.ContentHash, updated.ContentHash)

	require.Len(t, f.audit.lifecycle, 2)
	assert.Equal(t, domain.LifecycleUpdated, f.audit.lifecycle[1].Action)
}

func TestUpdateBumpsMinorOnMetadataOnlyChange(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	raw := []byte("unchanged content")
	doc, err := f.service.Create(ctx, raw, "txt", validMeta())
	require.NoError(t, err)
	embedCallsAfterCreate := f.embedder.batchCalls.Load()

	meta := validMeta()
	meta.Title = "Renamed Policy"
	updated, err := f.service.Update(ctx, doc.ID, raw, "txt", meta, "")
	require.NoError(t, err)

	assert.Equal(t, "1.1", updated.Version)
	assert.Equal(t, "Renamed Policy", updated.Title)
	assert.Equal(t, embedCallsAfterCreate, f.embedder.batchCalls.Load(),
		"metadata-only update must reuse cached embeddings")

	chunks, err := f.store.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "Renamed Policy", chunks[0].Meta.Title)
	assert.Equal(t, "1.1", chunks[0].Meta.Version)
}

func TestUpdateRejectsStaleVersion(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	doc, err := f.service.Create(ctx, []byte("content"), "txt", validMeta())
	require.NoError(t, err)

	_, err = f.service.Update(ctx, doc.ID, []byte("new content"), "txt", validMeta(), "9.9")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateMissingDocument(t *testing.T) {
	f := newContentFixture(t)

	_, err := f.service.Update(context.Background(), "no-such-id", []byte("content"), "txt", validMeta(), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateRejectsContentOwnedByAnotherDocument(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, []byte("first body"), "txt", validMeta())
	require.NoError(t, err)

	meta := validMeta()
	meta.Title = "Second"
	second, err := f.service.Create(ctx, []byte("second body"), "txt", meta)
	require.NoError(t, err)

	_, err = f.service.Update(ctx, second.ID, []byte("first body"), "txt", meta, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeleteIsIdempotent(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	doc, err := f.service.Create(ctx, []byte("to be deleted"), "txt", validMeta())
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, doc.ID))
	require.NoError(t, f.service.Delete(ctx, doc.ID))

	_, err = f.store.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	docs, chunks, err := f.index.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, docs)
	assert.Zero(t, chunks)

	// One created and exactly one deleted event.
	require.Len(t, f.audit.lifecycle, 2)
	assert.Equal(t, domain.LifecycleDeleted, f.audit.lifecycle[1].Action)
}

func TestReindexReembedsOnDimensionChange(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	doc, err := f.service.Create(ctx, []byte("content to reindex"), "txt", validMeta())
	require.NoError(t, err)

	// A new deployment with a different embedding model invalidates the
	// cached vectors.
	newIndex := memory.New(4, memory.WithSimilarityFloor(0))
	rebuilt := NewContentService(f.store, newIndex, &stubEmbedder{dims: 4}, extractors.Default(), chunker.New())

	count, err := rebuilt.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	chunks, err := f.store.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	for _, chunk := range chunks {
		assert.Len(t, chunk.Embedding, 4)
	}

	docs, indexed, err := newIndex.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, docs)
	assert.Equal(t, len(chunks), indexed)
}

func TestBackupSnapshotsStore(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, []byte("Employees accrue leave monthly."), "txt", validMeta())
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "snapshot.json")
	path, err := f.service.Backup(ctx, dest)
	require.NoError(t, err)
	assert.Equal(t, dest, path)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	// An existing destination is never overwritten.
	_, err = f.service.Backup(ctx, dest)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStatsAggregatesByDepartmentAndLanguage(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, []byte("hr content body"), "txt", validMeta())
	require.NoError(t, err)

	meta := validMeta()
	meta.Title = "دليل تقنية المعلومات"
	meta.Department = domain.DepartmentIT
	meta.Language = domain.LanguageArabic
	_, err = f.service.Create(ctx, []byte("يشرح هذا الدليل سياسة كلمات المرور في الهيئة."), "txt", meta)
	require.NoError(t, err)

	stats, err := f.service.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 1, stats.ByDepartment[domain.DepartmentHR])
	assert.Equal(t, 1, stats.ByDepartment[domain.DepartmentIT])
	assert.Equal(t, 1, stats.ByLanguage[domain.LanguageArabic])
	assert.Positive(t, stats.Chunks)
	assert.Equal(t, stats.Chunks, stats.IndexedChunks)
}
