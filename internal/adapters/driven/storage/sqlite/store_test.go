package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testDocument(id string) *domain.Document {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Document{
		ID: id,
		DocumentMeta: domain.DocumentMeta{
			Title:          "Annual Leave Policy",
			Department:     domain.DepartmentHR,
			Category:       "policy",
			Language:       domain.LanguageArabic,
			Author:         "hr-team",
			Tags:           []string{"leave", "hr"},
			Classification: domain.ClassificationInternal,
		},
		Version:     "1.0",
		Content:     "يحصل الموظف على 30 يوم إجازة سنوية.",
		ContentHash: "hash-" + id,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestSaveAndGetDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("doc-1")
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Department, got.Department)
	assert.Equal(t, doc.Language, got.Language)
	assert.Equal(t, doc.Tags, got.Tags)
	assert.Equal(t, doc.Content, got.Content)
	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, doc.UpdatedAt.Equal(got.UpdatedAt))
}

func TestGetDocument_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetDocument(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveDocument_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("doc-1")
	require.NoError(t, store.SaveDocument(ctx, doc))

	doc.Title = "Updated Title"
	doc.Version = "2.0"
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", got.Title)
	assert.Equal(t, "2.0", got.Version)
}

func TestSaveAndGetChunks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("doc-1")
	require.NoError(t, store.SaveDocument(ctx, doc))

	chunks := []domain.Chunk{
		{DocumentID: "doc-1", Index: 0, Total: 2, Content: "first", StartChar: 0, EndChar: 5,
			Embedding: []float32{0.1, 0.2, 0.3}},
		{DocumentID: "doc-1", Index: 1, Total: 2, Content: "second", StartChar: 5, EndChar: 11,
			Embedding: []float32{0.4, 0.5, 0.6}},
	}
	require.NoError(t, store.SaveChunks(ctx, "doc-1", chunks))

	got, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got[0].Embedding)
	assert.Equal(t, "second", got[1].Content)

	// Chunk metadata is rebuilt from the document row.
	assert.Equal(t, doc.Title, got[0].Meta.Title)
	assert.Equal(t, doc.Classification, got[0].Meta.Classification)
	assert.Equal(t, doc.Version, got[0].Meta.Version)
}

func TestSaveChunks_ReplacesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, testDocument("doc-1")))
	require.NoError(t, store.SaveChunks(ctx, "doc-1", []domain.Chunk{
		{DocumentID: "doc-1", Index: 0, Total: 2, Content: "old-a"},
		{DocumentID: "doc-1", Index: 1, Total: 2, Content: "old-b"},
	}))
	require.NoError(t, store.SaveChunks(ctx, "doc-1", []domain.Chunk{
		{DocumentID: "doc-1", Index: 0, Total: 1, Content: "new"},
	}))

	got, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Content)
}

func TestFindByContentHash(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, testDocument("doc-1")))

	got, err := store.FindByContentHash(ctx, "hash-doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)

	_, err = store.FindByContentHash(ctx, "no-such-hash")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteDocument_CascadesAndIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, testDocument("doc-1")))
	require.NoError(t, store.SaveChunks(ctx, "doc-1", []domain.Chunk{
		{DocumentID: "doc-1", Index: 0, Total: 1, Content: "c"},
	}))

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))
	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetChunks(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))
}

func TestListDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	hr := testDocument("doc-hr")
	require.NoError(t, store.SaveDocument(ctx, hr))

	it := testDocument("doc-it")
	it.Department = domain.DepartmentIT
	it.Language = domain.LanguageEnglish
	it.ContentHash = "hash-it"
	it.UpdatedAt = it.UpdatedAt.Add(time.Hour)
	require.NoError(t, store.SaveDocument(ctx, it))

	all, err := store.ListDocuments(ctx, driven.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "doc-it", all[0].ID) // most recently updated first

	hrOnly, err := store.ListDocuments(ctx, driven.ListFilter{Department: domain.DepartmentHR})
	require.NoError(t, err)
	require.Len(t, hrOnly, 1)
	assert.Equal(t, "doc-hr", hrOnly[0].ID)

	arOnly, err := store.ListDocuments(ctx, driven.ListFilter{Language: domain.LanguageArabic})
	require.NoError(t, err)
	require.Len(t, arOnly, 1)
	assert.Equal(t, "doc-hr", arOnly[0].ID)
}

func TestBackup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, testDocument("doc-1")))

	restoreDir := t.TempDir()
	dest := filepath.Join(restoreDir, "knowledge.db")
	require.NoError(t, store.Backup(ctx, dest))

	// A second backup must not clobber the first.
	err := store.Backup(ctx, dest)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// The snapshot is a complete database usable as a data directory.
	restored, err := New(restoreDir)
	require.NoError(t, err)
	defer restored.Close()

	got, err := restored.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Annual Leave Policy", got.Title)
}

func TestBackup_RequiresDestination(t *testing.T) {
	store := newTestStore(t)
	err := store.Backup(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveDocument(context.Background(), testDocument("doc-1")))
	require.NoError(t, store.Close())

	reopened, err := New(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)
}
