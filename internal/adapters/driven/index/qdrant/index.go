// Package qdrant provides a vector index backed by a Qdrant server,
// spoken to over its REST API.
//
// Qdrant has no multi-point transaction, so per-document replacement is
// made atomic-in-effect with generation tagging: every upsert writes
// its points under a fresh generation number, then deletes the
// document's older generations. A search that races a replacement can
// see both generations; results are deduplicated to the highest
// generation observed per document, so a mixed set is never returned.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
	"github.com/maarif-labs/maarif/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultBaseURL         = "http://localhost:6333"
	DefaultCollection      = "organizational_knowledge"
	DefaultTimeout         = 15 * time.Second
	DefaultSimilarityFloor = 0.7

	// oversample widens the raw search so deduplication and the
	// client-side tie-break still leave topK candidates.
	oversample = 3
)

// Config holds configuration for the Qdrant index.
type Config struct {
	// BaseURL is the Qdrant REST endpoint (default: http://localhost:6333).
	BaseURL string

	// APIKey authenticates against Qdrant Cloud. Optional.
	APIKey string

	// Collection is the collection name.
	Collection string

	// Dimensions is the vector size; the collection is created with it.
	Dimensions int

	// SimilarityFloor excludes weak matches.
	SimilarityFloor float64

	// Timeout is the per-request timeout (default: 15s).
	Timeout time.Duration
}

// Index is a minimal REST client to Qdrant.
type Index struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string
	dimensions int
	floor      float64
}

// New creates the index and ensures the collection exists with cosine
// distance and the configured dimensionality.
func New(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrValidation)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.SimilarityFloor == 0 {
		cfg.SimilarityFloor = DefaultSimilarityFloor
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	idx := &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
		floor:      cfg.SimilarityFloor,
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     cfg.Dimensions,
			"distance": "Cosine",
		},
	}
	// Qdrant answers 200 when the collection already exists with the
	// same schema.
	if err := idx.putJSON(ctx, fmt.Sprintf("/collections/%s", cfg.Collection), body, nil); err != nil {
		return nil, err
	}
	return idx, nil
}

// pointPayload is the stored metadata for one chunk.
type pointPayload struct {
	DocumentID     string `json:"document_id"`
	ChunkIndex     int    `json:"chunk_index"`
	ChunkTotal     int    `json:"chunk_total"`
	Content        string `json:"content"`
	StartChar      int    `json:"start_char"`
	EndChar        int    `json:"end_char"`
	Title          string `json:"title"`
	Department     string `json:"department"`
	Category       string `json:"category"`
	Language       string `json:"language"`
	Classification string `json:"classification"`
	ClassRank      int    `json:"class_rank"`
	Version        string `json:"version"`
	UpdatedAt      string `json:"updated_at"`
	Generation     int64  `json:"generation"`
}

// Upsert writes the chunks under a fresh generation, then removes the
// document's older generations.
func (idx *Index) Upsert(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if documentID == "" {
		return fmt.Errorf("%w: empty document ID", domain.ErrValidation)
	}
	for i, chunk := range chunks {
		if len(chunk.Embedding) != idx.dimensions {
			return fmt.Errorf("%w: chunk %d has %d dimensions, index expects %d",
				domain.ErrDimensionMismatch, i, len(chunk.Embedding), idx.dimensions)
		}
	}

	generation := time.Now().UnixNano()
	points := make([]map[string]any, len(chunks))
	for i, chunk := range chunks {
		points[i] = map[string]any{
			"id":     pointID(chunk.ID(), generation),
			"vector": chunk.Embedding,
			"payload": pointPayload{
				DocumentID:     chunk.DocumentID,
				ChunkIndex:     chunk.Index,
				ChunkTotal:     chunk.Total,
				Content:        chunk.Content,
				StartChar:      chunk.StartChar,
				EndChar:        chunk.EndChar,
				Title:          chunk.Meta.Title,
				Department:     string(chunk.Meta.Department),
				Category:       chunk.Meta.Category,
				Language:       string(chunk.Meta.Language),
				Classification: string(chunk.Meta.Classification),
				ClassRank:      chunk.Meta.Classification.Rank(),
				Version:        chunk.Meta.Version,
				UpdatedAt:      chunk.Meta.UpdatedAt.UTC().Format(time.RFC3339Nano),
				Generation:     generation,
			},
		}
	}

	if len(points) > 0 {
		body := map[string]any{"points": points}
		path := fmt.Sprintf("/collections/%s/points?wait=true", idx.collection)
		if err := idx.putJSON(ctx, path, body, nil); err != nil {
			return err
		}
	}

	// Drop older generations of this document. If that fails the new
	// generation must not stay live: its write never completed as far as
	// the caller is concerned, and search dedupes to the highest
	// generation, so leaving it would serve uncommitted content. Roll
	// the new points back before reporting the failure.
	err := idx.deleteByFilter(ctx, map[string]any{
		"must": []map[string]any{
			{"key": "document_id", "match": map[string]any{"value": documentID}},
			{"key": "generation", "range": map[string]any{"lt": generation}},
		},
	})
	if err != nil {
		rollbackCtx := context.WithoutCancel(ctx)
		if rbErr := idx.deleteByFilter(rollbackCtx, map[string]any{
			"must": []map[string]any{
				{"key": "document_id", "match": map[string]any{"value": documentID}},
				{"key": "generation", "range": map[string]any{"gte": generation}},
			},
		}); rbErr != nil {
			logger.Error("rolling back generation %d of %s: %v", generation, documentID, rbErr)
		}
		return err
	}
	return nil
}

// Search runs a scored vector search and reduces the raw hits to a
// consistent, deduplicated, deterministically ordered result.
func (idx *Index) Search(ctx context.Context, queryVector []float32, topK int, filter domain.SearchFilter) (*domain.RetrievalResult, error) {
	if len(queryVector) != idx.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(queryVector), idx.dimensions)
	}
	result := &domain.RetrievalResult{QueryEmbedding: queryVector}
	if topK <= 0 {
		return result, nil
	}

	req := map[string]any{
		"vector":          queryVector,
		"limit":           topK * oversample,
		"with_payload":    true,
		"score_threshold": idx.floor,
	}
	if qf := buildFilter(filter); qf != nil {
		req["filter"] = qf
	}

	var resp struct {
		Result []struct {
			Score   float64      `json:"score"`
			Payload pointPayload `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", idx.collection)
	if err := idx.postJSON(ctx, path, req, &resp); err != nil {
		return nil, err
	}

	// Keep only each document's highest generation seen in this result.
	latest := make(map[string]int64)
	for _, r := range resp.Result {
		if r.Payload.Generation > latest[r.Payload.DocumentID] {
			latest[r.Payload.DocumentID] = r.Payload.Generation
		}
	}

	var hits []domain.RetrievedChunk
	for _, r := range resp.Result {
		if r.Payload.Generation != latest[r.Payload.DocumentID] {
			continue
		}
		updatedAt, _ := time.Parse(time.RFC3339Nano, r.Payload.UpdatedAt)
		hits = append(hits, domain.RetrievedChunk{
			Chunk: domain.Chunk{
				DocumentID: r.Payload.DocumentID,
				Index:      r.Payload.ChunkIndex,
				Total:      r.Payload.ChunkTotal,
				Content:    r.Payload.Content,
				StartChar:  r.Payload.StartChar,
				EndChar:    r.Payload.EndChar,
				Meta: domain.ChunkMeta{
					Title:          r.Payload.Title,
					Department:     domain.Department(r.Payload.Department),
					Category:       r.Payload.Category,
					Language:       domain.Language(r.Payload.Language),
					Classification: domain.Classification(r.Payload.Classification),
					Version:        r.Payload.Version,
					UpdatedAt:      updatedAt,
				},
			},
			Similarity: r.Score,
		})
	}

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

// Delete removes all of the document's points, in any generation.
func (idx *Index) Delete(ctx context.Context, documentID string) error {
	return idx.deleteByFilter(ctx, map[string]any{
		"must": []map[string]any{
			{"key": "document_id", "match": map[string]any{"value": documentID}},
		},
	})
}

// Stats counts points, then scrolls payloads to count distinct documents.
func (idx *Index) Stats(ctx context.Context) (int, int, error) {
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/count", idx.collection)
	if err := idx.postJSON(ctx, path, map[string]any{"exact": true}, &countResp); err != nil {
		return 0, 0, err
	}

	docs := make(map[string]struct{})
	var offset any
	for {
		req := map[string]any{
			"limit":        1000,
			"with_payload": []string{"document_id"},
			"with_vector":  false,
		}
		if offset != nil {
			req["offset"] = offset
		}
		var scrollResp struct {
			Result struct {
				Points []struct {
					Payload struct {
						DocumentID string `json:"document_id"`
					} `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		path := fmt.Sprintf("/collections/%s/points/scroll", idx.collection)
		if err := idx.postJSON(ctx, path, req, &scrollResp); err != nil {
			return 0, 0, err
		}
		for _, p := range scrollResp.Result.Points {
			docs[p.Payload.DocumentID] = struct{}{}
		}
		if scrollResp.Result.NextPageOffset == nil {
			break
		}
		offset = scrollResp.Result.NextPageOffset
	}

	return len(docs), countResp.Result.Count, nil
}

// Close releases resources.
func (idx *Index) Close() error {
	idx.client.CloseIdleConnections()
	return nil
}

// pointID derives a deterministic UUID for a chunk within a generation.
func pointID(chunkID string, generation int64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s@%d", chunkID, generation))).String()
}

// buildFilter translates the domain filter into Qdrant's filter DSL.
func buildFilter(filter domain.SearchFilter) map[string]any {
	var must []map[string]any

	if len(filter.Departments) > 0 {
		departments := make([]string, len(filter.Departments))
		for i, d := range filter.Departments {
			departments[i] = string(d)
		}
		must = append(must, map[string]any{
			"key":   "department",
			"match": map[string]any{"any": departments},
		})
	}
	if filter.Language != "" {
		must = append(must, map[string]any{
			"key":   "language",
			"match": map[string]any{"value": string(filter.Language)},
		})
	}
	if filter.MaxClassification != "" {
		must = append(must, map[string]any{
			"key":   "class_rank",
			"range": map[string]any{"lte": filter.MaxClassification.Rank()},
		})
	}

	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}

func (idx *Index) deleteByFilter(ctx context.Context, filter map[string]any) error {
	body := map[string]any{"filter": filter}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", idx.collection)
	return idx.postJSON(ctx, path, body, nil)
}

func (idx *Index) putJSON(ctx context.Context, path string, body, out any) error {
	return idx.doJSON(ctx, http.MethodPut, path, body, out)
}

func (idx *Index) postJSON(ctx context.Context, path string, body, out any) error {
	return idx.doJSON(ctx, http.MethodPost, path, body, out)
}

func (idx *Index) doJSON(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, idx.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idx.apiKey != "" {
		req.Header.Set("api-key", idx.apiKey)
	}

	resp, err := idx.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: qdrant %s %s: %s: %s",
			domain.ErrIndexUnavailable, method, path, resp.Status, string(msg))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
