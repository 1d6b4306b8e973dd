package domain

import "time"

// QueryState tracks a query's progress through the engine.
type QueryState string

// Query engine states. Finalized, Rejected and Failed are terminal.
const (
	StateReceived         QueryState = "received"
	StatePreClassified    QueryState = "pre_classified"
	StateRetrieved        QueryState = "retrieved"
	StateContextAssembled QueryState = "context_assembled"
	StateGenerated        QueryState = "generated"
	StatePostClassified   QueryState = "post_classified"
	StateFinalized        QueryState = "finalized"
	StateRejected         QueryState = "rejected"
	StateFailed           QueryState = "failed"
)

// Terminal returns true if no further transitions are possible.
func (s QueryState) Terminal() bool {
	return s == StateFinalized || s == StateRejected || s == StateFailed
}

// Requester describes the caller on whose behalf a query runs. It drives
// the metadata filters applied to retrieval.
type Requester struct {
	// Department restricts retrieval to the requester's visible
	// departments. Empty means no department restriction.
	Departments []Department

	// Clearance is the highest classification the requester may read.
	// Empty defaults to public.
	Clearance Classification
}

// MaxClassification returns the effective clearance.
func (r Requester) MaxClassification() Classification {
	if r.Clearance.IsValid() {
		return r.Clearance
	}
	return ClassificationPublic
}

// QueryRequest is one user turn entering the engine.
type QueryRequest struct {
	// Text is the recognised user utterance.
	Text string

	// Language is the preferred response language. When empty it is
	// detected from the text.
	Language Language

	// Requester provides the visibility context.
	Requester Requester
}

// SearchFilter restricts a vector search to chunks whose metadata matches.
type SearchFilter struct {
	// Departments limits results to these departments. Empty matches all.
	Departments []Department

	// Language limits results to one content language. Empty matches all.
	Language Language

	// MaxClassification excludes chunks above this access level.
	MaxClassification Classification
}

// Matches reports whether chunk metadata satisfies the filter.
func (f SearchFilter) Matches(meta ChunkMeta) bool {
	if len(f.Departments) > 0 {
		found := false
		for _, d := range f.Departments {
			if meta.Department == d {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Language != "" && meta.Language != f.Language {
		return false
	}
	if meta.Classification.Rank() > f.MaxClassification.Rank() {
		return false
	}
	return true
}

// RetrievedChunk is one ranked search hit.
type RetrievedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Similarity is the cosine similarity to the query vector (0-1).
	Similarity float64
}

// RetrievalResult is the ranked outcome of one vector search. Ephemeral,
// scoped to one query.
type RetrievalResult struct {
	// Hits are ranked by similarity descending, ties broken by most
	// recent document update then lowest document ID.
	Hits []RetrievedChunk

	// QueryEmbedding is the vector the search used.
	QueryEmbedding []float32
}

// SourceRef identifies a cited document in a response.
type SourceRef struct {
	// DocumentID is the cited document.
	DocumentID string

	// Title is the document title.
	Title string

	// Department owns the document.
	Department Department

	// Similarity is the best similarity among the document's cited chunks.
	Similarity float64
}

// QueryResponse is the engine's final output for one query.
type QueryResponse struct {
	// Answer is the text to hand to the caller.
	Answer string

	// Language is the response language.
	Language Language

	// Sources lists the documents actually cited, best match first.
	Sources []SourceRef

	// Confidence is the top retrieved similarity scaled to a percentage.
	Confidence float64

	// State is the terminal state the query reached.
	State QueryState

	// Scope is the decision that produced a Rejected terminal, when any.
	Scope *ScopeDecision
}

// QuerySummary is the audit record emitted for a completed query.
type QuerySummary struct {
	Query      string
	Language   Language
	State      QueryState
	Sources    []SourceRef
	Confidence float64
	Duration   time.Duration
	At         time.Time
}

// LifecycleAction is a content mutation kind for audit events.
type LifecycleAction string

// Lifecycle actions.
const (
	LifecycleCreated LifecycleAction = "created"
	LifecycleUpdated LifecycleAction = "updated"
	LifecycleDeleted LifecycleAction = "deleted"
)

// LifecycleEvent is the audit record emitted for a content mutation.
type LifecycleEvent struct {
	Action     LifecycleAction
	DocumentID string
	Title      string
	Department Department
	Version    string
	Chunks     int
	At         time.Time
}
