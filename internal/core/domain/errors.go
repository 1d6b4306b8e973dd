package domain

import "errors"

// Domain errors represent business and collaborator failures.
// Services wrap these with context; callers match with errors.Is.
var (
	// ErrNotFound indicates a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates bad input. Never retried; surfaced to the
	// content-management caller as a specific correction request.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a concurrent update to the same document lost
	// the race. The caller retries with fresh state.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrUnsupportedFormat indicates no extractor is registered for the
	// document's format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailed indicates parsing succeeded structurally but
	// yielded no extractable text.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrOversizeInput indicates raw content exceeds the configured
	// maximum size.
	ErrOversizeInput = errors.New("input too large")

	// ErrEmbeddingUnavailable indicates the embedding backend failed or
	// timed out. Retryable with backoff.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the vector index backend failed.
	// The content manager treats this as a transaction failure.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGeneratorUnavailable indicates the generation backend failed or
	// timed out. Not retried, to bound query latency.
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	// ErrDimensionMismatch indicates a vector whose dimensionality does
	// not match the index configuration. Mixing vectors from different
	// embedding configurations is forbidden.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
