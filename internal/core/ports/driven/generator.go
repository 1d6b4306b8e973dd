package driven

import (
	"context"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

// GenerationRequest carries everything the external generator needs for
// one answer.
type GenerationRequest struct {
	// Instruction is the system prompt fixing the output language and
	// constraining the generator to the assembled context.
	Instruction string

	// Context is the assembled, truncated chunk text.
	Context string

	// Query is the user question.
	Query string

	// Language is the required output language.
	Language domain.Language
}

// UserMessage renders the assembled context and the question into the
// single user message chat-style backends expect, with labels in the
// answer language.
func (r GenerationRequest) UserMessage() string {
	if r.Context == "" {
		return r.Query
	}
	if r.Language == domain.LanguageArabic {
		return "السياق:\n" + r.Context + "\n\nالسؤال: " + r.Query
	}
	return "Context:\n" + r.Context + "\n\nQuestion: " + r.Query
}

// Generator is the external language-generation backend, treated as a pure
// function from (instruction, context, query, language) to text. It is
// swappable; the engine assumes no specific vendor.
//
// Failures and timeouts are returned as domain.ErrGeneratorUnavailable
// (wrapped) and are never retried, to bound query latency.
type Generator interface {
	// Generate produces the answer text.
	Generate(ctx context.Context, req GenerationRequest) (string, error)

	// ModelName returns the generation model identifier.
	ModelName() string

	// Close releases resources.
	Close() error
}
