package driven

import (
	"github.com/maarif-labs/maarif/internal/core/domain"
)

// ScopeClassifier decides whether a query, and separately a drafted
// answer, falls within the organisation's topical domain.
//
// Implementations never return errors: unclassifiable input resolves to
// an out-of-scope decision (fail closed).
type ScopeClassifier interface {
	// ClassifyQuery is the fast topical gate run before any retrieval
	// or generation cost is incurred.
	ClassifyQuery(text string, language domain.Language) domain.ScopeDecision

	// ClassifyAnswer is the grounding gate: the answer is in scope only
	// if its asserted content is substantially supported by the source
	// chunks handed to the generator.
	ClassifyAnswer(text string, language domain.Language, sources []domain.Chunk) domain.ScopeDecision
}
