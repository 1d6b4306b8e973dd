package domain

// ScopeReason is a short machine-usable code explaining a scope verdict.
type ScopeReason string

// Scope reason codes.
const (
	// ReasonAllowlisted: the query matched an organisational category.
	ReasonAllowlisted ScopeReason = "allowlisted"

	// ReasonDenylisted: the query matched a disallowed topic.
	ReasonDenylisted ScopeReason = "denylisted"

	// ReasonUnmatched: no topic matched; verdict follows the configured
	// default for unmatched queries.
	ReasonUnmatched ScopeReason = "unmatched"

	// ReasonUnclassifiable: empty or malformed input; fails closed.
	ReasonUnclassifiable ScopeReason = "unclassifiable"

	// ReasonGrounded: the answer's content is supported by its sources.
	ReasonGrounded ScopeReason = "grounded"

	// ReasonUngrounded: the answer asserts content not traceable to any
	// source chunk.
	ReasonUngrounded ScopeReason = "ungrounded"

	// ReasonNoSources: the answer was produced with no source chunks.
	ReasonNoSources ScopeReason = "no_sources"
)

// ScopeDecision is the outcome of classifying a query or a drafted answer.
// It is ephemeral, produced and consumed within one query's processing.
type ScopeDecision struct {
	// InScope is the verdict.
	InScope bool

	// Reason explains the verdict.
	Reason ScopeReason

	// Sources lists the chunks that grounded an answer-side verdict.
	// Empty for query-side decisions.
	Sources []Chunk
}
