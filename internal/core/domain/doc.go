// Package domain contains the core business types for the knowledge engine:
// documents and chunks, retrieval results, scope decisions, query responses
// and the sentinel errors shared across services and adapters.
package domain
