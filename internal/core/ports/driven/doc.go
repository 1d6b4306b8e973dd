// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding, vector index, document storage,
// generation, extraction, scope classification and audit.
package driven
