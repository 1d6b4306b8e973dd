// Package jsonl provides an append-only audit sink writing one JSON
// object per line. The file is the handover point to whatever external
// audit pipeline the organisation runs; the engine never reads it back.
package jsonl

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driven"
	"github.com/maarif-labs/maarif/internal/logger"
)

// Ensure Sink implements the interface.
var _ driven.AuditSink = (*Sink)(nil)

// Sink appends audit records to a JSONL file.
type Sink struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// record is the envelope for one audit line.
type record struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`

	// Lifecycle fields.
	Action     string `json:"action,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Department string `json:"department,omitempty"`
	Version    string `json:"version,omitempty"`
	Chunks     int    `json:"chunks,omitempty"`

	// Query fields.
	Query      string             `json:"query,omitempty"`
	Language   string             `json:"language,omitempty"`
	State      string             `json:"state,omitempty"`
	Sources    []domain.SourceRef `json:"sources,omitempty"`
	Confidence float64            `json:"confidence,omitempty"`
	DurationMS int64              `json:"duration_ms,omitempty"`
}

// New opens (or creates) the audit file for appending.
func New(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &Sink{f: f, enc: json.NewEncoder(f)}, nil
}

// RecordLifecycle records a content mutation. Write failures are logged
// and swallowed; audit must never fail the originating operation.
func (s *Sink) RecordLifecycle(_ context.Context, event domain.LifecycleEvent) {
	s.write(record{
		Type:       "lifecycle",
		At:         event.At,
		Action:     string(event.Action),
		DocumentID: event.DocumentID,
		Title:      event.Title,
		Department: string(event.Department),
		Version:    event.Version,
		Chunks:     event.Chunks,
	})
}

// RecordQuery records a completed query.
func (s *Sink) RecordQuery(_ context.Context, summary domain.QuerySummary) {
	s.write(record{
		Type:       "query",
		At:         summary.At,
		Query:      summary.Query,
		Language:   string(summary.Language),
		State:      string(summary.State),
		Sources:    summary.Sources,
		Confidence: summary.Confidence,
		DurationMS: summary.Duration.Milliseconds(),
	})
}

// Close flushes and closes the audit file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

func (s *Sink) write(rec record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(rec); err != nil {
		logger.Error("audit: write failed: %v", err)
	}
}
