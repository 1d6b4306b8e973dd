package driven

import (
	"context"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

// AuditSink receives lifecycle events and finalized query summaries for
// an external audit collaborator. The engine does not persist these
// itself; sink failures are logged and never fail the originating
// operation.
type AuditSink interface {
	// RecordLifecycle records a content mutation.
	RecordLifecycle(ctx context.Context, event domain.LifecycleEvent)

	// RecordQuery records a completed query.
	RecordQuery(ctx context.Context, summary domain.QuerySummary)

	// Close releases resources.
	Close() error
}
