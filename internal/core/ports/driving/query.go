package driving

import (
	"context"

	"github.com/maarif-labs/maarif/internal/core/domain"
)

// QueryService is the engine's read path: one call per user turn. It
// never returns collaborator error text to the caller; failures surface
// as a QueryResponse carrying the fixed unavailable message.
type QueryService interface {
	// Answer runs the query state machine to a terminal state. The
	// error return is non-nil only for caller misuse (empty request)
	// or context cancellation; every collaborator failure is absorbed
	// into a Failed response.
	Answer(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error)
}
