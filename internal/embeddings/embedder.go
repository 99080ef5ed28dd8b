package embeddings

import (
	"context"
	"fmt"
)

// Embedder converts a text into a fixed-length embedding vector via an
// external provider. Implementations are stateless, safe for concurrent use,
// make exactly one provider call per Embed, and never retry; retry policy
// belongs to the caller.
type Embedder interface {
	// Embed returns the embedding vector for text. Provider failures are
	// returned as *UnavailableError.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the number of elements in the vectors this
	// embedder produces.
	Dimensions() int

	// Name returns the provider/model identifier.
	Name() string
}

// Reason classifies why an embedding provider call failed.
type Reason int

const (
	// ReasonConnection means the provider was unreachable, including
	// timed-out calls.
	ReasonConnection Reason = iota
	// ReasonStatus means the provider answered with a non-success status.
	ReasonStatus
	// ReasonResponse means the provider answered but the vector field was
	// missing or invalid.
	ReasonResponse
)

func (r Reason) String() string {
	switch r {
	case ReasonConnection:
		return "connection"
	case ReasonStatus:
		return "status"
	case ReasonResponse:
		return "response"
	default:
		return "unknown"
	}
}

// UnavailableError is the single failure type surfaced by every Embedder.
// The embedding pipeline treats it as a per-document skip; search treats it
// as fatal for the query.
type UnavailableError struct {
	Provider string
	Reason   Reason
	Err      error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("embedding provider %s unavailable (%s)", e.Provider, e.Reason)
	}
	return fmt.Sprintf("embedding provider %s unavailable (%s): %v", e.Provider, e.Reason, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
