package driving

import (
	"context"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// SuggestionService produces citation-grounded critical-thinking
// suggestions for a user's in-progress document text.
type SuggestionService interface {
	// GetSuggestions runs the retrieval pipeline for one request and
	// always returns a well-formed result: on any internal failure the
	// suggestion list is empty and Cause records the machine-readable
	// reason. It never returns an error and never panics; the editing UI
	// must not be blockable by this subsystem.
	GetSuggestions(ctx context.Context, req domain.SuggestionRequest) domain.SuggestionResult
}
