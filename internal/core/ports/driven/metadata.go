package driven

import (
	"context"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// FileStore resolves file metadata for citations.
type FileStore interface {
	// GetByIDs looks up files in a single batched query and returns them
	// keyed by ID. IDs with no matching file are simply absent from the
	// map; that is not an error.
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.File, error)
}

// ProjectStore exposes the product's project metadata and membership
// backing store.
type ProjectStore interface {
	// GetGoal returns the project's stated goal. Unknown projects return
	// domain.ErrNotFound.
	GetGoal(ctx context.Context, projectID string) (string, error)

	// IsMember reports whether the user has read access to the project.
	IsMember(ctx context.Context, userID, projectID string) (bool, error)
}
