package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// Ensure the wrapper types implement the interfaces.
var (
	_ driven.FileStore    = (*fileStore)(nil)
	_ driven.ProjectStore = (*projectStore)(nil)
)

// fileStore resolves citation metadata from the product's files table.
type fileStore struct {
	db *sqlx.DB
}

// fileRow is the scan target for file lookups.
type fileRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	Type string `db:"type"`
}

// GetByIDs looks up files in one batched query. Unknown IDs are simply
// absent from the result map.
func (s *fileStore) GetByIDs(ctx context.Context, ids []string) (map[string]domain.File, error) {
	if len(ids) == 0 {
		return map[string]domain.File{}, nil
	}

	var rows []fileRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, name, type FROM files WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("file lookup: %v: %w", err, domain.ErrRetrieval)
	}

	files := make(map[string]domain.File, len(rows))
	for _, row := range rows {
		files[row.ID] = domain.File{ID: row.ID, Name: row.Name, Type: row.Type}
	}
	return files, nil
}

// projectStore reads project goals and membership from the product's
// projects and project_members tables.
type projectStore struct {
	db *sqlx.DB
}

// GetGoal returns the project's stated goal.
func (s *projectStore) GetGoal(ctx context.Context, projectID string) (string, error) {
	var goal string
	err := s.db.GetContext(ctx, &goal, `SELECT goal FROM projects WHERE id = $1`, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("project goal lookup: %v: %w", err, domain.ErrRetrieval)
	}
	return goal, nil
}

// IsMember reports whether the user has read access to the project.
func (s *projectStore) IsMember(ctx context.Context, userID, projectID string) (bool, error) {
	var member bool
	err := s.db.GetContext(ctx, &member,
		`SELECT EXISTS (SELECT 1 FROM project_members WHERE user_id = $1 AND project_id = $2)`,
		userID, projectID)
	if err != nil {
		return false, fmt.Errorf("membership check: %v: %w", err, domain.ErrRetrieval)
	}
	return member, nil
}
