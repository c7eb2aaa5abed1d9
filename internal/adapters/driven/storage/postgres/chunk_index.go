package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// Ensure chunkIndex implements the interface.
var _ driven.VectorIndex = (*chunkIndex)(nil)

// chunkIndex runs project-scoped cosine similarity queries against the
// document_chunks table. pgvector's <=> operator is cosine distance, so
// similarity is 1 - distance and ascending distance order is descending
// similarity order.
type chunkIndex struct {
	db         *sqlx.DB
	dimensions int
}

// searchQuery filters before thresholding: project and namespace scoping
// are hard WHERE clauses, never ranking signals. The strict > keeps hits
// exactly at the threshold out. Ordering is by distance only; ties land
// in whatever order the store returns them.
const searchQuery = `
SELECT id, content, file_id, metadata, 1 - (embedding <=> $1) AS similarity
FROM document_chunks
WHERE project_id = $2
  AND namespace = ANY($3)
  AND 1 - (embedding <=> $1) > $4
ORDER BY embedding <=> $1
LIMIT $5`

// chunkRow is the scan target for searchQuery.
type chunkRow struct {
	ID         string  `db:"id"`
	Content    string  `db:"content"`
	FileID     string  `db:"file_id"`
	Metadata   []byte  `db:"metadata"`
	Similarity float64 `db:"similarity"`
}

// Search finds the chunks most similar to the query embedding within the
// project's namespaces. Zero hits is a valid result; an unreachable store
// is not, and wraps domain.ErrRetrieval.
func (c *chunkIndex) Search(
	ctx context.Context, query []float32, q driven.ChunkQuery,
) ([]domain.SimilarityHit, error) {
	if len(query) != c.dimensions {
		return nil, fmt.Errorf("query embedding has %d dimensions, index expects %d: %w",
			len(query), c.dimensions, domain.ErrDimensionMismatch)
	}
	if q.ProjectID == "" {
		return nil, fmt.Errorf("project id is required: %w", domain.ErrInvalidInput)
	}

	namespaces := q.Namespaces
	if len(namespaces) == 0 {
		namespaces = []string{domain.DefaultNamespace}
	}
	topK := q.TopK
	if topK <= 0 {
		topK = 10
	}

	var rows []chunkRow
	err := c.db.SelectContext(ctx, &rows, searchQuery,
		vectorLiteral(query), q.ProjectID, pq.Array(namespaces), q.Threshold, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %v: %w", err, domain.ErrRetrieval)
	}

	hits := make([]domain.SimilarityHit, len(rows))
	for i, row := range rows {
		var meta domain.ChunkMetadata
		if len(row.Metadata) > 0 {
			// Metadata is advisory; a malformed blob degrades the
			// location label, not the hit.
			_ = json.Unmarshal(row.Metadata, &meta)
		}
		hits[i] = domain.SimilarityHit{
			ChunkID:    row.ID,
			Content:    row.Content,
			FileID:     row.FileID,
			Similarity: row.Similarity,
			Metadata:   meta,
		}
	}
	return hits, nil
}

// vectorLiteral renders an embedding in pgvector's text input format,
// e.g. "[0.1,0.2,0.3]".
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
