package services

import (
	"context"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
	"github.com/custodia-labs/veritas/internal/logger"
)

// assembleEvidence joins similarity hits with file metadata to build
// citable snippets. All distinct file IDs are resolved in a single
// batched lookup to bound I/O. A failed or partial lookup never drops a
// hit: unresolved files get the placeholder name instead. Output
// preserves the input similarity ordering.
func assembleEvidence(
	ctx context.Context, files driven.FileStore, hits []domain.SimilarityHit,
) []domain.EvidenceSnippet {
	if len(hits) == 0 {
		return []domain.EvidenceSnippet{}
	}

	// Collect distinct file IDs, preserving first-seen order.
	seen := make(map[string]struct{}, len(hits))
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		if _, ok := seen[hit.FileID]; ok {
			continue
		}
		seen[hit.FileID] = struct{}{}
		ids = append(ids, hit.FileID)
	}

	byID, err := files.GetByIDs(ctx, ids)
	if err != nil {
		logger.Warn("File metadata lookup failed, citing with placeholder names: %v", err)
		byID = nil
	}

	snippets := make([]domain.EvidenceSnippet, len(hits))
	for i, hit := range hits {
		name := domain.UnknownFileName
		if f, ok := byID[hit.FileID]; ok {
			name = f.Name
		}
		snippets[i] = domain.EvidenceSnippet{
			ChunkID:       hit.ChunkID,
			Content:       hit.Content,
			FileID:        hit.FileID,
			FileName:      name,
			LocationLabel: hit.Metadata.LocationLabel(),
			Similarity:    hit.Similarity,
		}
	}

	return snippets
}
