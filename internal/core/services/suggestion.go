package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
	"github.com/custodia-labs/veritas/internal/core/ports/driving"
	"github.com/custodia-labs/veritas/internal/logger"
)

// Ensure SuggestionService implements the interface.
var _ driving.SuggestionService = (*SuggestionService)(nil)

// Retrieval defaults, used when Options leaves a field zero.
const (
	DefaultThreshold = 0.5
	DefaultTopK      = 8
)

// Options configures retrieval for the suggestion pipeline.
type Options struct {
	// Threshold is the minimum similarity (exclusive) for a hit to count
	// as evidence.
	Threshold float64

	// TopK bounds how many evidence snippets reach the prompt. This is
	// the only context-budget control; the prompt itself never truncates.
	TopK int

	// Namespaces are the corpus partitions to search.
	Namespaces []string
}

// SuggestionService runs the retrieval-augmented suggestion pipeline.
// Each request is a single stateless execution; the only state shared
// across requests lives behind the adapters (the token cache).
type SuggestionService struct {
	projects  driven.ProjectStore
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	files     driven.FileStore
	generator driven.GenerativeService
	opts      Options
}

// NewSuggestionService creates a new suggestion service.
func NewSuggestionService(
	projects driven.ProjectStore,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	files driven.FileStore,
	generator driven.GenerativeService,
	opts Options,
) *SuggestionService {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if len(opts.Namespaces) == 0 {
		opts.Namespaces = []string{domain.DefaultNamespace}
	}
	return &SuggestionService{
		projects:  projects,
		embedder:  embedder,
		index:     index,
		files:     files,
		generator: generator,
		opts:      opts,
	}
}

// GetSuggestions runs the pipeline for one request:
//
//	authorize -> embed -> search -> assemble -> prompt -> generate -> validate
//
// Stages run strictly in order; each stage's output is the next stage's
// sole input. Every failure is converted here, at the boundary, into a
// well-formed empty result with a machine-readable cause. Nothing below
// this method is allowed to reach the calling UI as an error.
func (s *SuggestionService) GetSuggestions(
	ctx context.Context, req domain.SuggestionRequest,
) domain.SuggestionResult {
	logger.Section("Suggestion Pipeline")
	logger.Debug("Project: %s, text length: %d", req.ProjectID, len(req.CurrentText))

	text := strings.TrimSpace(req.CurrentText)
	if text == "" || req.ProjectID == "" {
		logger.Debug("Empty text or project, returning no suggestions")
		return domain.EmptyResult(domain.CauseNone)
	}

	// Authorization precedes everything, including embedding. Its
	// failure is the one cause the HTTP layer maps to 403 rather than a
	// masked 200.
	member, err := s.projects.IsMember(ctx, req.UserID, req.ProjectID)
	if err != nil {
		return s.failed(ctx, "membership check", err)
	}
	if !member {
		logger.Warn("User %s denied access to project %s", req.UserID, req.ProjectID)
		return domain.EmptyResult(domain.CauseAuthorization)
	}

	goal, err := s.projects.GetGoal(ctx, req.ProjectID)
	if err != nil {
		return s.failed(ctx, "project goal lookup", err)
	}
	logger.Debug("Project goal: %q", goal)

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return s.failed(ctx, "query embedding", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := s.index.Search(ctx, embedding, driven.ChunkQuery{
		ProjectID:  req.ProjectID,
		Namespaces: s.opts.Namespaces,
		Threshold:  s.opts.Threshold,
		TopK:       s.opts.TopK,
	})
	if err != nil {
		return s.failed(ctx, "similarity search", err)
	}
	logger.Debug("Similarity search: %d hits above %.2f", len(hits), s.opts.Threshold)

	// Zero hits is not a failure: the model still sees the text and can
	// ask questions or flag gaps without citations.
	evidence := assembleEvidence(ctx, s.files, hits)

	prompt := BuildPrompt(goal, text, evidence)
	logger.Debug("Prompt: %d bytes, %d evidence snippets", len(prompt), len(evidence))

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return s.failed(ctx, "generation", err)
	}

	suggestions := parseSuggestions(raw)
	logger.Info("Suggestions: %d", len(suggestions))

	return domain.SuggestionResult{Suggestions: suggestions}
}

// failed logs the real error and converts it into the uniform degraded
// result. The caller-facing shape never carries the error itself.
func (s *SuggestionService) failed(ctx context.Context, stage string, err error) domain.SuggestionResult {
	logger.Warn("Pipeline failed at %s: %v", stage, err)
	return domain.EmptyResult(causeFor(ctx, err))
}

// causeFor maps an error chain onto the machine-readable failure cause.
// Context expiry wins over the stage error so a cancelled caller sees
// Timeout rather than whichever stage happened to notice first.
func causeFor(ctx context.Context, err error) domain.FailureCause {
	switch {
	case ctx.Err() != nil,
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.CauseTimeout
	case errors.Is(err, domain.ErrAuth):
		return domain.CauseAuth
	case errors.Is(err, domain.ErrAuthorization):
		return domain.CauseAuthorization
	case errors.Is(err, domain.ErrEmbedding), errors.Is(err, domain.ErrDimensionMismatch):
		return domain.CauseEmbedding
	case errors.Is(err, domain.ErrGeneration):
		return domain.CauseGeneration
	default:
		// Store and metadata failures, including unknown projects.
		return domain.CauseRetrieval
	}
}

// modelResponse is the JSON object the prompt instructs the model to emit.
type modelResponse struct {
	Suggestions []domain.Suggestion `json:"suggestions"`
}

// parseSuggestions decodes and validates the model's textual response.
// A response that is not valid JSON is a soft outcome: the user simply
// sees no suggestions. This is deliberately different from transport and
// auth failures, which are hard errors with a recorded cause. Individual
// suggestions with an unrecognized type are dropped; the rest of the
// batch survives.
func parseSuggestions(raw string) []domain.Suggestion {
	var resp modelResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &resp); err != nil {
		logger.Warn("Model response is not valid JSON, returning no suggestions: %v", err)
		return []domain.Suggestion{}
	}

	valid := make([]domain.Suggestion, 0, len(resp.Suggestions))
	for _, sg := range resp.Suggestions {
		if !sg.Type.Valid() {
			logger.Debug("Dropping suggestion with unknown type %q", sg.Type)
			continue
		}
		if strings.TrimSpace(sg.Text) == "" {
			logger.Debug("Dropping suggestion with empty text")
			continue
		}
		valid = append(valid, sg)
	}
	return valid
}
