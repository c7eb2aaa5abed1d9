package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockProjectStore implements driven.ProjectStore for testing.
type mockProjectStore struct {
	member    bool
	memberErr error
	goal      string
	goalErr   error
}

func (m *mockProjectStore) GetGoal(_ context.Context, _ string) (string, error) {
	return m.goal, m.goalErr
}

func (m *mockProjectStore) IsMember(_ context.Context, _, _ string) (bool, error) {
	return m.member, m.memberErr
}

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	embedding []float32
	embedErr  error
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbedder) Dimensions() int              { return domain.EmbeddingDimensions }
func (m *mockEmbedder) ModelName() string            { return "mock-embedder" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []domain.SimilarityHit
	searchErr error
	lastQuery driven.ChunkQuery
}

func (m *mockVectorIndex) Search(
	_ context.Context, _ []float32, q driven.ChunkQuery,
) ([]domain.SimilarityHit, error) {
	m.lastQuery = q
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

// mockFileStore implements driven.FileStore for testing.
type mockFileStore struct {
	files   map[string]domain.File
	err     error
	calls   int
	lastIDs []string
}

func (m *mockFileStore) GetByIDs(_ context.Context, ids []string) (map[string]domain.File, error) {
	m.calls++
	m.lastIDs = ids
	if m.err != nil {
		return nil, m.err
	}
	return m.files, nil
}

// mockGenerator implements driven.GenerativeService for testing.
type mockGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockGenerator) ModelName() string { return "mock-generator" }
func (m *mockGenerator) Close() error      { return nil }

// --- Helpers ---

func intp(v int) *int { return &v }

func testService(
	projects *mockProjectStore,
	embedder *mockEmbedder,
	index *mockVectorIndex,
	files *mockFileStore,
	gen *mockGenerator,
) *SuggestionService {
	return NewSuggestionService(projects, embedder, index, files, gen, Options{
		Threshold: 0.5,
		TopK:      5,
	})
}

func happyMocks() (*mockProjectStore, *mockEmbedder, *mockVectorIndex, *mockFileStore, *mockGenerator) {
	projects := &mockProjectStore{member: true, goal: "Establish timeline of events"}
	embedder := &mockEmbedder{embedding: make([]float32, domain.EmbeddingDimensions)}
	index := &mockVectorIndex{hits: []domain.SimilarityHit{
		{
			ChunkID:    "c-1",
			Content:    "meeting was rescheduled to March 10th",
			FileID:     "F1",
			Similarity: 0.91,
			Metadata:   domain.ChunkMetadata{Page: intp(2)},
		},
	}}
	files := &mockFileStore{files: map[string]domain.File{
		"F1": {ID: "F1", Name: "minutes.pdf", Type: "pdf"},
	}}
	gen := &mockGenerator{response: `{"suggestions": [
		{"type": "contradiction",
		 "text": "The indexed minutes say the meeting moved to March 10th.",
		 "file_id": "F1", "location": "Page 2",
		 "quote": "meeting was rescheduled to March 10th"}
	]}`}
	return projects, embedder, index, files, gen
}

// --- Tests ---

func TestGetSuggestions_ContradictionScenario(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	svc := testService(projects, embedder, index, files, gen)

	res := svc.GetSuggestions(context.Background(), domain.SuggestionRequest{
		UserID:      "u-1",
		ProjectID:   "p-1",
		CurrentText: "The meeting occurred on March 3rd",
	})

	require.NotNil(t, res.Suggestions)
	assert.Equal(t, domain.CauseNone, res.Cause)

	var contradictions []domain.Suggestion
	for _, sg := range res.Suggestions {
		if sg.Type == domain.SuggestionContradiction {
			contradictions = append(contradictions, sg)
		}
	}
	require.NotEmpty(t, contradictions, "expected at least one contradiction suggestion")
	assert.Equal(t, "F1", contradictions[0].FileID)
}

func TestGetSuggestions_PromptCarriesGoalTextAndEvidence(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	svc := testService(projects, embedder, index, files, gen)

	svc.GetSuggestions(context.Background(), domain.SuggestionRequest{
		UserID:      "u-1",
		ProjectID:   "p-1",
		CurrentText: "The meeting occurred on March 3rd",
	})

	assert.Contains(t, gen.lastPrompt, "Establish timeline of events")
	assert.Contains(t, gen.lastPrompt, "The meeting occurred on March 3rd")
	assert.Contains(t, gen.lastPrompt, "minutes.pdf")
	assert.Contains(t, gen.lastPrompt, "Page 2")
	assert.Contains(t, gen.lastPrompt, "meeting was rescheduled to March 10th")
}

func TestGetSuggestions_SearchScopedToProjectAndOptions(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	svc := testService(projects, embedder, index, files, gen)

	svc.GetSuggestions(context.Background(), domain.SuggestionRequest{
		UserID: "u-1", ProjectID: "p-1", CurrentText: "text",
	})

	assert.Equal(t, "p-1", index.lastQuery.ProjectID)
	assert.Equal(t, []string{domain.DefaultNamespace}, index.lastQuery.Namespaces)
	assert.InDelta(t, 0.5, index.lastQuery.Threshold, 1e-9)
	assert.Equal(t, 5, index.lastQuery.TopK)
}

func TestGetSuggestions_NotMember(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	projects.member = false
	svc := testService(projects, embedder, index, files, gen)

	res := svc.GetSuggestions(context.Background(), domain.SuggestionRequest{
		UserID: "outsider", ProjectID: "p-1", CurrentText: "text",
	})

	assert.Equal(t, domain.CauseAuthorization, res.Cause)
	assert.Empty(t, res.Suggestions)
	assert.Zero(t, embedder.calls, "authorization must be checked before embedding")
}

func TestGetSuggestions_EmptyText(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	svc := testService(projects, embedder, index, files, gen)

	res := svc.GetSuggestions(context.Background(), domain.SuggestionRequest{
		UserID: "u-1", ProjectID: "p-1", CurrentText: "   \n\t ",
	})

	require.NotNil(t, res.Suggestions)
	assert.Empty(t, res.Suggestions)
	assert.Equal(t, domain.CauseNone, res.Cause)
	assert.Zero(t, embedder.calls)
}

func TestGetSuggestions_EmbeddingFailure(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	embedder.embedErr = fmt.Errorf("embed: %w", domain.ErrEmbedding)
	svc := testService(projects, embedder, index, files, gen)

	res := svc.GetSuggestions(context.Background(), domain.SuggestionRequest{
		UserID: "u-1", ProjectID: "p-1", CurrentText: "text",
	})

	assert.Equal(t, domain.CauseEmbedding, res.Cause)
	assert.Empty(t, res.Suggestions)
}

func TestGetSuggestions_DimensionMismatchIsEmbeddingCause(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	embedder.embedErr = fmt.Errorf("embed: %w", domain.ErrDimensionMismatch)
	svc := testService(projects, embedder, index, files, gen)

	res := svc.GetSuggestions(context.Background(), domain.SuggestionRequest{
		UserID: "u-1", ProjectID: "p-1", CurrentText: "text",
	})

	assert.Equal(t, domain.CauseEmbedding, res.Cause)
}

func TestGetSuggestions_RetrievalFailure(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	index.searchErr = fmt.Errorf("store: %w", domain.ErrRetrieval)
	svc := testService(projects, embedder, index, files, gen)

	res := svc.GetSuggestions(context.Background(), domain.SuggestionRequest{
		UserID: "u-1", ProjectID: "p-1", CurrentText: "text",
	})

	assert.Equal(t, domain.CauseRetrieval, res.Cause)
	assert.Empty(t, res.Suggestions)
}

func TestGetSuggestions_GenerationFailure(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	gen.err = fmt.Errorf("model call: %w", domain.ErrGeneration)
	svc := testService(projects, embedder, index, files, gen)

	res := svc.GetSuggestions(context.Background(), domain.SuggestionRequest{
		UserID: "u-1", ProjectID: "p-1", CurrentText: "text",
	})

	assert.Equal(t, domain.CauseGeneration, res.Cause)
}

func TestGetSuggestions_TokenMintFailureIsAuthCause(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	gen.err = fmt.Errorf("model call: %w", fmt.Errorf("token: %w", domain.ErrAuth))
	svc := testService(projects, embedder, index, files, gen)

	res := svc.GetSuggestions(context.Background(), domain.SuggestionRequest{
		UserID: "u-1", ProjectID: "p-1", CurrentText: "text",
	})

	assert.Equal(t, domain.CauseAuth, res.Cause)
}

func TestGetSuggestions_CancelledContextIsTimeoutCause(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	svc := testService(projects, embedder, index, files, gen)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	gen.err = ctx.Err()

	res := svc.GetSuggestions(ctx, domain.SuggestionRequest{
		UserID: "u-1", ProjectID: "p-1", CurrentText: "text",
	})

	assert.Equal(t, domain.CauseTimeout, res.Cause)
	assert.Empty(t, res.Suggestions)
}

func TestGetSuggestions_ZeroHitsStillGenerates(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	index.hits = nil
	gen.response = `{"suggestions": []}`
	svc := testService(projects, embedder, index, files, gen)

	res := svc.GetSuggestions(context.Background(), domain.SuggestionRequest{
		UserID: "u-1", ProjectID: "p-1", CurrentText: "text",
	})

	require.NotNil(t, res.Suggestions)
	assert.Empty(t, res.Suggestions)
	assert.Equal(t, domain.CauseNone, res.Cause)
	assert.Contains(t, gen.lastPrompt, "No evidence found")
	assert.Zero(t, files.calls, "no metadata lookup for zero hits")
}

func TestGetSuggestions_MalformedModelJSONIsSoft(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	gen.response = "Sure! Here are some thoughts about your text..."
	svc := testService(projects, embedder, index, files, gen)

	res := svc.GetSuggestions(context.Background(), domain.SuggestionRequest{
		UserID: "u-1", ProjectID: "p-1", CurrentText: "text",
	})

	require.NotNil(t, res.Suggestions)
	assert.Empty(t, res.Suggestions)
	assert.Equal(t, domain.CauseNone, res.Cause, "malformed output is not a pipeline failure")
}

func TestGetSuggestions_NeverPanicsOnNilishInput(t *testing.T) {
	projects, embedder, index, files, gen := happyMocks()
	svc := testService(projects, embedder, index, files, gen)

	assert.NotPanics(t, func() {
		res := svc.GetSuggestions(context.Background(), domain.SuggestionRequest{})
		require.NotNil(t, res.Suggestions)
	})
}

func TestParseSuggestions_DropsUnknownTypeIndividually(t *testing.T) {
	raw := `{"suggestions": [
		{"type": "support", "text": "backed by the minutes"},
		{"type": "unknown", "text": "should be dropped"},
		{"type": "question", "text": "who attended?"}
	]}`

	got := parseSuggestions(raw)

	require.Len(t, got, 2)
	assert.Equal(t, domain.SuggestionSupport, got[0].Type)
	assert.Equal(t, domain.SuggestionQuestion, got[1].Type)
}

func TestParseSuggestions_DropsEmptyText(t *testing.T) {
	raw := `{"suggestions": [{"type": "support", "text": "  "}]}`
	assert.Empty(t, parseSuggestions(raw))
}

func TestParseSuggestions_MalformedJSON(t *testing.T) {
	got := parseSuggestions(`{"suggestions": [`)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseSuggestions_MissingKey(t *testing.T) {
	got := parseSuggestions(`{}`)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCauseFor_UnwrapsChains(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		err  error
		want domain.FailureCause
	}{
		{"auth", fmt.Errorf("a: %w", domain.ErrAuth), domain.CauseAuth},
		{"authorization", fmt.Errorf("a: %w", domain.ErrAuthorization), domain.CauseAuthorization},
		{"embedding", fmt.Errorf("a: %w", domain.ErrEmbedding), domain.CauseEmbedding},
		{"generation", fmt.Errorf("a: %w", domain.ErrGeneration), domain.CauseGeneration},
		{"retrieval", fmt.Errorf("a: %w", domain.ErrRetrieval), domain.CauseRetrieval},
		{"not found maps to retrieval", fmt.Errorf("a: %w", domain.ErrNotFound), domain.CauseRetrieval},
		{"deadline", context.DeadlineExceeded, domain.CauseTimeout},
		{"cancel", context.Canceled, domain.CauseTimeout},
		{"opaque maps to retrieval", errors.New("boom"), domain.CauseRetrieval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, causeFor(ctx, tt.err))
		})
	}
}
