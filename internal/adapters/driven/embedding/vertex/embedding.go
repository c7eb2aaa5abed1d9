// Package vertex provides an embedding service adapter using the Vertex AI
// prediction API.
package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel   = "text-embedding-004"
	DefaultTimeout = 60 * time.Second

	// Conservative pacing for the prediction endpoint, well below quota.
	defaultRequestsPerSecond = 10.0
	defaultBurst             = 20
)

// Config holds configuration for the Vertex embedding service.
type Config struct {
	// BaseURL is the publisher models base URL, e.g.
	// https://us-central1-aiplatform.googleapis.com/v1/projects/P/locations/us-central1/publishers/google/models
	// (required).
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-004).
	Model string

	// Dimensions is the expected vector size (default:
	// domain.EmbeddingDimensions). Must match the vector store.
	Dimensions int

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// EmbeddingService generates embeddings via Vertex AI. Calls are paced
// with a token bucket and authenticated with bearer tokens from the
// shared provider. Results are never cached: the query text changes on
// every keystroke-driven request.
type EmbeddingService struct {
	client     *http.Client
	limiter    *rate.Limiter
	tokens     driven.TokenProvider
	baseURL    string
	model      string
	dimensions int
}

// predictRequest is the Vertex :predict request format.
type predictRequest struct {
	Instances []predictInstance `json:"instances"`
}

type predictInstance struct {
	Content string `json:"content"`
}

// predictResponse is the Vertex :predict response format.
type predictResponse struct {
	Predictions []struct {
		Embeddings struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	} `json:"predictions"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates a new Vertex embedding service.
func NewEmbeddingService(cfg Config, tokens driven.TokenProvider) (*EmbeddingService, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("vertex: base URL is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("vertex: token provider is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.EmbeddingDimensions
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurst),
		tokens:     tokens,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text. One outbound
// HTTP call per invocation; retry policy belongs to the caller.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}

	token, err := s.tokens.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("embedding auth: %w", err)
	}

	jsonBody, err := json.Marshal(predictRequest{
		Instances: []predictInstance{{Content: text}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %v: %w", err, domain.ErrEmbedding)
	}

	url := s.baseURL + "/" + s.model + ":predict"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %v: %w", err, domain.ErrEmbedding)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %v: %w", err, domain.ErrEmbedding)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %v: %w", err, domain.ErrEmbedding)
	}

	var pr predictResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("decode response: %v: %w", err, domain.ErrEmbedding)
	}

	if pr.Error != nil {
		return nil, fmt.Errorf("vertex error: %s: %w", pr.Error.Message, domain.ErrEmbedding)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vertex error (status %d): %s: %w", resp.StatusCode, string(body), domain.ErrEmbedding)
	}
	if len(pr.Predictions) == 0 {
		return nil, fmt.Errorf("vertex: no embedding returned: %w", domain.ErrEmbedding)
	}

	values := pr.Predictions[0].Embeddings.Values
	if len(values) != s.dimensions {
		return nil, fmt.Errorf("vertex: got %d dimensions, want %d: %w",
			len(values), s.dimensions, domain.ErrDimensionMismatch)
	}

	return values, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates connectivity and credentials with a minimal prediction.
// Used at startup so a misconfigured endpoint fails before serving.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("vertex: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
