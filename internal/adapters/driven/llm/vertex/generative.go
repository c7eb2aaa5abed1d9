// Package vertex provides a generative model adapter using the Vertex AI
// generateContent API.
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

// Ensure GenerativeService implements the interface.
var _ driven.GenerativeService = (*GenerativeService)(nil)

// Default configuration values.
const (
	DefaultModel   = "gemini-1.5-flash"
	DefaultTimeout = 120 * time.Second

	// defaultTemperature is deliberately low: the prompt demands a strict
	// JSON shape and creativity works against that.
	defaultTemperature = 0.2

	defaultMaxOutputTokens = 2048

	// jsonMimeType constrains the model to emit parseable JSON.
	jsonMimeType = "application/json"

	defaultRequestsPerSecond = 2.0
	defaultBurst             = 4
)

// Config holds configuration for the Vertex generative service.
type Config struct {
	// BaseURL is the publisher models base URL (required), same form as
	// the embedding adapter's.
	BaseURL string

	// Model is the generative model to use (default: gemini-1.5-flash).
	Model string

	// Temperature overrides the default generation temperature.
	Temperature float64

	// MaxOutputTokens bounds the response length (default: 2048).
	MaxOutputTokens int

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// GenerativeService invokes the generative model over HTTP with bearer
// tokens from the shared provider.
type GenerativeService struct {
	client  *http.Client
	limiter *rate.Limiter
	tokens  driven.TokenProvider
	baseURL string
	model   string
	genCfg  generationConfig
}

// generateRequest is the Vertex :generateContent request format.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

// generateResponse is the Vertex :generateContent response format.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewGenerativeService creates a new Vertex generative service.
func NewGenerativeService(cfg Config, tokens driven.TokenProvider) (*GenerativeService, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("vertex: base URL is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("vertex: token provider is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxOutputTokens == 0 {
		cfg.MaxOutputTokens = defaultMaxOutputTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &GenerativeService{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurst),
		tokens:  tokens,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		genCfg: generationConfig{
			Temperature:      cfg.Temperature,
			MaxOutputTokens:  cfg.MaxOutputTokens,
			ResponseMimeType: jsonMimeType,
		},
	}, nil
}

// Generate sends the prompt and returns the first candidate's first
// content part. The response text is expected to be JSON per the prompt's
// instruction, but decoding it is the caller's concern.
func (s *GenerativeService) Generate(ctx context.Context, prompt string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("generation rate limit: %w", err)
	}

	token, err := s.tokens.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("generation auth: %w", err)
	}

	jsonBody, err := json.Marshal(generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: s.genCfg,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %v: %w", err, domain.ErrGeneration)
	}

	url := s.baseURL + "/" + s.model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %v: %w", err, domain.ErrGeneration)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %v: %w", err, domain.ErrGeneration)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %v: %w", err, domain.ErrGeneration)
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("decode response: %v: %w", err, domain.ErrGeneration)
	}

	if gr.Error != nil {
		return "", fmt.Errorf("vertex error: %s: %w", gr.Error.Message, domain.ErrGeneration)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vertex error (status %d): %s: %w", resp.StatusCode, string(body), domain.ErrGeneration)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("vertex: response has no content part: %w", domain.ErrGeneration)
	}

	text := gr.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("vertex: response content part is empty: %w", domain.ErrGeneration)
	}
	return text, nil
}

// ModelName returns the name of the generative model being used.
func (s *GenerativeService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *GenerativeService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
