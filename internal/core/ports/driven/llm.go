package driven

import "context"

// GenerativeService invokes the generative model with a rendered prompt.
//
// Implementations attach a bearer token from a TokenProvider and send a
// low-temperature, JSON-mime-constrained generation configuration to bias
// the model toward schema-conformant output. Parsing and validating the
// returned JSON belongs to the services layer, not the transport.
type GenerativeService interface {
	// Generate sends the prompt and returns the first candidate's text.
	// Transport failures, non-2xx responses, and an empty or missing
	// content part all wrap domain.ErrGeneration. Token mint failures
	// keep domain.ErrAuth in their chain.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the generative model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
