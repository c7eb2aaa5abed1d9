package driven

import "context"

// TokenProvider provides access tokens for authenticated ML API calls.
// Implementations handle caching and refresh transparently: within a
// token's validity window repeated calls return the cached value with no
// network traffic, and concurrent callers during a cold cache serialize
// behind a single exchange.
//
// Tokens never leave the adapter layer; services hand the provider to
// outbound HTTP adapters, which attach the token themselves.
type TokenProvider interface {
	// GetToken returns a valid access token, refreshing it if the cached
	// one is expired or about to expire. Failures wrap domain.ErrAuth.
	GetToken(ctx context.Context) (string, error)
}
