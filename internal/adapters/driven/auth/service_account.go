// Package auth provides a token provider for the ML API using
// service-account credentials and the OAuth2 JWT-bearer assertion flow.
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
	"github.com/custodia-labs/veritas/internal/logger"
)

// Ensure ServiceAccountProvider implements the interface.
var _ driven.TokenProvider = (*ServiceAccountProvider)(nil)

// Default configuration values.
const (
	DefaultScope   = "https://www.googleapis.com/auth/cloud-platform"
	DefaultTimeout = 30 * time.Second

	// assertionLifetime is the exp - iat window of the signed assertion.
	assertionLifetime = time.Hour

	// expirySkew treats a token as expired slightly before its real
	// expiry so in-flight requests never race a dying token.
	expirySkew = 30 * time.Second

	grantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// Credentials is the service-account key material, in the JSON key file
// format the cloud console issues.
type Credentials struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// LoadCredentials reads and parses a service-account key file.
func LoadCredentials(path string) (Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials file: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials file: %w", err)
	}
	return creds, nil
}

// Config holds configuration for the service-account token provider.
type Config struct {
	// Credentials is the parsed service-account key material (required).
	Credentials Credentials

	// Scope is the OAuth2 scope to request (default: cloud-platform).
	Scope string

	// TokenURL overrides the exchange endpoint from the credentials.
	// Useful for testing.
	TokenURL string

	// Timeout is the exchange request timeout (default: 30s).
	Timeout time.Duration
}

// ServiceAccountProvider mints bearer tokens via the JWT-bearer grant and
// caches them. The cache is the only state shared across requests: reads
// of a live token are cheap, and a cold or expired cache serializes all
// callers behind a single exchange so redundant mints never go out.
type ServiceAccountProvider struct {
	client   *http.Client
	key      *rsa.PrivateKey
	email    string
	scope    string
	tokenURL string

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// assertionClaims is the signed claim set. The fields are a wire contract
// with the token endpoint; iss, scope, aud, exp and iat must all be set.
type assertionClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// tokenResponse is the exchange response format.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// NewServiceAccountProvider creates a new token provider. Malformed key
// material is rejected here, not at first use.
func NewServiceAccountProvider(cfg Config) (*ServiceAccountProvider, error) {
	if cfg.Credentials.ClientEmail == "" {
		return nil, fmt.Errorf("auth: client email is required: %w", domain.ErrAuth)
	}
	if cfg.Credentials.PrivateKey == "" {
		return nil, fmt.Errorf("auth: private key is required: %w", domain.ErrAuth)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.Credentials.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("auth: parse private key: %v: %w", err, domain.ErrAuth)
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = cfg.Credentials.TokenURI
	}
	if tokenURL == "" {
		return nil, fmt.Errorf("auth: token endpoint is required: %w", domain.ErrAuth)
	}
	scope := cfg.Scope
	if scope == "" {
		scope = DefaultScope
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &ServiceAccountProvider{
		client:   &http.Client{Timeout: timeout},
		key:      key,
		email:    cfg.Credentials.ClientEmail,
		scope:    scope,
		tokenURL: tokenURL,
	}, nil
}

// GetToken returns a valid bearer token. Within the validity window the
// cached value is returned with no network call. Expiry is evaluated
// lazily with a skew, never by timer.
func (p *ServiceAccountProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.expiry.Add(-expirySkew)) {
		return p.token, nil
	}

	logger.Debug("Token cache miss, exchanging new assertion")
	token, expiry, err := p.exchange(ctx)
	if err != nil {
		return "", err
	}

	p.token = token
	p.expiry = expiry
	return token, nil
}

// exchange signs a fresh assertion and trades it for a bearer token.
func (p *ServiceAccountProvider) exchange(ctx context.Context) (string, time.Time, error) {
	assertion, err := p.signAssertion(time.Now())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign assertion: %v: %w", err, domain.ErrAuth)
	}

	form := url.Values{}
	form.Set("grant_type", grantType)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: create request: %v: %w", err, domain.ErrAuth)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: token request: %v: %w", err, domain.ErrAuth)
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", time.Time{}, fmt.Errorf("auth: decode token response: %v: %w", err, domain.ErrAuth)
	}

	if resp.StatusCode != http.StatusOK {
		if tr.Error != "" {
			return "", time.Time{}, fmt.Errorf("auth: token exchange rejected: %s - %s: %w",
				tr.Error, tr.Description, domain.ErrAuth)
		}
		return "", time.Time{}, fmt.Errorf("auth: token exchange failed with status %d: %w",
			resp.StatusCode, domain.ErrAuth)
	}
	if tr.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("auth: token exchange returned no token: %w", domain.ErrAuth)
	}

	expiry := time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	logger.Debug("Token minted, expires in %ds", tr.ExpiresIn)
	return tr.AccessToken, expiry, nil
}

// signAssertion builds the RS256-signed JWT assertion.
func (p *ServiceAccountProvider) signAssertion(now time.Time) (string, error) {
	claims := assertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.email,
			Audience:  jwt.ClaimStrings{p.tokenURL},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
		},
		Scope: p.scope,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.key)
}
