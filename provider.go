package jwtx

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const bearerTokenType = "Bearer"

// NewTokenSource resolves how an API client authenticates. A static token is
// used verbatim; otherwise tokens are minted from the private key and reused
// until they approach expiry.
func NewTokenSource(cfg AuthConfig) (oauth2.TokenSource, error) {
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: bearerTokenType}), nil
	}

	key, err := parseSigningKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	return oauth2.ReuseTokenSource(nil, &signingTokenSource{key: key, credentials: cfg.credentials()}), nil
}

// signingTokenSource mints a new token on every call.
type signingTokenSource struct {
	key         *signingKey
	credentials Credentials
}

func (s *signingTokenSource) Token() (*oauth2.Token, error) {
	now := timeNow()
	signed, err := s.key.sign(s.credentials, now)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{AccessToken: signed, TokenType: bearerTokenType}
	if expiry := effectiveExpiry(s.credentials); !expiry.Infinite() {
		tok.Expiry = now.Truncate(time.Second).Add(expiry.Duration())
	}
	return tok, nil
}

// ProviderConfig defines the key and default token metadata of a Provider.
type ProviderConfig struct {
	PrivateKey []byte
	Issuer     string
	Subject    string
	Expiry     Expiry
}

// Provider mints tokens for any API surface from a single private key.
// It caches token sources per (surface, issuer, subject, expiry) combination.
type Provider struct {
	mu       sync.RWMutex
	key      *signingKey
	entries  map[providerKey]oauth2.TokenSource
	defaults TokenParams
}

type providerKey struct {
	Surface APISurface
	Issuer  string
	Subject string
	Expiry  Expiry
}

// NewProvider parses the private key once and returns a Provider using it.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if len(bytes.TrimSpace(cfg.PrivateKey)) == 0 {
		return nil, newError(ErrCodeMissingCredential, errors.New("private key is required"))
	}
	key, err := parseSigningKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &Provider{
		key:     key,
		entries: make(map[providerKey]oauth2.TokenSource),
		defaults: TokenParams{
			Issuer:  cfg.Issuer,
			Subject: cfg.Subject,
			Expiry:  cfg.Expiry,
		},
	}, nil
}

// Token returns a bearer token carrying the all-access claims of surface.
func (p *Provider) Token(surface APISurface, opts ...TokenOption) (string, error) {
	src, err := p.TokenSource(surface, opts...)
	if err != nil {
		return "", err
	}
	tok, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("empty access token returned")
	}
	return tok.AccessToken, nil
}

// TokenSource returns the cached token source for surface and options.
func (p *Provider) TokenSource(surface APISurface, opts ...TokenOption) (oauth2.TokenSource, error) {
	if !surface.Valid() {
		return nil, newError(ErrCodeInvalidConfig, fmt.Errorf("unknown API surface %d", int(surface)))
	}
	params := resolveParams(p.defaults, opts)
	key := providerKey{
		Surface: surface,
		Issuer:  params.Issuer,
		Subject: params.Subject,
		Expiry:  params.Expiry,
	}
	return p.getOrCreate(key, params), nil
}

// Sign signs arbitrary credentials with the provider's key, bypassing the cache.
func (p *Provider) Sign(c Credentials) (string, error) {
	return p.key.sign(c, timeNow())
}

func (p *Provider) getOrCreate(key providerKey, params TokenParams) oauth2.TokenSource {
	p.mu.RLock()
	src, ok := p.entries[key]
	p.mu.RUnlock()
	if ok {
		return src
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if src, ok = p.entries[key]; ok {
		return src
	}

	creds := params.apply(key.Surface.DefaultCredentials())
	src = oauth2.ReuseTokenSource(nil, &signingTokenSource{key: p.key, credentials: creds})
	p.entries[key] = src
	return src
}
