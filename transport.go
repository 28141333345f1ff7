package jwtx

import (
	"errors"
	"net/http"

	"golang.org/x/oauth2"
)

// AuthorizationHeader returns the Authorization header value the platform
// expects. Note the ": " separator after "Bearer".
func AuthorizationHeader(token string) string {
	return bearerTokenType + ": " + token
}

// Transport is an http.RoundTripper that authenticates every request with a
// token from Source.
type Transport struct {
	Source oauth2.TokenSource
	Base   http.RoundTripper
}

// NewHTTPClient returns a client whose requests carry tokens from src.
// A nil base uses http.DefaultTransport.
func NewHTTPClient(src oauth2.TokenSource, base http.RoundTripper) *http.Client {
	return &http.Client{Transport: &Transport{Source: src, Base: base}}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	bodyClosed := false
	if req.Body != nil {
		defer func() {
			if !bodyClosed {
				req.Body.Close()
			}
		}()
	}

	token, ok := TokenFromContext(req.Context())
	if !ok {
		if t.Source == nil {
			return nil, newError(ErrCodeMissingCredential, errors.New("transport has no token source"))
		}
		tok, err := t.Source.Token()
		if err != nil {
			return nil, err
		}
		token = tok.AccessToken
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", AuthorizationHeader(token))
	// base closes the body from here on.
	bodyClosed = true
	return t.base().RoundTrip(clone)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
