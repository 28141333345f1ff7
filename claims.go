package jwtx

import "time"

// Claims represents the decoded payload of a platform token.
type Claims struct {
	Issuer    string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Grants holds the patterns of every scope present in the token.
	Grants map[Scope][]string

	// CustomClaims holds private claims that are not scope grants.
	CustomClaims map[string]any
}

// Allows reports whether pattern was granted verbatim on scope.
func (c *Claims) Allows(scope Scope, pattern string) bool {
	for _, p := range c.Grants[scope] {
		if p == pattern {
			return true
		}
	}
	return false
}

// Credentials rebuilds credentials equivalent to the decoded claims.
// The expiry is reconstructed from the issued-at and expires-at times.
func (c *Claims) Credentials() Credentials {
	out := NewCredentials()
	for _, scope := range Scopes() {
		for _, p := range c.Grants[scope] {
			out = out.AppendClaim(scope, p)
		}
	}
	if c.Issuer != "" {
		out = out.SetIssuer(c.Issuer)
	}
	if c.Subject != "" {
		out = out.SetSubject(c.Subject)
	}
	if c.ExpiresAt.IsZero() {
		return out.SetExpiry(NoExpiry)
	}
	if expiry, err := ExpiresAfter(c.ExpiresAt.Sub(c.IssuedAt)); err == nil {
		out = out.SetExpiry(expiry)
	}
	return out
}
