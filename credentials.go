package jwtx

import (
	"fmt"
	"time"
)

// DefaultExpiry is the validity window applied when no expiry is chosen.
const DefaultExpiry = 300 * time.Second

// Expiry is the lifetime policy of a token: a positive number of seconds
// after issuance, or NoExpiry. The zero value means "not set".
type Expiry struct {
	seconds  int64
	infinite bool
}

// NoExpiry produces tokens without an "exp" claim.
var NoExpiry = Expiry{infinite: true}

// ExpiresIn returns an expiry of the given number of seconds after issuance.
func ExpiresIn(seconds int64) (Expiry, error) {
	if seconds <= 0 {
		return Expiry{}, newError(ErrCodeInvalidExpiry, fmt.Errorf("expiry must be positive, got %d seconds", seconds))
	}
	return Expiry{seconds: seconds}, nil
}

// ExpiresAfter is ExpiresIn for a duration. Sub-second precision is truncated.
func ExpiresAfter(d time.Duration) (Expiry, error) {
	return ExpiresIn(int64(d / time.Second))
}

// IsSet reports whether an expiry policy was chosen.
func (e Expiry) IsSet() bool {
	return e.infinite || e.seconds > 0
}

// Infinite reports whether tokens omit the "exp" claim.
func (e Expiry) Infinite() bool {
	return e.infinite
}

// Duration returns the validity window. It is zero for NoExpiry and unset values.
func (e Expiry) Duration() time.Duration {
	return time.Duration(e.seconds) * time.Second
}

func (e Expiry) String() string {
	switch {
	case e.infinite:
		return "infinite"
	case e.seconds > 0:
		return fmt.Sprintf("%ds", e.seconds)
	default:
		return "unset"
	}
}

// Credentials describes what a token is allowed to do and for how long.
// Values are immutable: every mutator returns an updated copy.
type Credentials struct {
	claims  map[Scope][]string
	expiry  Expiry
	issuer  string
	subject string
}

// NewCredentials returns credentials with no claims, no expiry and no issuer or subject override.
func NewCredentials() Credentials {
	return Credentials{}
}

// AppendClaim grants pattern on scope. Repeated grants accumulate in call order.
// Passing a scope outside the known set is a programming error and panics.
func (c Credentials) AppendClaim(scope Scope, pattern string) Credentials {
	if !scope.Valid() {
		panic(fmt.Sprintf("jwtx: unknown scope %d", int(scope)))
	}
	out := c.clone()
	out.claims[scope] = append(out.claims[scope], pattern)
	return out
}

// AppendHousekeepingClaim grants pattern on the Housekeeping API.
func (c Credentials) AppendHousekeepingClaim(pattern string) Credentials {
	return c.AppendClaim(ScopeHousekeeping, pattern)
}

// AppendRealmManagementClaim grants pattern on the Realm Management API.
func (c Credentials) AppendRealmManagementClaim(pattern string) Credentials {
	return c.AppendClaim(ScopeRealmManagement, pattern)
}

// AppendPairingClaim grants pattern on the Pairing API.
func (c Credentials) AppendPairingClaim(pattern string) Credentials {
	return c.AppendClaim(ScopePairing, pattern)
}

// AppendAppEngineClaim grants pattern on the AppEngine API.
func (c Credentials) AppendAppEngineClaim(pattern string) Credentials {
	return c.AppendClaim(ScopeAppEngine, pattern)
}

// AppendChannelsClaim grants pattern on AppEngine channels.
func (c Credentials) AppendChannelsClaim(pattern string) Credentials {
	return c.AppendClaim(ScopeChannels, pattern)
}

// AppendFlowClaim grants pattern on the Flow API.
func (c Credentials) AppendFlowClaim(pattern string) Credentials {
	return c.AppendClaim(ScopeFlow, pattern)
}

// SetExpiry replaces the expiry policy.
func (c Credentials) SetExpiry(expiry Expiry) Credentials {
	out := c.clone()
	out.expiry = expiry
	return out
}

// SetIssuer overrides the default issuer.
func (c Credentials) SetIssuer(issuer string) Credentials {
	out := c.clone()
	out.issuer = issuer
	return out
}

// SetSubject sets the token subject.
func (c Credentials) SetSubject(subject string) Credentials {
	out := c.clone()
	out.subject = subject
	return out
}

// Patterns returns the patterns granted on scope.
func (c Credentials) Patterns(scope Scope) []string {
	return append([]string(nil), c.claims[scope]...)
}

// Claims returns a copy of every granted scope and its patterns.
func (c Credentials) Claims() map[Scope][]string {
	out := make(map[Scope][]string, len(c.claims))
	for scope, patterns := range c.claims {
		out[scope] = append([]string(nil), patterns...)
	}
	return out
}

// Expiry returns the expiry policy, which may be unset.
func (c Credentials) Expiry() Expiry {
	return c.expiry
}

// Issuer returns the issuer override, if any.
func (c Credentials) Issuer() (string, bool) {
	return c.issuer, c.issuer != ""
}

// Subject returns the subject, if any.
func (c Credentials) Subject() (string, bool) {
	return c.subject, c.subject != ""
}

func (c Credentials) clone() Credentials {
	out := c
	out.claims = c.Claims()
	return out
}
