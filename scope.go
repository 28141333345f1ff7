package jwtx

import (
	"fmt"
	"strings"
)

// Scope identifies one platform API surface that can be granted in a token.
type Scope int

const (
	ScopeHousekeeping Scope = iota + 1
	ScopeRealmManagement
	ScopePairing
	ScopeAppEngine
	ScopeChannels
	// ScopeFlow is experimental.
	ScopeFlow
)

// AllAccessPattern matches any verb on any resource.
const AllAccessPattern = ".*::.*"

const (
	channelsJoinPattern  = "JOIN::.*"
	channelsWatchPattern = "WATCH::.*"
)

var scopeClaimKeys = map[Scope]string{
	ScopeHousekeeping:    "a_ha",
	ScopeRealmManagement: "a_rma",
	ScopePairing:         "a_pa",
	ScopeAppEngine:       "a_aea",
	ScopeChannels:        "a_ch",
	ScopeFlow:            "a_f",
}

var scopeNames = map[Scope]string{
	ScopeHousekeeping:    "housekeeping",
	ScopeRealmManagement: "realm-management",
	ScopePairing:         "pairing",
	ScopeAppEngine:       "appengine",
	ScopeChannels:        "channels",
	ScopeFlow:            "flow",
}

// Scopes lists every known scope in claim emission order.
func Scopes() []Scope {
	return []Scope{
		ScopeHousekeeping,
		ScopeRealmManagement,
		ScopePairing,
		ScopeAppEngine,
		ScopeChannels,
		ScopeFlow,
	}
}

// ClaimKey returns the JWT payload key carrying the scope's patterns.
func (s Scope) ClaimKey() string {
	return scopeClaimKeys[s]
}

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	_, ok := scopeClaimKeys[s]
	return ok
}

func (s Scope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scope(%d)", int(s))
}

// ParseScope resolves a scope from its claim key ("a_rma") or its name ("realm-management").
// Matching is case insensitive and treats '_' and '-' alike in names.
func ParseScope(value string) (Scope, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, s := range Scopes() {
		if v == s.ClaimKey() {
			return s, nil
		}
	}
	name := strings.ReplaceAll(v, "_", "-")
	switch name {
	case "realmmanagement", "realm":
		name = "realm-management"
	case "app-engine":
		name = "appengine"
	}
	for _, s := range Scopes() {
		if name == s.String() {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown scope %q", value)
}

func scopeForClaimKey(key string) (Scope, bool) {
	for s, k := range scopeClaimKeys {
		if k == key {
			return s, true
		}
	}
	return 0, false
}
