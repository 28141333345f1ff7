package jwtx

import (
	"reflect"
	"testing"
	"time"
)

func TestCredentialsAreImmutable(t *testing.T) {
	base := NewCredentials().AppendPairingClaim("GET::.*")
	derived := base.
		AppendPairingClaim("POST::agent/.*").
		SetIssuer("issuer").
		SetSubject("subject")

	if got := base.Patterns(ScopePairing); !reflect.DeepEqual(got, []string{"GET::.*"}) {
		t.Fatalf("base mutated: %v", got)
	}
	if _, ok := base.Issuer(); ok {
		t.Fatal("base issuer mutated")
	}
	if got := derived.Patterns(ScopePairing); !reflect.DeepEqual(got, []string{"GET::.*", "POST::agent/.*"}) {
		t.Fatalf("unexpected derived patterns: %v", got)
	}

	claims := derived.Claims()
	claims[ScopePairing][0] = "tampered"
	if got := derived.Patterns(ScopePairing)[0]; got != "GET::.*" {
		t.Fatalf("Claims exposed internal state: %s", got)
	}
}

func TestNewCredentialsIsEmpty(t *testing.T) {
	c := NewCredentials()
	if len(c.Claims()) != 0 {
		t.Fatalf("expected no claims, got %v", c.Claims())
	}
	if c.Expiry().IsSet() {
		t.Fatalf("expected unset expiry, got %s", c.Expiry())
	}
	if _, ok := c.Issuer(); ok {
		t.Fatal("expected no issuer")
	}
	if _, ok := c.Subject(); ok {
		t.Fatal("expected no subject")
	}
}

func TestSetIssuerOverwrites(t *testing.T) {
	c := NewCredentials().SetIssuer("first").SetIssuer("second").SetSubject("a").SetSubject("b")
	if iss, _ := c.Issuer(); iss != "second" {
		t.Fatalf("unexpected issuer: %s", iss)
	}
	if sub, _ := c.Subject(); sub != "b" {
		t.Fatalf("unexpected subject: %s", sub)
	}
}

func TestExpiresInRejectsNonPositive(t *testing.T) {
	for _, seconds := range []int64{0, -1, -300} {
		if _, err := ExpiresIn(seconds); !HasCode(err, ErrCodeInvalidExpiry) {
			t.Fatalf("ExpiresIn(%d): unexpected error %v", seconds, err)
		}
	}
	if _, err := ExpiresAfter(500 * time.Millisecond); !HasCode(err, ErrCodeInvalidExpiry) {
		t.Fatalf("ExpiresAfter(500ms): unexpected error %v", err)
	}

	expiry, err := ExpiresAfter(90 * time.Second)
	if err != nil {
		t.Fatalf("ExpiresAfter: %v", err)
	}
	if expiry.Duration() != 90*time.Second || expiry.Infinite() || !expiry.IsSet() {
		t.Fatalf("unexpected expiry: %s", expiry)
	}
	if !NoExpiry.IsSet() || !NoExpiry.Infinite() {
		t.Fatal("NoExpiry must be a set, infinite expiry")
	}
}

func TestAppendClaimUnknownScopePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown scope")
		}
	}()
	NewCredentials().AppendClaim(Scope(42), AllAccessPattern)
}

func TestPresets(t *testing.T) {
	channels := []string{"JOIN::.*", "WATCH::.*"}
	all := []string{AllAccessPattern}

	cases := []struct {
		name  string
		creds Credentials
		want  map[Scope][]string
	}{
		{"housekeeping", HousekeepingAllAccess(), map[Scope][]string{ScopeHousekeeping: all}},
		{"realm management", RealmManagementAllAccess(), map[Scope][]string{ScopeRealmManagement: all}},
		{"pairing", PairingAllAccess(), map[Scope][]string{ScopePairing: all}},
		{"appengine", AppEngineAllAccess(), map[Scope][]string{
			ScopeAppEngine: all,
			ScopeChannels:  channels,
		}},
		{"dashboard", DashboardCredentials(), map[Scope][]string{
			ScopeHousekeeping:    all,
			ScopeRealmManagement: all,
			ScopePairing:         all,
			ScopeAppEngine:       all,
			ScopeFlow:            all,
			ScopeChannels:        channels,
		}},
		{"cli tool", CLIToolCredentials(), map[Scope][]string{
			ScopeAppEngine:       all,
			ScopeRealmManagement: all,
			ScopePairing:         all,
			ScopeFlow:            all,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.creds.Claims(); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("unexpected claims: %v", got)
			}
			if got := tc.creds.Expiry().Duration(); got != DefaultExpiry {
				t.Fatalf("unexpected default expiry: %v", got)
			}
			if _, ok := tc.creds.Issuer(); ok {
				t.Fatal("expected no issuer override")
			}
			if _, ok := tc.creds.Subject(); ok {
				t.Fatal("expected no subject")
			}
		})
	}
}

func TestPresetOptions(t *testing.T) {
	expiry, err := ExpiresIn(60)
	if err != nil {
		t.Fatalf("ExpiresIn: %v", err)
	}
	c := DashboardCredentials(WithIssuer("foo"), WithSubject("bar"), WithExpiry(expiry))
	if iss, _ := c.Issuer(); iss != "foo" {
		t.Fatalf("unexpected issuer: %s", iss)
	}
	if sub, _ := c.Subject(); sub != "bar" {
		t.Fatalf("unexpected subject: %s", sub)
	}
	if c.Expiry() != expiry {
		t.Fatalf("unexpected expiry: %s", c.Expiry())
	}

	if got := HousekeepingAllAccess(WithExpiry(NoExpiry)).Expiry(); !got.Infinite() {
		t.Fatalf("expected infinite expiry, got %s", got)
	}
}

func TestParseScope(t *testing.T) {
	cases := map[string]Scope{
		"a_ha":             ScopeHousekeeping,
		"housekeeping":     ScopeHousekeeping,
		"a_rma":            ScopeRealmManagement,
		"realm-management": ScopeRealmManagement,
		"Realm_Management": ScopeRealmManagement,
		"realm":            ScopeRealmManagement,
		"pairing":          ScopePairing,
		"a_aea":            ScopeAppEngine,
		"app-engine":       ScopeAppEngine,
		"channels":         ScopeChannels,
		"a_f":              ScopeFlow,
		" flow ":           ScopeFlow,
	}
	for input, want := range cases {
		got, err := ParseScope(input)
		if err != nil {
			t.Fatalf("ParseScope(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseScope(%q) = %s, want %s", input, got, want)
		}
	}
	if _, err := ParseScope("a_xyz"); err == nil {
		t.Fatal("expected error for unknown scope")
	}
}
