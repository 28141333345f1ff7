package jwtx

// TokenParams holds the token metadata shared by presets and providers.
type TokenParams struct {
	Issuer  string
	Subject string
	Expiry  Expiry
}

// TokenOption customizes the metadata of generated credentials.
type TokenOption func(*TokenParams)

// WithIssuer overrides the default issuer.
func WithIssuer(issuer string) TokenOption {
	return func(p *TokenParams) {
		p.Issuer = issuer
	}
}

// WithSubject sets the token subject.
func WithSubject(subject string) TokenOption {
	return func(p *TokenParams) {
		p.Subject = subject
	}
}

// WithExpiry sets the expiry policy. Presets default to DefaultExpiry.
func WithExpiry(expiry Expiry) TokenOption {
	return func(p *TokenParams) {
		p.Expiry = expiry
	}
}

func resolveParams(defaults TokenParams, opts []TokenOption) TokenParams {
	params := defaults
	for _, opt := range opts {
		opt(&params)
	}
	if !params.Expiry.IsSet() {
		params.Expiry = defaultExpiry()
	}
	return params
}

func (p TokenParams) apply(c Credentials) Credentials {
	if p.Issuer != "" {
		c = c.SetIssuer(p.Issuer)
	}
	if p.Subject != "" {
		c = c.SetSubject(p.Subject)
	}
	return c.SetExpiry(p.Expiry)
}

func defaultExpiry() Expiry {
	return Expiry{seconds: int64(DefaultExpiry.Seconds())}
}

// HousekeepingAllAccess grants every action on the Housekeeping API.
func HousekeepingAllAccess(opts ...TokenOption) Credentials {
	c := NewCredentials().
		AppendHousekeepingClaim(AllAccessPattern)
	return resolveParams(TokenParams{}, opts).apply(c)
}

// RealmManagementAllAccess grants every action on the Realm Management API.
func RealmManagementAllAccess(opts ...TokenOption) Credentials {
	c := NewCredentials().
		AppendRealmManagementClaim(AllAccessPattern)
	return resolveParams(TokenParams{}, opts).apply(c)
}

// PairingAllAccess grants every action on the Pairing API.
func PairingAllAccess(opts ...TokenOption) Credentials {
	c := NewCredentials().
		AppendPairingClaim(AllAccessPattern)
	return resolveParams(TokenParams{}, opts).apply(c)
}

// AppEngineAllAccess grants every action on the AppEngine API, plus joining
// and watching on its channels.
func AppEngineAllAccess(opts ...TokenOption) Credentials {
	c := NewCredentials().
		AppendAppEngineClaim(AllAccessPattern).
		AppendChannelsClaim(channelsJoinPattern).
		AppendChannelsClaim(channelsWatchPattern)
	return resolveParams(TokenParams{}, opts).apply(c)
}

// DashboardCredentials is the superuser token used by the operator dashboard.
func DashboardCredentials(opts ...TokenOption) Credentials {
	c := NewCredentials().
		AppendHousekeepingClaim(AllAccessPattern).
		AppendRealmManagementClaim(AllAccessPattern).
		AppendPairingClaim(AllAccessPattern).
		AppendAppEngineClaim(AllAccessPattern).
		AppendFlowClaim(AllAccessPattern).
		AppendChannelsClaim(channelsJoinPattern).
		AppendChannelsClaim(channelsWatchPattern)
	return resolveParams(TokenParams{}, opts).apply(c)
}

// CLIToolCredentials is the realm-level token used by command line tooling
// (historically astartectl). It carries no Housekeeping or Channels grants.
func CLIToolCredentials(opts ...TokenOption) Credentials {
	c := NewCredentials().
		AppendAppEngineClaim(AllAccessPattern).
		AppendRealmManagementClaim(AllAccessPattern).
		AppendPairingClaim(AllAccessPattern).
		AppendFlowClaim(AllAccessPattern)
	return resolveParams(TokenParams{}, opts).apply(c)
}
