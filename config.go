package jwtx

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultClockSkew = 30 * time.Second

// AuthConfig describes how an API client obtains its bearer token.
// A static Token takes precedence over PrivateKey.
type AuthConfig struct {
	Surface    APISurface
	Token      string
	PrivateKey []byte

	// Credentials replaces the surface's all-access preset when set.
	Credentials *Credentials

	// Issuer, Subject and Expiry apply to the surface preset only.
	Issuer  string
	Subject string
	Expiry  Expiry
}

// normalize sets default values for optional fields.
func (c *AuthConfig) normalize() {
	c.Token = strings.TrimSpace(c.Token)
	if !c.Expiry.IsSet() {
		c.Expiry = defaultExpiry()
	}
}

// validate ensures the configuration can produce a token.
func (c AuthConfig) validate() error {
	switch {
	case c.Token != "":
		return nil
	case len(bytes.TrimSpace(c.PrivateKey)) == 0:
		return newError(ErrCodeMissingCredential, errors.New("either a token or a private key must be provided"))
	case c.Credentials == nil && !c.Surface.Valid():
		return newError(ErrCodeInvalidConfig, fmt.Errorf("unknown API surface %d", int(c.Surface)))
	}
	return nil
}

// credentials returns the claims minted for this client.
func (c AuthConfig) credentials() Credentials {
	if c.Credentials != nil {
		return *c.Credentials
	}
	return c.Surface.DefaultCredentials(
		WithIssuer(c.Issuer),
		WithSubject(c.Subject),
		WithExpiry(c.Expiry),
	)
}

// ValidatorConfig contains the parameters used to verify platform tokens.
type ValidatorConfig struct {
	// Key is a PEM encoded public or private key.
	Key       []byte
	Issuer    string
	ClockSkew time.Duration
}

// normalize sets default values for optional fields.
func (c *ValidatorConfig) normalize() {
	if c.ClockSkew <= 0 {
		c.ClockSkew = defaultClockSkew
	}
}

// validate ensures the validator configuration is usable.
func (c ValidatorConfig) validate() error {
	if len(bytes.TrimSpace(c.Key)) == 0 {
		return errors.New("key is required")
	}
	return nil
}
