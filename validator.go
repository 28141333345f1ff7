package jwtx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Validator verifies tokens signed with a single platform key.
type Validator struct {
	cfg ValidatorConfig
	alg jwa.SignatureAlgorithm
	key jwk.Key
}

// NewValidator builds a validator from the given configuration. The key may
// be the public key or the private key the tokens were signed with.
func NewValidator(cfg ValidatorConfig) (*Validator, error) {
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, newError(ErrCodeInvalidConfig, err)
	}

	key, err := parsePEMKey(cfg.Key)
	if err != nil {
		return nil, err
	}
	pub, err := jwk.PublicKeyOf(key)
	if err != nil {
		return nil, newError(ErrCodeKeyParse, err)
	}

	var alg jwa.SignatureAlgorithm
	switch k := pub.(type) {
	case jwk.ECDSAPublicKey:
		alg, err = curveAlgorithm(k.Crv())
	case jwk.RSAPublicKey:
		alg = jwa.RS256
	default:
		err = newError(ErrCodeUnsupportedKey, fmt.Errorf("key type %s is not supported", pub.KeyType()))
	}
	if err != nil {
		return nil, err
	}

	return &Validator{cfg: cfg, alg: alg, key: pub}, nil
}

// Algorithm returns the signature algorithm tokens are expected to use.
func (v *Validator) Algorithm() jwa.SignatureAlgorithm {
	return v.alg
}

// Validate verifies the token signature and time claims and returns its claims.
func (v *Validator) Validate(token string) (*Claims, error) {
	if token == "" {
		return nil, newError(ErrCodeInvalidToken, errors.New("token is empty"))
	}

	alg, err := HeaderAlgorithm(token)
	if err != nil {
		return nil, err
	}
	if alg != v.alg {
		return nil, newError(ErrCodeInvalidToken, fmt.Errorf("token is signed with %s, key expects %s", alg, v.alg))
	}

	parsed, err := jwt.Parse([]byte(token), jwt.WithKey(v.alg, v.key), jwt.WithValidate(false))
	if err != nil {
		return nil, newError(ErrCodeInvalidToken, err)
	}

	validateOpts := []jwt.ValidateOption{
		jwt.WithAcceptableSkew(v.cfg.ClockSkew),
	}
	if v.cfg.Issuer != "" {
		validateOpts = append(validateOpts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if err := jwt.Validate(parsed, validateOpts...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, newError(ErrCodeExpired, err)
		}
		return nil, newError(ErrCodeInvalidToken, err)
	}

	return extractClaims(parsed), nil
}

// Inspect decodes a token without verifying its signature or time claims.
func Inspect(token string) (*Claims, error) {
	parsed, err := jwt.ParseInsecure([]byte(strings.TrimSpace(token)))
	if err != nil {
		return nil, newError(ErrCodeInvalidToken, err)
	}
	return extractClaims(parsed), nil
}

// HeaderAlgorithm returns the "alg" protected header of a compact token.
func HeaderAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	msg, err := jws.Parse([]byte(strings.TrimSpace(token)))
	if err != nil {
		return "", newError(ErrCodeInvalidToken, err)
	}
	sigs := msg.Signatures()
	if len(sigs) == 0 {
		return "", newError(ErrCodeInvalidToken, errors.New("token has no signature"))
	}
	return sigs[0].ProtectedHeaders().Algorithm(), nil
}

func extractClaims(token jwt.Token) *Claims {
	claims := &Claims{
		Issuer:    token.Issuer(),
		Subject:   token.Subject(),
		IssuedAt:  token.IssuedAt(),
		ExpiresAt: token.Expiration(),
		Grants:    make(map[Scope][]string),
	}
	for k, v := range token.PrivateClaims() {
		if scope, ok := scopeForClaimKey(k); ok {
			claims.Grants[scope] = normalizePatterns(v)
			continue
		}
		if claims.CustomClaims == nil {
			claims.CustomClaims = make(map[string]any)
		}
		claims.CustomClaims[k] = v
	}
	return claims
}

func normalizePatterns(value any) []string {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v != "" {
			return []string{v}
		}
		return nil
	default:
		return nil
	}
}
