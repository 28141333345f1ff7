package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Version is the library version embedded in the default issuer.
const Version = "0.3.0"

// DefaultIssuer is the "iss" claim used when credentials carry no issuer.
const DefaultIssuer = "astarte-jwtx v" + Version

var timeNow = time.Now

// signingKey is a parsed private key with the algorithm it signs with.
type signingKey struct {
	alg jwa.SignatureAlgorithm
	key jwk.Key
}

// ToJWT signs the credentials with a PEM encoded private key and returns the
// compact token. The algorithm follows the key: ES256 for P-256, ES384 for
// P-384 and RS256 for RSA. Every call uses a fresh issuance time.
func ToJWT(c Credentials, privateKeyPEM []byte) (string, error) {
	sk, err := parseSigningKey(privateKeyPEM)
	if err != nil {
		return "", err
	}
	return sk.sign(c, timeNow())
}

// DetectAlgorithm returns the signing algorithm ToJWT would use for the key.
func DetectAlgorithm(privateKeyPEM []byte) (jwa.SignatureAlgorithm, error) {
	sk, err := parseSigningKey(privateKeyPEM)
	if err != nil {
		return "", err
	}
	return sk.alg, nil
}

// PublicKey returns the public JWK of a signing key, tagged with the
// algorithm ToJWT would use and the signature key usage.
func PublicKey(privateKeyPEM []byte) (jwk.Key, error) {
	sk, err := parseSigningKey(privateKeyPEM)
	if err != nil {
		return nil, err
	}
	pub, err := jwk.PublicKeyOf(sk.key)
	if err != nil {
		return nil, newError(ErrCodeKeyParse, err)
	}
	if err := pub.Set(jwk.AlgorithmKey, sk.alg); err != nil {
		return nil, fmt.Errorf("set alg: %w", err)
	}
	if err := pub.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, fmt.Errorf("set use: %w", err)
	}
	return pub, nil
}

func (sk *signingKey) sign(c Credentials, now time.Time) (string, error) {
	token, err := buildToken(c, now)
	if err != nil {
		return "", newError(ErrCodeSigning, err)
	}
	signed, err := jwt.Sign(token, jwt.WithKey(sk.alg, sk.key))
	if err != nil {
		return "", newError(ErrCodeSigning, err)
	}
	return string(signed), nil
}

func parseSigningKey(data []byte) (*signingKey, error) {
	key, err := parsePEMKey(data)
	if err != nil {
		return nil, err
	}

	var alg jwa.SignatureAlgorithm
	switch k := key.(type) {
	case jwk.ECDSAPrivateKey:
		alg, err = curveAlgorithm(k.Crv())
	case jwk.RSAPrivateKey:
		alg = jwa.RS256
	case jwk.OKPPrivateKey:
		err = newError(ErrCodeUnsupportedKey, fmt.Errorf("curve %s is not supported", k.Crv()))
	case jwk.ECDSAPublicKey, jwk.RSAPublicKey, jwk.OKPPublicKey:
		err = newError(ErrCodeUnsupportedKey, errors.New("a private key is required, got a public key"))
	default:
		err = newError(ErrCodeUnsupportedKey, fmt.Errorf("key type %s is not supported", key.KeyType()))
	}
	if err != nil {
		return nil, err
	}
	return &signingKey{alg: alg, key: key}, nil
}

func curveAlgorithm(crv jwa.EllipticCurveAlgorithm) (jwa.SignatureAlgorithm, error) {
	switch crv {
	case jwa.P256:
		return jwa.ES256, nil
	case jwa.P384:
		return jwa.ES384, nil
	}
	return "", newError(ErrCodeUnsupportedKey, fmt.Errorf("elliptic curve %s is not supported", crv))
}

// buildToken merges the scope claims with the registered claims.
// "exp" is omitted for NoExpiry and defaults to DefaultExpiry when unset.
func buildToken(c Credentials, now time.Time) (jwt.Token, error) {
	issuedAt := now.Truncate(time.Second)

	issuer, ok := c.Issuer()
	if !ok {
		issuer = DefaultIssuer
	}
	builder := jwt.NewBuilder().
		Issuer(issuer).
		IssuedAt(issuedAt)

	if subject, ok := c.Subject(); ok {
		builder = builder.Subject(subject)
	}

	if expiry := effectiveExpiry(c); !expiry.Infinite() {
		builder = builder.Expiration(issuedAt.Add(expiry.Duration()))
	}

	for _, scope := range Scopes() {
		if patterns := c.Patterns(scope); len(patterns) > 0 {
			builder = builder.Claim(scope.ClaimKey(), patterns)
		}
	}
	return builder.Build()
}

func effectiveExpiry(c Credentials) Expiry {
	if expiry := c.Expiry(); expiry.IsSet() {
		return expiry
	}
	return defaultExpiry()
}
