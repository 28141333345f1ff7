package jwtx

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"strings"
	"testing"
	"time"
)

// testKey is a generated private key with its PEM encodings.
type testKey struct {
	signer     crypto.Signer
	privatePEM []byte
	publicPEM  []byte
}

func newECKey(t *testing.T, curve elliptic.Curve) testKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		t.Fatalf("generate ec key: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal ec key: %v", err)
	}
	return testKey{
		signer:     key,
		privatePEM: pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}),
		publicPEM:  publicPEM(t, key.Public()),
	}
}

func newRSAKey(t *testing.T) testKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return testKey{
		signer:     key,
		privatePEM: pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}),
		publicPEM:  publicPEM(t, key.Public()),
	}
}

func newEd25519Key(t *testing.T) testKey {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return testKey{
		signer:     key,
		privatePEM: pkcs8PEM(t, key),
		publicPEM:  publicPEM(t, key.Public()),
	}
}

func pkcs8PEM(t *testing.T, key crypto.Signer) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

func publicPEM(t *testing.T, pub crypto.PublicKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// withECParameters prefixes a P-256 key with the "EC PARAMETERS" block
// that openssl ecparam -genkey emits by default.
func withECParameters(t *testing.T, key testKey) []byte {
	t.Helper()
	params, err := asn1.Marshal(oidNamedCurveP256)
	if err != nil {
		t.Fatalf("marshal curve oid: %v", err)
	}
	out := pem.EncodeToMemory(&pem.Block{Type: "EC PARAMETERS", Bytes: params})
	return append(out, key.privatePEM...)
}

// secp256k1PEM returns a SEC 1 "EC PRIVATE KEY" on secp256k1, a curve the
// standard library does not implement.
func secp256k1PEM(t *testing.T) []byte {
	t.Helper()
	priv := make([]byte, 32)
	if _, err := rand.Read(priv); err != nil {
		t.Fatalf("rand: %v", err)
	}
	der, err := asn1.Marshal(struct {
		Version    int
		PrivateKey []byte
		Curve      asn1.ObjectIdentifier `asn1:"optional,explicit,tag:0"`
	}{1, priv, asn1.ObjectIdentifier{1, 3, 132, 0, 10}})
	if err != nil {
		t.Fatalf("marshal secp256k1 key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
}

// newDSAKeyPEMs generates a DSA key and returns its PKCS #8 and OpenSSL
// "DSA PRIVATE KEY" encodings.
func newDSAKeyPEMs(t *testing.T) (pkcs8, traditional []byte) {
	t.Helper()
	var key dsa.PrivateKey
	if err := dsa.GenerateParameters(&key.Parameters, rand.Reader, dsa.L1024N160); err != nil {
		t.Fatalf("generate dsa parameters: %v", err)
	}
	if err := dsa.GenerateKey(&key, rand.Reader); err != nil {
		t.Fatalf("generate dsa key: %v", err)
	}

	params, err := asn1.Marshal(struct{ P, Q, G *big.Int }{key.P, key.Q, key.G})
	if err != nil {
		t.Fatalf("marshal dsa parameters: %v", err)
	}
	x, err := asn1.Marshal(key.X)
	if err != nil {
		t.Fatalf("marshal dsa private value: %v", err)
	}
	info, err := asn1.Marshal(struct {
		Version    int
		Algo       pkix.AlgorithmIdentifier
		PrivateKey []byte
	}{
		Algo: pkix.AlgorithmIdentifier{
			Algorithm:  oidPublicKeyDSA,
			Parameters: asn1.RawValue{FullBytes: params},
		},
		PrivateKey: x,
	})
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}

	legacy, err := asn1.Marshal(struct {
		Version       int
		P, Q, G, Y, X *big.Int
	}{0, key.P, key.Q, key.G, key.Y, key.X})
	if err != nil {
		t.Fatalf("marshal dsa key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: info}),
		pem.EncodeToMemory(&pem.Block{Type: "DSA PRIVATE KEY", Bytes: legacy})
}

// decodePayload returns the JSON payload of a compact token without verifying it.
func decodePayload(t *testing.T, token string) map[string]any {
	t.Helper()
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return payload
}

func numericClaim(t *testing.T, payload map[string]any, name string) int64 {
	t.Helper()
	v, ok := payload[name].(float64)
	if !ok {
		t.Fatalf("claim %q missing or not numeric: %v", name, payload[name])
	}
	return int64(v)
}

func stringList(t *testing.T, payload map[string]any, name string) []string {
	t.Helper()
	raw, ok := payload[name].([]any)
	if !ok {
		t.Fatalf("claim %q missing or not a list: %v", name, payload[name])
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			t.Fatalf("claim %q has non-string item %v", name, item)
		}
		out = append(out, s)
	}
	return out
}

// freezeTime pins the issuance clock for the duration of the test.
func freezeTime(t *testing.T, now time.Time) {
	t.Helper()
	original := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = original })
}
