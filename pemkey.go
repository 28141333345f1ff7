package jwtx

import (
	"bytes"
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	oidPublicKeyRSA   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}
	oidPublicKeyDSA   = asn1.ObjectIdentifier{1, 2, 840, 10040, 4, 1}
	oidPublicKeyECDSA = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}

	oidNamedCurveP256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
	oidNamedCurveP384 = asn1.ObjectIdentifier{1, 3, 132, 0, 34}
)

// parsePEMKey parses the first key block of a PEM bundle. Blocks that carry
// no key, such as "EC PARAMETERS", are skipped.
func parsePEMKey(data []byte) (jwk.Key, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newError(ErrCodeKeyParse, errors.New("key is empty"))
	}

	block, err := firstKeyBlock(data)
	if err != nil {
		return nil, newError(ErrCodeKeyParse, err)
	}
	key, err := jwk.ParseKey(pem.EncodeToMemory(block), jwk.WithPEM(true))
	if err != nil {
		if uerr := unsupportedKeyBlock(block); uerr != nil {
			return nil, newError(ErrCodeUnsupportedKey, uerr)
		}
		return nil, newError(ErrCodeKeyParse, err)
	}
	return key, nil
}

func firstKeyBlock(data []byte) (*pem.Block, error) {
	found := false
	for rest := data; ; {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		found = true
		if strings.HasSuffix(block.Type, "KEY") || block.Type == "CERTIFICATE" {
			return block, nil
		}
	}
	if found {
		return nil, errors.New("no key block in PEM data")
	}
	return nil, errors.New("no PEM data found")
}

// unsupportedKeyBlock reports a well-formed key block whose algorithm or
// curve cannot sign platform tokens. It returns nil when the block is not
// recognised or holds a supported key, leaving the parse error in place.
func unsupportedKeyBlock(block *pem.Block) error {
	switch block.Type {
	case "PRIVATE KEY":
		if oid, curve, ok := pkcs8Algorithm(block.Bytes); ok {
			return checkKeyAlgorithm(oid, curve)
		}
	case "PUBLIC KEY":
		if oid, curve, ok := pkixAlgorithm(block.Bytes); ok {
			return checkKeyAlgorithm(oid, curve)
		}
	case "EC PRIVATE KEY":
		if curve, ok := sec1Curve(block.Bytes); ok {
			return checkKeyAlgorithm(oidPublicKeyECDSA, curve)
		}
	case "DSA PRIVATE KEY":
		if isDSAPrivateKey(block.Bytes) {
			return checkKeyAlgorithm(oidPublicKeyDSA, nil)
		}
	}
	return nil
}

func checkKeyAlgorithm(oid, curve asn1.ObjectIdentifier) error {
	switch {
	case oid.Equal(oidPublicKeyRSA):
		return nil
	case oid.Equal(oidPublicKeyECDSA):
		if curve.Equal(oidNamedCurveP256) || curve.Equal(oidNamedCurveP384) {
			return nil
		}
		return fmt.Errorf("elliptic curve %s is not supported", curve)
	case oid.Equal(oidPublicKeyDSA):
		return errors.New("DSA keys are not supported")
	}
	return fmt.Errorf("key algorithm %s is not supported", oid)
}

// pkcs8Algorithm reads the AlgorithmIdentifier of a PKCS #8 PrivateKeyInfo.
func pkcs8Algorithm(der []byte) (oid, curve asn1.ObjectIdentifier, ok bool) {
	input := cryptobyte.String(der)
	var info cryptobyte.String
	var version int
	if !input.ReadASN1(&info, cryptobyte_asn1.SEQUENCE) ||
		!info.ReadASN1Integer(&version) {
		return nil, nil, false
	}
	return readAlgorithmIdentifier(&info)
}

// pkixAlgorithm reads the AlgorithmIdentifier of a SubjectPublicKeyInfo.
func pkixAlgorithm(der []byte) (oid, curve asn1.ObjectIdentifier, ok bool) {
	input := cryptobyte.String(der)
	var spki cryptobyte.String
	if !input.ReadASN1(&spki, cryptobyte_asn1.SEQUENCE) {
		return nil, nil, false
	}
	return readAlgorithmIdentifier(&spki)
}

func readAlgorithmIdentifier(s *cryptobyte.String) (oid, curve asn1.ObjectIdentifier, ok bool) {
	var algID cryptobyte.String
	if !s.ReadASN1(&algID, cryptobyte_asn1.SEQUENCE) ||
		!algID.ReadASN1ObjectIdentifier(&oid) {
		return nil, nil, false
	}
	if oid.Equal(oidPublicKeyECDSA) && !algID.ReadASN1ObjectIdentifier(&curve) {
		return nil, nil, false
	}
	return oid, curve, true
}

// sec1Curve reads the namedCurve parameter of an ECPrivateKey.
func sec1Curve(der []byte) (asn1.ObjectIdentifier, bool) {
	input := cryptobyte.String(der)
	var key, params cryptobyte.String
	var privateKey []byte
	var version int
	var hasParams bool
	if !input.ReadASN1(&key, cryptobyte_asn1.SEQUENCE) ||
		!key.ReadASN1Integer(&version) ||
		!key.ReadASN1Bytes(&privateKey, cryptobyte_asn1.OCTET_STRING) ||
		!key.ReadOptionalASN1(&params, &hasParams, cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()) ||
		!hasParams {
		return nil, false
	}
	var curve asn1.ObjectIdentifier
	if !params.ReadASN1ObjectIdentifier(&curve) {
		return nil, false
	}
	return curve, true
}

// isDSAPrivateKey matches the OpenSSL DSA layout: version, p, q, g, y, x.
func isDSAPrivateKey(der []byte) bool {
	input := cryptobyte.String(der)
	var key cryptobyte.String
	if !input.ReadASN1(&key, cryptobyte_asn1.SEQUENCE) {
		return false
	}
	for i := 0; i < 6; i++ {
		n := new(big.Int)
		if !key.ReadASN1Integer(n) {
			return false
		}
	}
	return key.Empty()
}
