package signature

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/habtedev/AfriMart-sub000/apperrors"
)

var (
	errNoSecret = errors.New("webhook secret not configured")
	errNoKey    = errors.New("provider public key not configured")
)

// RSAVerifier checks the RSA-SHA256 signature an asymmetric provider
// (ArifPay) embeds in the payload itself. The signed message is the
// canonical form of the payload minus its signature field.
type RSAVerifier struct {
	publicKey *rsa.PublicKey
}

// NewRSAVerifier parses a PEM-encoded public key. An empty pemKey yields a
// verifier that rejects everything rather than an error at construction:
// missing configuration must not silently disable verification.
func NewRSAVerifier(pemKey string) (*RSAVerifier, error) {
	if strings.TrimSpace(pemKey) == "" {
		return &RSAVerifier{}, nil
	}
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, errors.New("invalid PEM public key")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		// Older keys are PKCS1.
		rsaPub, err1 := x509.ParsePKCS1PublicKey(block.Bytes)
		if err1 != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		return &RSAVerifier{publicKey: rsaPub}, nil
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return &RSAVerifier{publicKey: rsaPub}, nil
}

func (v *RSAVerifier) Verify(rawPayload []byte, sig string) error {
	if v.publicKey == nil {
		return apperrors.Wrap(apperrors.ErrInvalidSignature, errNoKey)
	}
	if sig == "" {
		return apperrors.ErrInvalidSignature
	}

	canonical, err := CanonicalString(rawPayload)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidSignature, err)
	}

	givenSig, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidSignature, err)
	}

	digest := sha256.Sum256([]byte(canonical))
	if err := rsa.VerifyPKCS1v15(v.publicKey, crypto.SHA256, digest[:], givenSig); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidSignature, err)
	}
	return nil
}

// CanonicalString rebuilds the exact string the provider signed: the
// payload's top-level fields minus "signature", keys sorted
// lexicographically, joined as key=value pairs with "&". Numbers keep the
// lexical form they had on the wire (json.Number), since reformatting
// 100.0 as 100 would break the digest.
func CanonicalString(rawPayload []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(rawPayload))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	delete(fields, "signature")

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+canonicalValue(fields[k]))
	}
	return strings.Join(pairs, "&"), nil
}

func canonicalValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		// Nested objects/arrays re-marshal compactly.
		b, _ := json.Marshal(val)
		return string(b)
	}
}
