package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/habtedev/AfriMart-sub000/apperrors"
)

// HMACVerifier checks the hex-encoded HMAC-SHA256 a symmetric-secret
// provider (Chapa) sends in its signature header, computed over the raw
// request body.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(rawPayload []byte, sig string) error {
	if len(v.secret) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidSignature, errNoSecret)
	}
	if sig == "" {
		return apperrors.ErrInvalidSignature
	}

	given, err := hex.DecodeString(sig)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidSignature, err)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(rawPayload)
	if !hmac.Equal(mac.Sum(nil), given) {
		return apperrors.ErrInvalidSignature
	}
	return nil
}
