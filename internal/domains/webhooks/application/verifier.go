package application

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var (
	// ErrSecretNotConfigured means the shared webhook secret is absent. This
	// is a deployment fault, not an authentication outcome.
	ErrSecretNotConfigured = errors.New("webhook secret not configured")
	// ErrSignatureMismatch means the delivery could not be authenticated.
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
)

// Verifier authenticates raw webhook bodies against the shared secret using
// HMAC-SHA256 with a hex-encoded digest.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a verifier for the shared secret. An empty secret is
// accepted here and rejected per delivery, so the processor can report the
// misconfiguration instead of panicking at startup.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks the signature header value against the raw body. Constant
// time comparison via hmac.Equal.
func (v *Verifier) Verify(signature string, body []byte) error {
	if len(v.secret) == 0 {
		return ErrSecretNotConfigured
	}
	if signature == "" {
		return ErrSignatureMismatch
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
