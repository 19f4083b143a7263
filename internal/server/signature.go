package server

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"

	"interactbox/internal/httpwire"
)

const (
	SignatureHeader = "X-Signature-Ed25519"
	TimestampHeader = "X-Signature-Timestamp"
)

// ErrVerification is wrapped by every error Verify returns.
var ErrVerification = errors.New("signature verification failed")

// Verifier checks Ed25519 signatures over timestamp||body against a single
// trusted public key.
type Verifier struct {
	key    ed25519.PublicKey
	verify func(ed25519.PublicKey, []byte, []byte) bool
}

// NewVerifier decodes a hex-encoded Ed25519 public key.
func NewVerifier(hexKey string) (*Verifier, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key: expected %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}

	return &Verifier{key: ed25519.PublicKey(key), verify: ed25519.Verify}, nil
}

// Verify authenticates a delivery from its headers and raw body. The first
// signature and timestamp headers are used. Failures classify as malformed
// requests so the engine answers them with 401.
func (v *Verifier) Verify(headers httpwire.Headers, body []byte) error {
	signatureHex, ok := headers.Get(SignatureHeader)
	if !ok {
		return verificationError("missing %s header", SignatureHeader)
	}

	timestamp, ok := headers.Get(TimestampHeader)
	if !ok {
		return verificationError("missing %s header", TimestampHeader)
	}

	signature, err := hex.DecodeString(signatureHex)
	if err != nil {
		return verificationError("malformed signature: %v", err)
	}

	message := make([]byte, 0, len(timestamp)+len(body))
	message = append(message, timestamp...)
	message = append(message, body...)

	if !v.verify(v.key, message, signature) {
		return verificationError("signature does not match")
	}

	return nil
}

func verificationError(format string, args ...any) error {
	return httpwire.NewError(httpwire.KindMalformedRequest,
		fmt.Errorf("%w: %s", ErrVerification, fmt.Sprintf(format, args...)))
}
