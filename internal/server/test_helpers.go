package server

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
)

// MakeTestSignature signs timestamp||body and returns the hex signature.
// This is a test helper shared across multiple packages.
func MakeTestSignature(privateKey ed25519.PrivateKey, timestamp string, body []byte) string {
	message := append([]byte(timestamp), body...)
	return hex.EncodeToString(ed25519.Sign(privateKey, message))
}

// NewTestKeyPair generates a key pair and returns the hex public key used to
// configure a Verifier alongside the private key for MakeTestSignature.
func NewTestKeyPair() (string, ed25519.PrivateKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", nil, err
	}
	return hex.EncodeToString(publicKey), privateKey, nil
}
