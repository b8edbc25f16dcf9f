package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const secretLength = 32

// GenerateSecret returns a random key for signing CSRF tokens.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, secretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return secret, nil
}

// ParseSecret accepts a hex-encoded key and falls back to the raw bytes.
func ParseSecret(configured string) []byte {
	if decoded, err := hex.DecodeString(configured); err == nil && len(decoded) > 0 {
		return decoded
	}
	return []byte(configured)
}
