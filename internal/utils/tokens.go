package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// GenerateSecureToken creates a cryptographically secure random token.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// SessionKey returns the configured cookie secret, or a random one when none
// is configured. A random key invalidates sessions on every restart.
func SessionKey(configured string) (key []byte, generated bool, err error) {
	if configured != "" {
		return []byte(configured), false, nil
	}
	token, err := GenerateSecureToken(32)
	if err != nil {
		return nil, false, fmt.Errorf("generate session key: %w", err)
	}
	return []byte(token), true, nil
}
