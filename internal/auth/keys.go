package auth

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const sessionKeyInfo = "rejaka.me guestbook_user session v1"

// DeriveKey stretches SESSION_SECRET into a 32-byte HMAC key with HKDF-SHA256
// (RFC 5869). The info string binds the key to the session cookie.
func DeriveKey(secret string) ([]byte, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("auth: session secret must be at least 16 characters")
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(sessionKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("auth: deriving session key: %w", err)
	}
	return key, nil
}
