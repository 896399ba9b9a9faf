package internal

import (
	"crypto/rand"
	"encoding/base64"
)

// sessionKeyRawSize gives 288 bits of entropy, 48 characters after encoding.
const sessionKeyRawSize = 36

// NewSessionKey returns a fresh opaque session token: base64url without
// padding, safe for headers and cache keys, infeasible to enumerate.
func NewSessionKey() (string, error) {
	raw := make([]byte, sessionKeyRawSize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// ValidSessionKey reports whether a presented token has the shape of a key
// produced by [NewSessionKey]. It is a cheap syntactic gate, not an
// authenticity check.
func ValidSessionKey(token string) bool {
	if len(token) == 0 || len(token) > 128 {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(token)
	return err == nil
}
