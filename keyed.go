// Package apikey provides prefixed API key generation and verification.
package apikey

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// KeyedScheme derives long token digests with HMAC-SHA256 under a fixed
// key. It is a distinct digest scheme, not a mode of the unkeyed one: a
// KeyedScheme digest never verifies against HashLongToken output and vice
// versa. Deployments that want digests useless to an attacker who only
// obtains the digest store use this scheme and keep the key out of it.
type KeyedScheme struct {
	key []byte
}

// NewKeyedScheme creates a keyed digest scheme. The key must be non-empty;
// it is copied, so the caller may zero its own slice afterwards.
func NewKeyedScheme(key []byte) (*KeyedScheme, error) {
	if len(key) == 0 {
		return nil, ErrKeyRequired
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &KeyedScheme{key: k}, nil
}

// HashLongToken computes the HMAC-SHA256 digest of a long token, returned
// as 64 lowercase hex characters.
func (s *KeyedScheme) HashLongToken(longToken string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(longToken))
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckAPIKey reports whether a token's long token authenticates against
// the expected keyed digest. Parsing and comparison follow the same rules
// as the unkeyed CheckAPIKey: full-digest constant-time comparison,
// malformed tokens fail closed with false.
func (s *KeyedScheme) CheckAPIKey(token, expectedLongTokenHash string) bool {
	longToken, err := ExtractLongToken(token)
	if err != nil {
		return false
	}

	actual := s.HashLongToken(longToken)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expectedLongTokenHash)) == 1
}
