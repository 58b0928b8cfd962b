// Package apikey provides prefixed API key generation and verification.
package apikey

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashLongToken computes the unkeyed SHA-256 digest of a long token.
//
// The digest is taken over the UTF-8 bytes of the long token and returned
// as 64 lowercase hex characters. This is the value a verifying server
// stores in place of the long token itself.
func HashLongToken(longToken string) string {
	h := sha256.Sum256([]byte(longToken))
	return hex.EncodeToString(h[:])
}

// CheckAPIKey reports whether a token's long token hashes to the expected
// digest.
//
// The digest is recomputed from the presented token and compared against
// expectedLongTokenHash in full, in constant time. Malformed tokens fail
// closed: the result is false, never an error.
func CheckAPIKey(token, expectedLongTokenHash string) bool {
	longToken, err := ExtractLongToken(token)
	if err != nil {
		return false
	}

	actual := HashLongToken(longToken)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expectedLongTokenHash)) == 1
}
