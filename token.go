// Package apikey provides prefixed API key generation and verification.
package apikey

import (
	"fmt"
	"strings"
)

// TokenSeparator joins the key prefix, short token, and long token.
const TokenSeparator = "_"

// APIKey holds the components of a generated or parsed API key.
//
// Token is the full {keyPrefix}_{shortToken}_{longToken} string handed to
// the key holder exactly once. A verifying server persists ShortToken as
// the lookup key and LongTokenHash as the comparand; LongToken itself must
// never be stored server-side.
type APIKey struct {
	// ShortToken identifies the key without revealing the secret.
	ShortToken string `json:"short_token"`

	// LongToken is the secret component.
	LongToken string `json:"long_token"`

	// LongTokenHash is the lowercase hex SHA-256 digest of LongToken.
	LongTokenHash string `json:"long_token_hash"`

	// Token is the complete key string.
	Token string `json:"token"`
}

// splitToken splits a token into its three logical parts.
//
// The key prefix may itself contain the separator, so parsing is
// right-anchored: the last segment is the long token, the second-to-last
// is the short token, and everything before them is the key prefix.
func splitToken(token string) (keyPrefix, shortToken, longToken string, err error) {
	parts := strings.Split(token, TokenSeparator)
	if len(parts) < 3 {
		return "", "", "", ErrMalformedToken.WithDetails(
			fmt.Sprintf("expected at least 3 segments, got %d", len(parts)))
	}

	longToken = parts[len(parts)-1]
	shortToken = parts[len(parts)-2]
	keyPrefix = strings.Join(parts[:len(parts)-2], TokenSeparator)

	if keyPrefix == "" || shortToken == "" || longToken == "" {
		return "", "", "", ErrMalformedToken.WithDetails("empty token segment")
	}

	return keyPrefix, shortToken, longToken, nil
}

// GetTokenComponents parses a token and returns its components together
// with the recomputed long token hash.
func GetTokenComponents(token string) (*APIKey, error) {
	_, shortToken, longToken, err := splitToken(token)
	if err != nil {
		return nil, err
	}

	return &APIKey{
		ShortToken:    shortToken,
		LongToken:     longToken,
		LongTokenHash: HashLongToken(longToken),
		Token:         token,
	}, nil
}

// ExtractKeyPrefix returns the key prefix segment of a token.
func ExtractKeyPrefix(token string) (string, error) {
	keyPrefix, _, _, err := splitToken(token)
	return keyPrefix, err
}

// ExtractShortToken returns the short token segment of a token.
func ExtractShortToken(token string) (string, error) {
	_, shortToken, _, err := splitToken(token)
	return shortToken, err
}

// ExtractLongToken returns the long token segment of a token.
func ExtractLongToken(token string) (string, error) {
	_, _, longToken, err := splitToken(token)
	return longToken, err
}

// ExtractLongTokenHash returns the SHA-256 digest of a token's long token.
func ExtractLongTokenHash(token string) (string, error) {
	longToken, err := ExtractLongToken(token)
	if err != nil {
		return "", err
	}
	return HashLongToken(longToken), nil
}

// MaskToken masks a token for safe logging. The key prefix and short token
// are not secret and stay visible; the long token keeps its first and last
// three characters. Example: my_company_BRTRKFsL_51F...CgG
func MaskToken(token string) string {
	keyPrefix, shortToken, longToken, err := splitToken(token)
	if err != nil {
		return "***REDACTED***"
	}

	masked := "***"
	if len(longToken) > 6 {
		masked = longToken[:3] + "..." + longToken[len(longToken)-3:]
	}

	return keyPrefix + TokenSeparator + shortToken + TokenSeparator + masked
}
