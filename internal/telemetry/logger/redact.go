package logger

import (
	"log/slog"
	"strings"

	apikey "github.com/truestamp/prefixed-api-key"
)

// Sensitive key patterns that should be redacted.
// Bare "token" and "key" are absent on purpose: short_token, key_prefix,
// and keyring attrs are lookup metadata, not secrets, and stay readable.
var sensitiveKeyPatterns = []string{
	"password",
	"passphrase",
	"secret",
	"credential",
	"bearer",
	"authorization",
	"long_token",
	"hmac_key",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	// First, check if the value looks like a full API key (partial mask).
	// This takes priority over key-based detection.
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if isTokenShaped(strVal) {
			return slog.String(a.Key, apikey.MaskToken(strVal))
		}

		// If key name suggests sensitive data and value is non-empty, fully redact
		keyLower := strings.ToLower(a.Key)
		for _, pattern := range sensitiveKeyPatterns {
			if strings.Contains(keyLower, pattern) {
				if strVal != "" {
					return slog.String(a.Key, redactedValue)
				}
				break
			}
		}
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// isTokenShaped reports whether a value looks like a full API key:
// three or more separator-joined segments where the last two are
// alphanumeric token bodies of plausible length. A token already masked
// by apikey.MaskToken fails the check, so masking is idempotent.
func isTokenShaped(value string) bool {
	components, err := apikey.GetTokenComponents(value)
	if err != nil {
		return false
	}
	return isTokenBody(components.ShortToken) && isTokenBody(components.LongToken)
}

// isTokenBody reports whether s could be a generated short or long token.
func isTokenBody(s string) bool {
	if len(s) < apikey.MinTokenLength || len(s) > apikey.MaxTokenLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// RedactString manually redacts a string value.
// Use this when you need to redact a value before logging.
func RedactString(value string) string {
	if isTokenShaped(value) {
		return apikey.MaskToken(value)
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue checks if a value appears to be sensitive.
func IsSensitiveValue(value string) bool {
	return isTokenShaped(value)
}
