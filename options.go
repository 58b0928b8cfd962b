// Package apikey provides prefixed API key generation and verification.
package apikey

import (
	"fmt"
	"regexp"
)

// Token length constraints (in characters).
const (
	// DefaultShortTokenLength is the short token length used when none is given.
	DefaultShortTokenLength = 8

	// DefaultLongTokenLength is the long token length used when none is given.
	DefaultLongTokenLength = 24

	// MinTokenLength is the smallest allowed short or long token length.
	MinTokenLength = 4

	// MaxTokenLength is the largest allowed short or long token length.
	MaxTokenLength = 24
)

var (
	// keyPrefixPattern constrains key prefixes to lowercase alphanumerics and
	// underscores. Prefixes may contain underscores, which is why token
	// parsing is right-anchored.
	keyPrefixPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

	// shortTokenPrefixPattern constrains short token prefixes to lowercase
	// alphanumerics. No underscore: the short token must remain a single
	// token segment.
	shortTokenPrefixPattern = regexp.MustCompile(`^[a-z0-9]+$`)
)

// GenerationOptions configures API key generation.
type GenerationOptions struct {
	// KeyPrefix is the caller-chosen namespace prepended to every token.
	// Required. Must match ^[a-z0-9_]+$.
	KeyPrefix string

	// ShortTokenPrefix is an optional prefix embedded in the short token,
	// e.g. to mark an environment. Must match ^[a-z0-9]+$ when set. The
	// prefix consumes part of the short token length budget.
	ShortTokenPrefix string

	// ShortTokenLength is the exact short token length in characters.
	// Zero means DefaultShortTokenLength. Otherwise must be in
	// [MinTokenLength, MaxTokenLength].
	ShortTokenLength int

	// LongTokenLength is the exact long token length in characters.
	// Zero means DefaultLongTokenLength. Otherwise must be in
	// [MinTokenLength, MaxTokenLength].
	LongTokenLength int
}

// withDefaults returns a copy with zero lengths replaced by the defaults.
func (o *GenerationOptions) withDefaults() GenerationOptions {
	out := *o
	if out.ShortTokenLength == 0 {
		out.ShortTokenLength = DefaultShortTokenLength
	}
	if out.LongTokenLength == 0 {
		out.LongTokenLength = DefaultLongTokenLength
	}
	return out
}

// Validate checks the options against the generation constraints.
// It reports the first violation found, naming the offending field and the
// allowed values. Zero token lengths are valid (they select the defaults).
func (o *GenerationOptions) Validate() error {
	if o.KeyPrefix == "" {
		return ErrInvalidKeyPrefix.WithDetails("key prefix is required")
	}
	if !keyPrefixPattern.MatchString(o.KeyPrefix) {
		return ErrInvalidKeyPrefix.WithDetails(
			fmt.Sprintf("key prefix %q must match %s", o.KeyPrefix, keyPrefixPattern))
	}

	if o.ShortTokenPrefix != "" && !shortTokenPrefixPattern.MatchString(o.ShortTokenPrefix) {
		return ErrInvalidShortTokenPrefix.WithDetails(
			fmt.Sprintf("short token prefix %q must match %s", o.ShortTokenPrefix, shortTokenPrefixPattern))
	}

	if o.ShortTokenLength != 0 && (o.ShortTokenLength < MinTokenLength || o.ShortTokenLength > MaxTokenLength) {
		return ErrInvalidShortTokenLength.WithDetails(
			fmt.Sprintf("short token length %d must be between %d and %d", o.ShortTokenLength, MinTokenLength, MaxTokenLength))
	}

	if o.LongTokenLength != 0 && (o.LongTokenLength < MinTokenLength || o.LongTokenLength > MaxTokenLength) {
		return ErrInvalidLongTokenLength.WithDetails(
			fmt.Sprintf("long token length %d must be between %d and %d", o.LongTokenLength, MinTokenLength, MaxTokenLength))
	}

	return nil
}
