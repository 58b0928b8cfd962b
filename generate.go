// Package apikey provides prefixed API key generation and verification.
package apikey

import (
	"crypto/rand"
	"io"

	"golang.org/x/sync/errgroup"
)

// randReader is the entropy source, a hook for testing.
var randReader io.Reader = rand.Reader

// randomBytes draws n bytes from the system CSPRNG. A failed or short read
// is fatal; there is no fallback source.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return nil, ErrEntropyRead.WithCause(err)
	}
	return b, nil
}

// GenerateAPIKey generates a new prefixed API key.
//
// Options are validated before any entropy is drawn. The short and long
// token byte draws run concurrently and both must succeed before the token
// is assembled. The returned APIKey carries the only copy of the long
// token; callers hand Token to the key holder once and persist ShortToken
// and LongTokenHash.
func GenerateAPIKey(opts *GenerationOptions) (*APIKey, error) {
	if opts == nil {
		return nil, ErrOptionsRequired
	}

	o := opts.withDefaults()
	if err := o.Validate(); err != nil {
		return nil, err
	}

	var shortRaw, longRaw []byte
	var g errgroup.Group
	g.Go(func() error {
		b, err := randomBytes(o.ShortTokenLength)
		if err != nil {
			return err
		}
		shortRaw = b
		return nil
	})
	g.Go(func() error {
		b, err := randomBytes(o.LongTokenLength)
		if err != nil {
			return err
		}
		longRaw = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The short token prefix consumes part of the length budget.
	shortToken := o.ShortTokenPrefix + encodeToLength(shortRaw, o.ShortTokenLength)
	shortToken = shortToken[:o.ShortTokenLength]

	longToken := encodeToLength(longRaw, o.LongTokenLength)

	return &APIKey{
		ShortToken:    shortToken,
		LongToken:     longToken,
		LongTokenHash: HashLongToken(longToken),
		Token:         o.KeyPrefix + TokenSeparator + shortToken + TokenSeparator + longToken,
	}, nil
}
