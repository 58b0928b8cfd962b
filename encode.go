// Package apikey provides prefixed API key generation and verification.
package apikey

import (
	"strings"

	"github.com/mr-tron/base58"
)

// padChar left-pads encodings that fall short of the requested length.
// The literal "0" sits outside the base58 alphabet (which omits 0, O, I,
// l); it is part of the token format contract, not an alphabet symbol.
const padChar = "0"

// encodeToLength base58-encodes raw (Bitcoin alphabet) and fits the result
// to exactly length characters: shorter encodings are left-padded with
// padChar, longer ones keep the leading length characters. Truncation
// discards entropy; callers size raw accordingly.
func encodeToLength(raw []byte, length int) string {
	encoded := base58.Encode(raw)
	if len(encoded) < length {
		encoded = strings.Repeat(padChar, length-len(encoded)) + encoded
	}
	return encoded[:length]
}
