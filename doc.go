// Package apikey generates and verifies prefixed API keys.
//
// A key is a single string of three underscore-joined parts:
//
//	{keyPrefix}_{shortToken}_{longToken}
//
// The key prefix namespaces tokens per service or company and may itself
// contain underscores; parsing is therefore right-anchored. The short
// token is a non-secret identifier a server can index and display. The
// long token is the secret: the holder presents it, the server stores only
// its SHA-256 digest and recomputes the digest on every check.
//
// This package contains:
//
//   - GenerateAPIKey: draw entropy, base58-encode, assemble a key
//   - GetTokenComponents and the Extract* helpers: right-anchored parsing
//   - HashLongToken and CheckAPIKey: unkeyed SHA-256 digests and
//     constant-time verification
//   - KeyedScheme: the HMAC-SHA256 variant for deployments that key their
//     digest store
//
// Short and long tokens are base58 (Bitcoin alphabet) over independently
// drawn CSPRNG bytes, left-padded with the literal "0" and cut to the
// exact requested length. Validation happens before any entropy is drawn,
// and entropy failures abort generation rather than degrade it.
//
// Storage of issued keys is out of scope here; the keyring package
// provides a reference implementation.
package apikey
