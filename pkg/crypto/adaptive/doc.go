// Package adaptive selects an AEAD cipher suited to the local hardware.
//
// AES-256-GCM is used where Go's crypto/aes has hardware acceleration
// (amd64, arm64), ChaCha20-Poly1305 elsewhere. Each algorithm carries a
// stable one-byte identifier, so data sealed on one machine records
// which AEAD produced it and can be opened on different hardware.
//
// Usage:
//
//	aead, id, err := adaptive.New(key)       // sealing
//	aead, err = adaptive.NewWithID(id, key)  // opening
package adaptive
