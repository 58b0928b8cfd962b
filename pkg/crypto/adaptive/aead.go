package adaptive

import (
	"crypto/cipher"
	"fmt"
	"runtime"
)

// KeySize is the key length in bytes. Both algorithms take a 256-bit key.
const KeySize = 32

// AlgoID identifies an AEAD algorithm. The values are stable and safe
// to embed in stored data formats.
type AlgoID byte

const (
	// AlgoAESGCM is AES-256-GCM.
	AlgoAESGCM AlgoID = 1

	// AlgoChaCha20Poly1305 is ChaCha20-Poly1305.
	AlgoChaCha20Poly1305 AlgoID = 2
)

// String returns the algorithm name.
func (id AlgoID) String() string {
	switch id {
	case AlgoAESGCM:
		return "aes-256-gcm"
	case AlgoChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return fmt.Sprintf("unknown(%d)", byte(id))
	}
}

// Preferred returns the algorithm best suited to the local hardware:
// AES-GCM where Go's crypto/aes is hardware accelerated (amd64, arm64),
// ChaCha20-Poly1305 elsewhere.
func Preferred() AlgoID {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return AlgoAESGCM
	default:
		return AlgoChaCha20Poly1305
	}
}

// New returns an AEAD using the preferred algorithm for the local
// hardware, along with the identifier to record next to the sealed
// data. The key must be KeySize bytes.
func New(key []byte) (cipher.AEAD, AlgoID, error) {
	id := Preferred()

	aead, err := NewWithID(id, key)
	if err != nil {
		return nil, 0, err
	}

	return aead, id, nil
}

// NewWithID returns the AEAD for a recorded algorithm identifier.
// The key must be KeySize bytes.
func NewWithID(id AlgoID, key []byte) (cipher.AEAD, error) {
	switch id {
	case AlgoAESGCM:
		return newAESGCM(key)
	case AlgoChaCha20Poly1305:
		return newChaCha20(key)
	default:
		return nil, fmt.Errorf("adaptive: unknown algorithm id %d", byte(id))
	}
}
