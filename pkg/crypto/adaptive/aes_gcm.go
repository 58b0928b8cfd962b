package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

func newAESGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("adaptive: key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("adaptive: create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("adaptive: create GCM: %w", err)
	}

	return aead, nil
}
