package keyring

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"

	"github.com/truestamp/prefixed-api-key/pkg/crypto/adaptive"
)

// Sealed snapshot errors.
var (
	ErrPassphraseTooWeak = errors.New("keyring: passphrase too weak (minimum 8 characters)")
	ErrDecryptFailed     = errors.New("keyring: decrypt failed - wrong passphrase or corrupted data")
)

const (
	// MinPassphraseLength is the minimum passphrase length.
	MinPassphraseLength = 8

	// sealMagic identifies a sealed keyring snapshot. The trailing digit
	// is the format version.
	sealMagic = "PAKRING1"

	// sealSaltLength is the argon2 salt length in bytes.
	sealSaltLength = 16

	// Argon2 parameters for key derivation from passphrase.
	sealArgon2Time    = 3
	sealArgon2Memory  = 64 * 1024
	sealArgon2Threads = 4
)

// Export writes every record in the keyring to w as an encrypted
// snapshot. The key is derived from the passphrase with argon2id; the
// payload is sealed with an AEAD chosen for the local hardware.
func (m *Manager) Export(ctx context.Context, w io.Writer, passphrase []byte) error {
	recs, err := m.store.List(ctx)
	if err != nil {
		return fmt.Errorf("keyring: export: %w", err)
	}

	sealed, err := sealRecords(recs, passphrase)
	if err != nil {
		return err
	}

	if _, err := w.Write(sealed); err != nil {
		return fmt.Errorf("keyring: export: %w", err)
	}

	m.logger.Info("keyring exported", "records", len(recs))
	return nil
}

// Import reads an encrypted snapshot from r and puts its records into
// the keyring. Records that already exist (same ID) are replaced; a
// short token claimed by a different record stops the import. Returns
// the number of records imported.
func (m *Manager) Import(ctx context.Context, r io.Reader, passphrase []byte) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("keyring: import: %w", err)
	}

	recs, err := openRecords(data, passphrase)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, rec := range recs {
		if err := m.store.Put(ctx, rec); err != nil {
			return imported, fmt.Errorf("keyring: import record %s: %w", rec.ID, err)
		}
		imported++
	}

	m.logger.Info("keyring imported", "records", imported)
	return imported, nil
}

// sealRecords encrypts a record list into the sealed snapshot format:
//
//	magic (8) | algo (1) | salt (16) | nonce | ciphertext
//
// The header (magic, algo, salt) is bound as AEAD additional data, so
// tampering with it fails the open.
func sealRecords(recs []*Record, passphrase []byte) ([]byte, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrPassphraseTooWeak
	}

	plaintext, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("keyring: seal: %w", err)
	}

	salt := make([]byte, sealSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("keyring: seal: %w", err)
	}

	key := deriveSealKey(passphrase, salt)
	defer zeroKey(key)

	aead, algo, err := adaptive.New(key)
	if err != nil {
		return nil, fmt.Errorf("keyring: seal: %w", err)
	}

	header := make([]byte, 0, len(sealMagic)+1+sealSaltLength)
	header = append(header, sealMagic...)
	header = append(header, byte(algo))
	header = append(header, salt...)

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("keyring: seal: %w", err)
	}

	// Prepend nonce to ciphertext
	sealed := aead.Seal(nonce, nonce, plaintext, header)
	return append(header, sealed...), nil
}

// openRecords decrypts a sealed snapshot. Every failure mode reports the
// same opaque error so the output never hints at which check failed.
func openRecords(data, passphrase []byte) ([]*Record, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrPassphraseTooWeak
	}

	headerLen := len(sealMagic) + 1 + sealSaltLength
	if len(data) < headerLen {
		return nil, ErrDecryptFailed
	}

	header := data[:headerLen]
	if string(header[:len(sealMagic)]) != sealMagic {
		return nil, ErrDecryptFailed
	}

	algo := adaptive.AlgoID(header[len(sealMagic)])
	salt := header[len(sealMagic)+1:]

	key := deriveSealKey(passphrase, salt)
	defer zeroKey(key)

	aead, err := adaptive.NewWithID(algo, key)
	if err != nil {
		return nil, ErrDecryptFailed
	}

	body := data[headerLen:]
	if len(body) < aead.NonceSize() {
		return nil, ErrDecryptFailed
	}

	nonce := body[:aead.NonceSize()]
	ciphertext := body[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, header)
	if err != nil {
		return nil, ErrDecryptFailed
	}

	var recs []*Record
	if err := json.Unmarshal(plaintext, &recs); err != nil {
		return nil, ErrDecryptFailed
	}

	return recs, nil
}

// deriveSealKey derives the AEAD key from a passphrase using Argon2id.
func deriveSealKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(
		passphrase,
		salt,
		sealArgon2Time,
		sealArgon2Memory,
		sealArgon2Threads,
		adaptive.KeySize,
	)
}

// zeroKey securely zeros a key in memory.
func zeroKey(key []byte) {
	for i := range key {
		key[i] = 0
	}
}
