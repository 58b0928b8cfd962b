package keyring

import (
	"context"
	"errors"
)

// Store errors.
var (
	// ErrNotFound reports that no record exists for the short token.
	ErrNotFound = errors.New("keyring: record not found")

	// ErrDuplicateShortToken reports that the short token is already
	// claimed by a different record.
	ErrDuplicateShortToken = errors.New("keyring: short token already in use")

	// ErrStoreClosed reports an operation on a closed store.
	ErrStoreClosed = errors.New("keyring: store closed")

	// ErrInvalidRecord reports a record that failed validation.
	ErrInvalidRecord = errors.New("keyring: invalid record")
)

// Store persists key records, keyed by short token.
//
// Implementations hand out copies: mutating a record obtained from Get
// or List changes nothing until it is Put back.
type Store interface {
	// Put stores rec under rec.ShortToken. An existing record with the
	// same short token is replaced only when it carries the same ID;
	// otherwise Put fails with ErrDuplicateShortToken.
	Put(ctx context.Context, rec *Record) error

	// Get retrieves the record for a short token.
	Get(ctx context.Context, shortToken string) (*Record, error)

	// Delete removes the record for a short token.
	Delete(ctx context.Context, shortToken string) error

	// List retrieves all records.
	List(ctx context.Context) ([]*Record, error)

	// Len reports the number of stored records.
	Len(ctx context.Context) (int, error)

	// Close releases the store's resources.
	Close() error
}
