package keyring

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	apikey "github.com/truestamp/prefixed-api-key"
)

// RecordIDPrefix is the prefix for key record IDs.
const RecordIDPrefix = "pak-"

// Scheme names the digest function a record was issued under.
type Scheme string

const (
	// SchemeSHA256 is the unkeyed digest: SHA-256 over the long token.
	SchemeSHA256 Scheme = "sha256"

	// SchemeHMACSHA256 is the keyed digest: HMAC-SHA256 under a
	// server-side key. Records with this scheme verify only through a
	// Manager configured with the matching KeyedScheme.
	SchemeHMACSHA256 Scheme = "hmac-sha256"
)

// ValidSchemes returns all valid schemes.
func ValidSchemes() []Scheme {
	return []Scheme{SchemeSHA256, SchemeHMACSHA256}
}

// IsValidScheme checks if a string is a valid scheme.
func IsValidScheme(s string) bool {
	switch Scheme(s) {
	case SchemeSHA256, SchemeHMACSHA256:
		return true
	}
	return false
}

// Record is the stored form of an issued API key: the short token for
// lookup, the long token digest for comparison, and bookkeeping fields.
// Neither the long token nor the full token is ever stored.
type Record struct {
	// ID is the unique record identifier.
	// Format: pak-{ulid_lowercase}, 30 characters total.
	ID string `json:"id"`

	// Name is an optional human-readable label.
	Name string `json:"name,omitempty"`

	// KeyPrefix is the namespace the token was issued under.
	KeyPrefix string `json:"key_prefix"`

	// ShortToken is the non-secret lookup key, unique per record.
	ShortToken string `json:"short_token"`

	// LongTokenHash is the lowercase hex digest of the long token.
	LongTokenHash string `json:"long_token_hash"`

	// Scheme names the digest function that produced LongTokenHash.
	Scheme Scheme `json:"scheme"`

	// CreatedAt is the issue timestamp (Unix MS).
	CreatedAt int64 `json:"created_at"`

	// LastVerifiedAt is the last successful verification (Unix MS).
	LastVerifiedAt int64 `json:"last_verified_at,omitempty"`
}

// NewRecordID generates a new record ID.
func NewRecordID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(timeNow()), entropy)
	if err != nil {
		return "", fmt.Errorf("keyring: new record id: %w", err)
	}
	return RecordIDPrefix + strings.ToLower(id.String()), nil
}

// IsValidRecordID checks if a string is a valid record ID format.
// It normalizes the ID to lowercase before validation.
func IsValidRecordID(id string) bool {
	id = strings.ToLower(id)

	if !strings.HasPrefix(id, RecordIDPrefix) {
		return false
	}

	// pak- (4) + ULID (26) = 30 characters
	if len(id) != 30 {
		return false
	}

	ulidPart := strings.ToUpper(id[len(RecordIDPrefix):])
	_, err := ulid.ParseStrict(ulidPart)
	return err == nil
}

// NewRecord builds a record for a freshly generated key under the unkeyed
// SHA-256 scheme. The caller keeps the full token; only its derived parts
// are recorded.
func NewRecord(name string, key *apikey.APIKey) (*Record, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: generated key is required", ErrInvalidRecord)
	}

	keyPrefix, err := apikey.ExtractKeyPrefix(key.Token)
	if err != nil {
		return nil, fmt.Errorf("keyring: new record: %w", err)
	}

	id, err := NewRecordID()
	if err != nil {
		return nil, err
	}

	return &Record{
		ID:            id,
		Name:          name,
		KeyPrefix:     keyPrefix,
		ShortToken:    key.ShortToken,
		LongTokenHash: key.LongTokenHash,
		Scheme:        SchemeSHA256,
		CreatedAt:     currentTimeMillis(),
	}, nil
}

// Touch updates the LastVerifiedAt timestamp.
func (r *Record) Touch() {
	r.LastVerifiedAt = currentTimeMillis()
}

// CreatedAtTime returns CreatedAt as time.Time.
func (r *Record) CreatedAtTime() time.Time {
	return time.UnixMilli(r.CreatedAt)
}

// LastVerifiedAtTime returns LastVerifiedAt as time.Time.
func (r *Record) LastVerifiedAtTime() time.Time {
	if r.LastVerifiedAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(r.LastVerifiedAt)
}

// Validate validates the record fields.
func (r *Record) Validate() error {
	var violations []string

	if r.ID == "" {
		violations = append(violations, "id is required")
	} else if !IsValidRecordID(r.ID) {
		violations = append(violations, "id format invalid")
	}

	if r.KeyPrefix == "" {
		violations = append(violations, "key_prefix is required")
	}

	if r.ShortToken == "" {
		violations = append(violations, "short_token is required")
	}

	if r.LongTokenHash == "" {
		violations = append(violations, "long_token_hash is required")
	} else if !isHexDigest(r.LongTokenHash) {
		violations = append(violations, "long_token_hash must be 64 lowercase hex characters")
	}

	if !IsValidScheme(string(r.Scheme)) {
		violations = append(violations, "invalid scheme")
	}

	if len(violations) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(violations, "; "))
	}

	return nil
}

// Clone creates a copy of the record.
func (r *Record) Clone() *Record {
	clone := *r
	return &clone
}

// isHexDigest reports whether s is a 64-character lowercase hex string,
// the output shape of both digest schemes.
func isHexDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// currentTimeMillis returns the current Unix timestamp in milliseconds.
// This is a package-level function to enable testing with mock time.
var currentTimeMillis = func() int64 {
	return timeNow().UnixMilli()
}

// timeNow is a hook for testing.
var timeNow = time.Now
