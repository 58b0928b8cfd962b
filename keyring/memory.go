package keyring

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/truestamp/prefixed-api-key/pkg/cmap"
)

// MemoryStore provides in-memory record storage on a sharded map.
// It is safe for concurrent use; records do not survive the process.
type MemoryStore struct {
	recs   *cmap.Map[string, *Record]
	closed atomic.Bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recs: cmap.New[string, *Record](),
	}
}

// Put stores a record keyed by its short token.
func (s *MemoryStore) Put(_ context.Context, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("%w: record is required", ErrInvalidRecord)
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrStoreClosed
	}

	// Update holds the shard lock across the ownership check, so two
	// racing Puts for the same short token cannot both win.
	var dup error
	s.recs.Update(rec.ShortToken, func(existing *Record, exists bool) *Record {
		if exists && existing.ID != rec.ID {
			dup = ErrDuplicateShortToken
			return existing
		}
		return rec.Clone()
	})

	return dup
}

// Get retrieves a record by short token.
func (s *MemoryStore) Get(_ context.Context, shortToken string) (*Record, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	rec, ok := s.recs.Get(shortToken)
	if !ok {
		return nil, ErrNotFound
	}

	return rec.Clone(), nil
}

// Delete removes a record by short token.
func (s *MemoryStore) Delete(_ context.Context, shortToken string) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	if _, ok := s.recs.Pop(shortToken); !ok {
		return ErrNotFound
	}

	return nil
}

// List retrieves all records.
func (s *MemoryStore) List(_ context.Context) ([]*Record, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	recs := make([]*Record, 0, s.recs.Count())
	s.recs.Range(func(_ string, rec *Record) bool {
		recs = append(recs, rec.Clone())
		return true
	})

	return recs, nil
}

// Len reports the number of stored records.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}

	return s.recs.Count(), nil
}

// Close marks the store closed. Further operations fail with
// ErrStoreClosed. Closing twice is a no-op.
func (s *MemoryStore) Close() error {
	s.closed.Store(true)
	s.recs.Clear()
	return nil
}
