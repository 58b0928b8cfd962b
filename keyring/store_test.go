package keyring

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	apikey "github.com/truestamp/prefixed-api-key"
)

// discardLogger returns a logger whose output is dropped.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testRecord builds a record from a freshly generated key.
func testRecord(t *testing.T, name string) *Record {
	t.Helper()

	key, err := apikey.GenerateAPIKey(&apikey.GenerationOptions{KeyPrefix: "acme"})
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}

	rec, err := NewRecord(name, key)
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}

	return rec
}

// storeConformance exercises the Store contract shared by every
// implementation.
func storeConformance(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("PutGet", func(t *testing.T) {
		s := open(t)
		rec := testRecord(t, "alpha")

		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		got, err := s.Get(ctx, rec.ShortToken)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !reflect.DeepEqual(got, rec) {
			t.Errorf("Get() = %+v, want %+v", got, rec)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := open(t)

		if _, err := s.Get(ctx, "nosuchtoken"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("PutDuplicateShortToken", func(t *testing.T) {
		s := open(t)
		rec := testRecord(t, "alpha")

		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		squatter := rec.Clone()
		id, err := NewRecordID()
		if err != nil {
			t.Fatalf("NewRecordID() error = %v", err)
		}
		squatter.ID = id

		if err := s.Put(ctx, squatter); !errors.Is(err, ErrDuplicateShortToken) {
			t.Errorf("Put() error = %v, want ErrDuplicateShortToken", err)
		}
	})

	t.Run("PutSameIDReplaces", func(t *testing.T) {
		s := open(t)
		rec := testRecord(t, "alpha")

		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		updated := rec.Clone()
		updated.Name = "renamed"
		updated.LastVerifiedAt = 1234567890000

		if err := s.Put(ctx, updated); err != nil {
			t.Fatalf("Put() update error = %v", err)
		}

		got, err := s.Get(ctx, rec.ShortToken)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Name != "renamed" {
			t.Errorf("Get() Name = %q, want %q", got.Name, "renamed")
		}
		if got.LastVerifiedAt != 1234567890000 {
			t.Errorf("Get() LastVerifiedAt = %d, want %d", got.LastVerifiedAt, 1234567890000)
		}
	})

	t.Run("PutInvalidRecord", func(t *testing.T) {
		s := open(t)
		rec := testRecord(t, "alpha")
		rec.LongTokenHash = "not-a-digest"

		if err := s.Put(ctx, rec); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("Put() error = %v, want ErrInvalidRecord", err)
		}
	})

	t.Run("PutNil", func(t *testing.T) {
		s := open(t)

		if err := s.Put(ctx, nil); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("Put(nil) error = %v, want ErrInvalidRecord", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := open(t)
		rec := testRecord(t, "alpha")

		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := s.Delete(ctx, rec.ShortToken); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Get(ctx, rec.ShortToken); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		s := open(t)

		if err := s.Delete(ctx, "nosuchtoken"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListAndLen", func(t *testing.T) {
		s := open(t)

		recs, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(recs) != 0 {
			t.Fatalf("List() on empty store returned %d records", len(recs))
		}

		want := make(map[string]bool)
		for i := 0; i < 3; i++ {
			rec := testRecord(t, "")
			if err := s.Put(ctx, rec); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			want[rec.ID] = true
		}

		recs, err = s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(recs) != len(want) {
			t.Fatalf("List() returned %d records, want %d", len(recs), len(want))
		}
		for _, rec := range recs {
			if !want[rec.ID] {
				t.Errorf("List() returned unexpected record %s", rec.ID)
			}
		}

		n, err := s.Len(ctx)
		if err != nil {
			t.Fatalf("Len() error = %v", err)
		}
		if n != len(want) {
			t.Errorf("Len() = %d, want %d", n, len(want))
		}
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		s := open(t)
		rec := testRecord(t, "alpha")

		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		got, err := s.Get(ctx, rec.ShortToken)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		got.Name = "mutated"

		again, err := s.Get(ctx, rec.ShortToken)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if again.Name != "alpha" {
			t.Errorf("stored Name = %q after mutating a Get result, want %q", again.Name, "alpha")
		}
	})

	t.Run("ClosedStore", func(t *testing.T) {
		s := open(t)
		rec := testRecord(t, "alpha")

		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		if err := s.Put(ctx, rec); !errors.Is(err, ErrStoreClosed) {
			t.Errorf("Put() after close error = %v, want ErrStoreClosed", err)
		}
		if _, err := s.Get(ctx, rec.ShortToken); !errors.Is(err, ErrStoreClosed) {
			t.Errorf("Get() after close error = %v, want ErrStoreClosed", err)
		}
		if err := s.Delete(ctx, rec.ShortToken); !errors.Is(err, ErrStoreClosed) {
			t.Errorf("Delete() after close error = %v, want ErrStoreClosed", err)
		}
		if _, err := s.List(ctx); !errors.Is(err, ErrStoreClosed) {
			t.Errorf("List() after close error = %v, want ErrStoreClosed", err)
		}
		if _, err := s.Len(ctx); !errors.Is(err, ErrStoreClosed) {
			t.Errorf("Len() after close error = %v, want ErrStoreClosed", err)
		}

		if err := s.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}
	})
}
