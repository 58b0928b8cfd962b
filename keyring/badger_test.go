package keyring

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestBadgerStore(t *testing.T, dir string) *BadgerStore {
	t.Helper()

	s, err := NewBadgerStore(DefaultBadgerConfig(dir), discardLogger())
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestBadgerStore(t *testing.T) {
	storeConformance(t, func(t *testing.T) Store {
		return newTestBadgerStore(t, t.TempDir())
	})
}

func TestBadgerStore_DirRequired(t *testing.T) {
	if _, err := NewBadgerStore(BadgerConfig{}, discardLogger()); err == nil {
		t.Fatal("NewBadgerStore() error = nil, want dir required error")
	}
}

func TestBadgerStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewBadgerStore(DefaultBadgerConfig(dir), discardLogger())
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}

	first := testRecord(t, "first")
	second := testRecord(t, "second")
	for _, rec := range []*Record{first, second} {
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := newTestBadgerStore(t, dir)

	n, err := reopened.Len(ctx)
	if err != nil {
		t.Fatalf("Len() after reopen error = %v", err)
	}
	if n != 2 {
		t.Errorf("Len() after reopen = %d, want 2", n)
	}

	got, err := reopened.Get(ctx, first.ShortToken)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got.ID != first.ID || got.Name != first.Name || got.LongTokenHash != first.LongTokenHash {
		t.Errorf("Get() after reopen = %+v, want %+v", got, first)
	}
}

func TestBadgerStore_RegisterMetrics(t *testing.T) {
	ctx := context.Background()
	registry := prometheus.NewRegistry()

	s := newTestBadgerStore(t, t.TempDir()).RegisterMetrics(registry)

	if err := s.Put(ctx, testRecord(t, "alpha")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	got := make(map[string]bool, len(families))
	for _, f := range families {
		got[f.GetName()] = true
	}

	for _, want := range []string{
		"apikey_keyring_badger_lsm_size_bytes",
		"apikey_keyring_badger_value_log_size_bytes",
		"apikey_keyring_records_total",
	} {
		if !got[want] {
			t.Errorf("Gather() missing metric family %q", want)
		}
	}
}
