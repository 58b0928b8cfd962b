package keyring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	apikey "github.com/truestamp/prefixed-api-key"
)

func newTestManager(t *testing.T, cfg *ManagerConfig) (*Manager, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	if cfg == nil {
		cfg = &ManagerConfig{}
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}

	return NewManager(store, cfg), store
}

// tamperLongToken flips the last character of a token, keeping the
// format valid while breaking the digest.
func tamperLongToken(token string) string {
	last := token[len(token)-1]
	replacement := byte('x')
	if last == 'x' {
		replacement = 'y'
	}
	return token[:len(token)-1] + string(replacement)
}

func TestManager_Issue(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t, nil)

	key, rec, err := mgr.Issue(ctx, &apikey.GenerationOptions{KeyPrefix: "acme"}, "billing")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if key == nil || key.Token == "" {
		t.Fatal("Issue() returned empty key")
	}
	if rec.Name != "billing" {
		t.Errorf("Issue() record Name = %q, want %q", rec.Name, "billing")
	}
	if rec.Scheme != SchemeSHA256 {
		t.Errorf("Issue() record Scheme = %q, want %q", rec.Scheme, SchemeSHA256)
	}
	if rec.ShortToken != key.ShortToken {
		t.Errorf("Issue() record ShortToken = %q, want %q", rec.ShortToken, key.ShortToken)
	}
	if rec.LongTokenHash != key.LongTokenHash {
		t.Errorf("Issue() record LongTokenHash = %q, want %q", rec.LongTokenHash, key.LongTokenHash)
	}

	stored, err := store.Get(ctx, key.ShortToken)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.ID != rec.ID {
		t.Errorf("stored record ID = %q, want %q", stored.ID, rec.ID)
	}
}

func TestManager_Issue_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t, nil)

	if _, _, err := mgr.Issue(ctx, nil, ""); !errors.Is(err, apikey.ErrOptionsRequired) {
		t.Errorf("Issue(nil) error = %v, want ErrOptionsRequired", err)
	}

	opts := &apikey.GenerationOptions{KeyPrefix: "ACME"}
	if _, _, err := mgr.Issue(ctx, opts, ""); !errors.Is(err, apikey.ErrInvalidKeyPrefix) {
		t.Errorf("Issue() error = %v, want ErrInvalidKeyPrefix", err)
	}
}

func TestManager_Issue_KeyedScheme(t *testing.T) {
	ctx := context.Background()

	scheme, err := apikey.NewKeyedScheme([]byte("server-side-pepper"))
	if err != nil {
		t.Fatalf("NewKeyedScheme() error = %v", err)
	}
	mgr, _ := newTestManager(t, &ManagerConfig{Scheme: scheme})

	key, rec, err := mgr.Issue(ctx, &apikey.GenerationOptions{KeyPrefix: "acme"}, "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if rec.Scheme != SchemeHMACSHA256 {
		t.Errorf("Issue() record Scheme = %q, want %q", rec.Scheme, SchemeHMACSHA256)
	}
	if want := scheme.HashLongToken(key.LongToken); rec.LongTokenHash != want {
		t.Errorf("Issue() record LongTokenHash = %q, want keyed digest %q", rec.LongTokenHash, want)
	}
	if rec.LongTokenHash == key.LongTokenHash {
		t.Error("Issue() stored the unkeyed digest for a keyed record")
	}
}

func TestManager_Verify(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t, nil)

	key, issued, err := mgr.Issue(ctx, &apikey.GenerationOptions{KeyPrefix: "acme"}, "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	rec, ok, err := mgr.Verify(ctx, key.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Fatal("Verify() ok = false, want true")
	}
	if rec.ID != issued.ID {
		t.Errorf("Verify() record ID = %q, want %q", rec.ID, issued.ID)
	}
	if rec.LastVerifiedAt == 0 {
		t.Error("Verify() record LastVerifiedAt = 0, want updated")
	}

	stored, err := store.Get(ctx, key.ShortToken)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.LastVerifiedAt == 0 {
		t.Error("stored LastVerifiedAt = 0 after successful Verify()")
	}
}

func TestManager_Verify_Failures(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t, nil)

	key, _, err := mgr.Issue(ctx, &apikey.GenerationOptions{KeyPrefix: "acme"}, "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	stranger, err := apikey.GenerateAPIKey(&apikey.GenerationOptions{KeyPrefix: "acme"})
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "notatoken"},
		{"empty", ""},
		{"missing segments", "acme_only"},
		{"unknown short token", stranger.Token},
		{"tampered long token", tamperLongToken(key.Token)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok, err := mgr.Verify(ctx, tt.token)
			if err != nil {
				t.Fatalf("Verify() error = %v, want nil", err)
			}
			if ok {
				t.Error("Verify() ok = true, want false")
			}
			if rec != nil {
				t.Errorf("Verify() record = %+v, want nil", rec)
			}
		})
	}
}

func TestManager_Verify_SchemePinning(t *testing.T) {
	ctx := context.Background()

	store := NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	scheme, err := apikey.NewKeyedScheme([]byte("server-side-pepper"))
	if err != nil {
		t.Fatalf("NewKeyedScheme() error = %v", err)
	}

	keyed := NewManager(store, &ManagerConfig{Scheme: scheme, Logger: discardLogger()})
	unkeyed := NewManager(store, &ManagerConfig{Logger: discardLogger()})

	keyedKey, _, err := keyed.Issue(ctx, &apikey.GenerationOptions{KeyPrefix: "acme"}, "keyed")
	if err != nil {
		t.Fatalf("Issue() keyed error = %v", err)
	}
	plainKey, _, err := unkeyed.Issue(ctx, &apikey.GenerationOptions{KeyPrefix: "acme"}, "plain")
	if err != nil {
		t.Fatalf("Issue() unkeyed error = %v", err)
	}

	// The keyed manager verifies both records; each record's scheme
	// field selects the digest function.
	if _, ok, err := keyed.Verify(ctx, keyedKey.Token); err != nil || !ok {
		t.Errorf("keyed Verify(keyed token) = (%v, %v), want (true, nil)", ok, err)
	}
	if _, ok, err := keyed.Verify(ctx, plainKey.Token); err != nil || !ok {
		t.Errorf("keyed Verify(plain token) = (%v, %v), want (true, nil)", ok, err)
	}

	// A manager without the key cannot verify keyed records.
	if _, _, err := unkeyed.Verify(ctx, keyedKey.Token); err == nil {
		t.Error("unkeyed Verify(keyed token) error = nil, want configuration error")
	}
	if _, ok, err := unkeyed.Verify(ctx, plainKey.Token); err != nil || !ok {
		t.Errorf("unkeyed Verify(plain token) = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestManager_Verify_UnknownScheme(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t, nil)

	key, rec, err := mgr.Issue(ctx, &apikey.GenerationOptions{KeyPrefix: "acme"}, "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Simulate a record written by a newer version with a scheme this
	// build does not know. The stored pointer is mutated directly to
	// bypass Put's validation.
	stored, ok := store.recs.Get(key.ShortToken)
	if !ok {
		t.Fatal("issued record missing from store")
	}
	stored.Scheme = "sha3-512"

	if _, _, err := mgr.Verify(ctx, key.Token); err == nil {
		t.Errorf("Verify() of record %s with unknown scheme: error = nil, want error", rec.ID)
	}
}

// errStore wraps a Store and fails selected operations.
type errStore struct {
	Store
	getErr error
	putErr error
}

func (s *errStore) Get(ctx context.Context, shortToken string) (*Record, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.Store.Get(ctx, shortToken)
}

func (s *errStore) Put(ctx context.Context, rec *Record) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.Store.Put(ctx, rec)
}

func TestManager_Verify_StorageError(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t, nil)

	key, _, err := mgr.Issue(ctx, &apikey.GenerationOptions{KeyPrefix: "acme"}, "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	broken := NewManager(&errStore{Store: store, getErr: errors.New("disk failure")}, &ManagerConfig{Logger: discardLogger()})

	_, ok, err := broken.Verify(ctx, key.Token)
	if err == nil {
		t.Fatal("Verify() error = nil, want storage error")
	}
	if ok {
		t.Error("Verify() ok = true with failing store, want false")
	}
	if !strings.Contains(err.Error(), "disk failure") {
		t.Errorf("Verify() error = %q, want wrapped storage error", err.Error())
	}
}

func TestManager_Verify_TouchFailureNonFatal(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t, nil)

	key, _, err := mgr.Issue(ctx, &apikey.GenerationOptions{KeyPrefix: "acme"}, "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	flaky := NewManager(&errStore{Store: store, putErr: errors.New("disk full")}, &ManagerConfig{Logger: discardLogger()})

	rec, ok, err := flaky.Verify(ctx, key.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v, want nil despite touch failure", err)
	}
	if !ok {
		t.Fatal("Verify() ok = false, want true")
	}
	if rec == nil {
		t.Fatal("Verify() record = nil, want record")
	}

	// The timestamp update was lost, not the verification.
	stored, err := store.Get(ctx, key.ShortToken)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.LastVerifiedAt != 0 {
		t.Errorf("stored LastVerifiedAt = %d, want 0 when touch write fails", stored.LastVerifiedAt)
	}
}

func TestManager_RegisterMetrics(t *testing.T) {
	ctx := context.Background()
	registry := prometheus.NewRegistry()

	mgr, _ := newTestManager(t, nil)
	mgr.RegisterMetrics(registry)

	key, _, err := mgr.Issue(ctx, &apikey.GenerationOptions{KeyPrefix: "acme"}, "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, _, err := mgr.Issue(ctx, &apikey.GenerationOptions{KeyPrefix: "acme"}, ""); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, ok, err := mgr.Verify(ctx, key.Token); err != nil || !ok {
		t.Fatalf("Verify() = (%v, %v), want (true, nil)", ok, err)
	}
	if _, ok, err := mgr.Verify(ctx, tamperLongToken(key.Token)); err != nil || ok {
		t.Fatalf("Verify() tampered = (%v, %v), want (false, nil)", ok, err)
	}
	if _, ok, err := mgr.Verify(ctx, "garbage"); err != nil || ok {
		t.Fatalf("Verify() malformed = (%v, %v), want (false, nil)", ok, err)
	}

	if got := testutil.ToFloat64(mgr.metricsIssued); got != 2 {
		t.Errorf("keys_issued_total = %v, want 2", got)
	}
	for result, want := range map[string]float64{
		resultOK:        1,
		resultMismatch:  1,
		resultMalformed: 1,
	} {
		if got := testutil.ToFloat64(mgr.metricsVerifications.WithLabelValues(result)); got != want {
			t.Errorf("verifications_total{result=%q} = %v, want %v", result, got, want)
		}
	}
}
