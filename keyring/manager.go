package keyring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	apikey "github.com/truestamp/prefixed-api-key"
)

// Verification outcomes used as the "result" metric label.
const (
	resultOK        = "ok"
	resultMalformed = "malformed"
	resultUnknown   = "unknown"
	resultMismatch  = "mismatch"
)

// Manager issues keys into a Store and verifies presented tokens against
// it. A nil KeyedScheme issues and verifies unkeyed SHA-256 records; with
// a scheme configured, new records are issued under HMAC-SHA256 and each
// record's Scheme field pins which digest applies at verification time.
type Manager struct {
	store  Store
	scheme *apikey.KeyedScheme
	logger *slog.Logger

	// Prometheus metrics
	metricsIssued        prometheus.Counter
	metricsVerifications *prometheus.CounterVec
}

// ManagerConfig holds configuration for Manager.
type ManagerConfig struct {
	// Scheme keys long token digests with HMAC-SHA256.
	// Nil means plain SHA-256.
	Scheme *apikey.KeyedScheme

	// Logger receives issue/verify events. Nil means slog.Default().
	Logger *slog.Logger
}

// NewManager creates a new Manager on top of store.
func NewManager(store Store, cfg *ManagerConfig) *Manager {
	if cfg == nil {
		cfg = &ManagerConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		store:  store,
		scheme: cfg.Scheme,
		logger: logger,
	}
}

// Issue generates a key, persists its record, and returns the key.
// The returned APIKey carries the full token; it is shown exactly once
// and cannot be recovered from the record.
func (m *Manager) Issue(ctx context.Context, opts *apikey.GenerationOptions, name string) (*apikey.APIKey, *Record, error) {
	key, err := apikey.GenerateAPIKey(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("keyring: issue: %w", err)
	}

	rec, err := NewRecord(name, key)
	if err != nil {
		return nil, nil, err
	}

	if m.scheme != nil {
		rec.LongTokenHash = m.scheme.HashLongToken(key.LongToken)
		rec.Scheme = SchemeHMACSHA256
	}

	if err := m.store.Put(ctx, rec); err != nil {
		return nil, nil, fmt.Errorf("keyring: issue: %w", err)
	}

	if m.metricsIssued != nil {
		m.metricsIssued.Inc()
	}

	m.logger.Info("api key issued",
		"id", rec.ID,
		"key_prefix", rec.KeyPrefix,
		"short_token", rec.ShortToken,
		"scheme", rec.Scheme)

	return key, rec, nil
}

// Verify checks a presented token against the stored record for its
// short token.
//
// A malformed token, an unknown short token, or a digest mismatch all
// report (nil, false, nil); only storage or configuration failures are
// errors. On success the record's LastVerifiedAt is updated best-effort.
func (m *Manager) Verify(ctx context.Context, token string) (*Record, bool, error) {
	components, err := apikey.GetTokenComponents(token)
	if err != nil {
		m.countVerification(resultMalformed)
		m.logger.Debug("token rejected", "token", apikey.MaskToken(token), "error", err)
		return nil, false, nil
	}

	rec, err := m.store.Get(ctx, components.ShortToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			m.countVerification(resultUnknown)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("keyring: verify: %w", err)
	}

	var ok bool
	switch rec.Scheme {
	case SchemeHMACSHA256:
		if m.scheme == nil {
			return nil, false, fmt.Errorf("keyring: verify: record %s uses %s but no keyed scheme is configured", rec.ID, rec.Scheme)
		}
		ok = m.scheme.CheckAPIKey(token, rec.LongTokenHash)
	case SchemeSHA256:
		ok = apikey.CheckAPIKey(token, rec.LongTokenHash)
	default:
		return nil, false, fmt.Errorf("keyring: verify: record %s has unknown scheme %q", rec.ID, rec.Scheme)
	}

	if !ok {
		m.countVerification(resultMismatch)
		return nil, false, nil
	}

	rec.Touch()
	if err := m.store.Put(ctx, rec); err != nil {
		// Verification already succeeded; losing the timestamp is
		// acceptable.
		m.logger.Warn("failed to update last_verified_at",
			"id", rec.ID,
			"error", err)
	}

	m.countVerification(resultOK)
	return rec, true, nil
}

// RegisterMetrics registers manager metrics with Prometheus.
//
// This should be called once during initialization.
// Returns the manager for method chaining.
func (m *Manager) RegisterMetrics(registry *prometheus.Registry) *Manager {
	m.metricsIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "apikey",
		Subsystem: "keyring",
		Name:      "keys_issued_total",
		Help:      "Total API keys issued through the manager",
	})

	m.metricsVerifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apikey",
		Subsystem: "keyring",
		Name:      "verifications_total",
		Help:      "Token verification attempts by result",
	}, []string{"result"})

	registry.MustRegister(
		m.metricsIssued,
		m.metricsVerifications,
	)

	return m
}

func (m *Manager) countVerification(result string) {
	if m.metricsVerifications != nil {
		m.metricsVerifications.WithLabelValues(result).Inc()
	}
}
