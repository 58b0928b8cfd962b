package keyring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// recordPrefix namespaces record keys inside the badger keyspace.
const recordPrefix = "rec:"

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	// Dir is the badger data directory. Required.
	Dir string

	// SyncWrites fsyncs every write. Slower, survives power loss.
	SyncWrites bool

	// GCInterval is the delay between value log GC sweeps.
	// Zero selects the 10 minute default.
	GCInterval time.Duration

	// GCThreshold is the rewrite ratio passed to badger's value log GC.
	// Zero selects the 0.5 default.
	GCThreshold float64
}

// DefaultBadgerConfig returns the default configuration for dir.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:         dir,
		GCInterval:  10 * time.Minute,
		GCThreshold: 0.5,
	}
}

// BadgerStore provides durable record storage using Badger v3.
// Records are stored as JSON values under the "rec:" key prefix.
type BadgerStore struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger
	closed atomic.Bool

	// Prometheus metrics
	metricsLSMSize      prometheus.Gauge
	metricsValueLogSize prometheus.Gauge
	metricsRecords      prometheus.Gauge

	// Shutdown
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerStore opens (or creates) a badger-backed store at cfg.Dir.
func NewBadgerStore(cfg BadgerConfig, logger *slog.Logger) (*BadgerStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("keyring: badger dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}
	if cfg.GCThreshold <= 0 {
		cfg.GCThreshold = 0.5
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("keyring: open badger: %w", err)
	}

	store := &BadgerStore{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	// Start background GC loop
	go store.gcLoop()

	logger.Info("keyring store opened",
		"dir", cfg.Dir,
		"sync_writes", cfg.SyncWrites,
		"gc_interval", cfg.GCInterval)

	return store, nil
}

func recordKey(shortToken string) []byte {
	return []byte(recordPrefix + shortToken)
}

// Put stores a record keyed by its short token.
func (s *BadgerStore) Put(_ context.Context, rec *Record) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if rec == nil {
		return fmt.Errorf("%w: record is required", ErrInvalidRecord)
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("keyring: encode record: %w", err)
	}

	key := recordKey(rec.ShortToken)
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		switch {
		case err == nil:
			var existing Record
			verr := item.Value(func(v []byte) error {
				if uerr := json.Unmarshal(v, &existing); uerr != nil {
					return fmt.Errorf("keyring: decode record: %w", uerr)
				}
				return nil
			})
			if verr != nil {
				return verr
			}
			if existing.ID != rec.ID {
				return ErrDuplicateShortToken
			}
		case errors.Is(err, badger.ErrKeyNotFound):
			// New record.
		default:
			return err
		}

		return txn.Set(key, value)
	})
}

// Get retrieves a record by short token.
func (s *BadgerStore) Get(_ context.Context, shortToken string) (*Record, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(shortToken))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		return item.Value(func(v []byte) error {
			if uerr := json.Unmarshal(v, &rec); uerr != nil {
				return fmt.Errorf("keyring: decode record: %w", uerr)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// Delete removes a record by short token.
func (s *BadgerStore) Delete(_ context.Context, shortToken string) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	key := recordKey(shortToken)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// List retrieves all records, ordered by short token.
func (s *BadgerStore) List(_ context.Context) ([]*Record, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	var recs []*Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec Record
			err := it.Item().Value(func(v []byte) error {
				if uerr := json.Unmarshal(v, &rec); uerr != nil {
					return fmt.Errorf("keyring: decode record: %w", uerr)
				}
				return nil
			})
			if err != nil {
				return err
			}
			recs = append(recs, &rec)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return recs, nil
}

// Len reports the number of stored records.
func (s *BadgerStore) Len(_ context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		opts.PrefetchValues = false // Only need keys
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Close stops the background loops and closes the database.
// Closing twice is a no-op.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	// Stop GC loop
	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("keyring: close badger: %w", err)
	}

	s.logger.Info("keyring store closed")
	return nil
}

// RegisterMetrics registers store metrics with Prometheus.
//
// This should be called once during initialization.
// Returns the store for method chaining.
func (s *BadgerStore) RegisterMetrics(registry *prometheus.Registry) *BadgerStore {
	s.metricsLSMSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "apikey",
		Subsystem: "keyring",
		Name:      "badger_lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	})

	s.metricsValueLogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "apikey",
		Subsystem: "keyring",
		Name:      "badger_value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	})

	s.metricsRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "apikey",
		Subsystem: "keyring",
		Name:      "records_total",
		Help:      "Number of key records in the store",
	})

	registry.MustRegister(
		s.metricsLSMSize,
		s.metricsValueLogSize,
		s.metricsRecords,
	)

	// Start metrics updater
	go s.metricsUpdateLoop()

	return s
}

// metricsUpdateLoop periodically updates Prometheus metrics.
func (s *BadgerStore) metricsUpdateLoop() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.closed.Load() {
				return
			}

			lsm, vlog := s.db.Size()
			s.metricsLSMSize.Set(float64(lsm))
			s.metricsValueLogSize.Set(float64(vlog))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			n, err := s.Len(ctx)
			cancel()
			if err != nil {
				// Skip on error (store might be closing).
				continue
			}
			s.metricsRecords.Set(float64(n))

		case <-s.stopCh:
			return
		}
	}
}

// gcLoop runs periodic value log garbage collection.
func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runGC()

		case <-s.stopCh:
			return
		}
	}
}

// runGC sweeps the value log until badger reports nothing left to rewrite.
func (s *BadgerStore) runGC() {
	start := time.Now()
	cycles := 0

	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Error("value log gc failed", "error", err)
			}
			break
		}
		cycles++
	}

	if cycles > 0 {
		s.logger.Info("value log gc completed",
			"cycles", cycles,
			"elapsed", time.Since(start))
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
