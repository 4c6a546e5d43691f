package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/asauntung/bumdes/internal/metrics"
	"github.com/asauntung/bumdes/internal/models"
	"github.com/asauntung/bumdes/internal/notify"
)

// Loader is the read half of the persistence contract.
type Loader interface {
	Load(ctx context.Context) ([]models.Transaction, error)
}

// Store owns the in-memory transaction set. It is only ever replaced
// wholesale from the system of record; views are recomputed from it on read.
type Store struct {
	src Loader
	log *slog.Logger

	// reloadMu is held across Load and install; sets are installed in load order.
	reloadMu sync.Mutex

	mu       sync.RWMutex
	txs      []models.Transaction
	stale    bool
	loadedAt time.Time
}

func NewStore(src Loader, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{src: src, log: log, stale: true}
}

// Reload replaces the set with a fresh load. On failure the previous set is
// kept and the store stays stale so the next read retries.
func (s *Store) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	txs, err := s.src.Load(ctx)
	if err != nil {
		s.mu.Lock()
		s.stale = true
		s.mu.Unlock()
		metrics.StoreReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("reload ledger: %w", err)
	}

	s.mu.Lock()
	s.txs = txs
	s.stale = false
	s.loadedAt = time.Now()
	s.mu.Unlock()

	metrics.StoreReloads.WithLabelValues("ok").Inc()
	t := Aggregate(txs, ApprovedOnly)
	metrics.ApprovedBalance.Set(float64(t.Balance))
	metrics.PendingTransactions.Set(float64(len(txs) - t.IncomeCount - t.ExpenseCount))
	s.log.Debug("ledger reloaded", "count", len(txs), "balance", t.Balance)
	return nil
}

// Invalidate marks the set stale without touching it.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// Snapshot returns a copy of the current set, reloading first when stale.
func (s *Store) Snapshot(ctx context.Context) ([]models.Transaction, error) {
	s.mu.RLock()
	stale := s.stale
	s.mu.RUnlock()
	if stale {
		if err := s.Reload(ctx); err != nil {
			return nil, err
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.txs), nil
}

// Find looks up one transaction in the current snapshot.
func (s *Store) Find(ctx context.Context, id int64) (models.Transaction, bool, error) {
	txs, err := s.Snapshot(ctx)
	if err != nil {
		return models.Transaction{}, false, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, true, nil
		}
	}
	return models.Transaction{}, false, nil
}

func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Watch reloads on every change event until ctx is done. Events carry no
// payload the store relies on.
func (s *Store) Watch(ctx context.Context, sub notify.Subscriber) error {
	return sub.Subscribe(ctx, func(ev notify.Event) {
		if err := s.Reload(ctx); err != nil {
			s.log.Warn("reload after change event", "source", ev.Source, "err", err)
		}
	})
}
