// Package memory is an in-process system of record for dev mode and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/asauntung/bumdes/internal/models"
	"github.com/asauntung/bumdes/internal/repository"
)

type Transactions struct {
	mu     sync.Mutex
	rows   map[int64]models.Transaction
	idem   map[string]int64
	lastID int64
	now    func() time.Time
}

func New() *Transactions {
	return &Transactions{
		rows: map[int64]models.Transaction{},
		idem: map[string]int64{},
		now:  time.Now,
	}
}

// WithClock overrides the CreatedAt source.
func (r *Transactions) WithClock(now func() time.Time) *Transactions {
	r.now = now
	return r
}

var _ repository.Transactions = (*Transactions)(nil)

func (r *Transactions) Load(_ context.Context) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Transaction, 0, len(r.rows))
	for _, tx := range r.rows {
		out = append(out, clone(tx))
	}
	slices.SortFunc(out, func(a, b models.Transaction) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *Transactions) Insert(_ context.Context, tx models.Transaction, key string) (models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key != "" {
		if id, ok := r.idem[key]; ok {
			if existing, ok := r.rows[id]; ok {
				return clone(existing), nil
			}
		}
	}
	r.lastID++
	tx.ID = r.lastID
	tx.CreatedAt = r.now().UTC()
	if tx.ApprovedAt != nil {
		at := tx.CreatedAt
		tx.ApprovedAt = &at
	}
	r.rows[tx.ID] = clone(tx)
	if key != "" {
		r.idem[key] = tx.ID
	}
	return clone(tx), nil
}

func (r *Transactions) Approve(_ context.Context, id int64, a repository.Approval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.rows[id]
	if !ok || tx.Status != models.TxnPending {
		return repository.ErrNotFound
	}
	by, at := a.ApprovedBy, a.ApprovedAt
	tx.Status = models.TxnApproved
	tx.ApprovedBy = &by
	tx.ApprovedAt = &at
	r.rows[id] = tx
	return nil
}

func (r *Transactions) DeletePending(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.rows[id]
	if !ok || tx.Status != models.TxnPending {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *Transactions) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

// Seed stores txs as given, keeping their ids and timestamps.
func (r *Transactions) Seed(txs ...models.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range txs {
		r.rows[tx.ID] = clone(tx)
		if tx.ID > r.lastID {
			r.lastID = tx.ID
		}
	}
}

func clone(tx models.Transaction) models.Transaction {
	if tx.ApprovedBy != nil {
		by := *tx.ApprovedBy
		tx.ApprovedBy = &by
	}
	if tx.ApprovedAt != nil {
		at := *tx.ApprovedAt
		tx.ApprovedAt = &at
	}
	return tx
}
