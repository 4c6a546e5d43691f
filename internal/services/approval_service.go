package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/asauntung/bumdes/internal/apperr"
	"github.com/asauntung/bumdes/internal/approval"
	"github.com/asauntung/bumdes/internal/ledger"
	"github.com/asauntung/bumdes/internal/metrics"
	"github.com/asauntung/bumdes/internal/models"
	"github.com/asauntung/bumdes/internal/notify"
	repo "github.com/asauntung/bumdes/internal/repository"
	"github.com/asauntung/bumdes/internal/worker"
)

// ApprovalService applies every state change. A change is reported as done
// only after the repository confirms it, and the store is reloaded before the
// call returns.
type ApprovalService struct {
	trx   repo.Transactions
	store *ledger.Store
	pub   notify.Publisher
	wp    *worker.Pool
	log   *slog.Logger
	now   func() time.Time
}

func NewApprovalService(t repo.Transactions, st *ledger.Store, pub notify.Publisher, wp *worker.Pool, log *slog.Logger) *ApprovalService {
	if log == nil {
		log = slog.Default()
	}
	return &ApprovalService{trx: t, store: st, pub: pub, wp: wp, log: log, now: time.Now}
}

// WithClock overrides the time source.
func (s *ApprovalService) WithClock(now func() time.Time) *ApprovalService {
	s.now = now
	return s
}

// ----------------- Helpers -----------------

func (s *ApprovalService) observe(op string, id int64, actor models.Principal, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(apperr.As(err).Code())
		s.log.Info("ledger op refused", "op", op, "id", id, "actor", actor.Username, "outcome", outcome, "err", err)
	} else {
		s.log.Info("ledger op", "op", op, "id", id, "actor", actor.Username, "outcome", outcome)
	}
	metrics.OperationsTotal.WithLabelValues(op, outcome).Inc()
}

// afterCommit refreshes local views and tells other readers to do the same.
func (s *ApprovalService) afterCommit(ctx context.Context, op string) {
	if err := s.store.Reload(ctx); err != nil {
		// the store stays stale and reloads on the next read
		s.log.Warn("reload after commit", "op", op, "err", err)
	}
	if s.pub == nil {
		return
	}
	ev := notify.Event{Source: "api", Op: op, At: s.now()}
	publish := func() {
		if err := s.pub.Publish(context.Background(), ev); err != nil {
			metrics.ChangeEvents.WithLabelValues("error").Inc()
			s.log.Warn("publish change", "op", op, "err", err)
			return
		}
		metrics.ChangeEvents.WithLabelValues("ok").Inc()
	}
	if s.wp != nil {
		s.wp.Submit(publish)
		return
	}
	publish()
}

func (s *ApprovalService) lookup(ctx context.Context, id int64) (*models.Transaction, error) {
	tx, ok, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err, "could not read ledger")
	}
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

// conflictOrFailure maps a refused conditional write.
func (s *ApprovalService) conflictOrFailure(err error, msg string) error {
	if errors.Is(err, repo.ErrNotFound) {
		s.store.Invalidate()
		return apperr.Wrap(apperr.CodeInvalidState, err, "transaction changed or no longer exists")
	}
	return apperr.Persistence(err, msg)
}

// ----------------- Intake -----------------

// Create validates in and stores it in the state the creator's role dictates.
// A non-empty idempotencyKey makes a retried call by the same creator return
// the first result.
func (s *ApprovalService) Create(ctx context.Context, actor models.Principal, in models.NewTransaction, idempotencyKey string) (models.Transaction, error) {
	tx, err := approval.Intake(in, actor, s.now())
	if err != nil {
		s.observe("create", 0, actor, err)
		return models.Transaction{}, err
	}
	stored, err := s.trx.Insert(ctx, tx, scopedKey(actor, idempotencyKey))
	if err != nil {
		err = apperr.Persistence(err, "could not store transaction")
		s.observe("create", 0, actor, err)
		return models.Transaction{}, err
	}
	s.afterCommit(ctx, "create")
	s.observe("create", stored.ID, actor, nil)
	return stored, nil
}

// scopedKey binds a client key to its creator so two principals sending the
// same key never share a stored record.
func scopedKey(actor models.Principal, key string) string {
	if key == "" {
		return ""
	}
	return actor.Username + ":" + key
}

// ----------------- Transitions -----------------

func (s *ApprovalService) Approve(ctx context.Context, actor models.Principal, id int64) (models.Transaction, error) {
	tx, err := s.lookup(ctx, id)
	if err == nil {
		err = approval.Check(approval.ActionApprove, actor, tx)
	}
	if err != nil {
		s.observe("approve", id, actor, err)
		return models.Transaction{}, err
	}
	now := s.now().UTC()
	if err := s.trx.Approve(ctx, id, repo.Approval{ApprovedBy: actor.Username, ApprovedAt: now}); err != nil {
		err = s.conflictOrFailure(err, "could not approve transaction")
		s.observe("approve", id, actor, err)
		return models.Transaction{}, err
	}
	s.afterCommit(ctx, "approve")
	s.observe("approve", id, actor, nil)
	return approval.Approve(*tx, actor, now), nil
}

// Reject removes a pending transaction permanently.
func (s *ApprovalService) Reject(ctx context.Context, actor models.Principal, id int64) error {
	tx, err := s.lookup(ctx, id)
	if err == nil {
		err = approval.Check(approval.ActionReject, actor, tx)
	}
	if err != nil {
		s.observe("reject", id, actor, err)
		return err
	}
	if err := s.trx.DeletePending(ctx, id); err != nil {
		err = s.conflictOrFailure(err, "could not reject transaction")
		s.observe("reject", id, actor, err)
		return err
	}
	s.afterCommit(ctx, "reject")
	s.observe("reject", id, actor, nil)
	return nil
}

// Delete removes a transaction in any state: directors any, creators their own.
func (s *ApprovalService) Delete(ctx context.Context, actor models.Principal, id int64) error {
	tx, err := s.lookup(ctx, id)
	if err == nil {
		err = approval.Check(approval.ActionDelete, actor, tx)
	}
	if err != nil {
		s.observe("delete", id, actor, err)
		return err
	}
	if err := s.trx.Delete(ctx, id); err != nil {
		err = s.conflictOrFailure(err, "could not delete transaction")
		s.observe("delete", id, actor, err)
		return err
	}
	s.afterCommit(ctx, "delete")
	s.observe("delete", id, actor, nil)
	return nil
}
