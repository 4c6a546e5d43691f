package handlers

import (
	"context"
	"net/http"

	"github.com/asauntung/bumdes/internal/api/httpx"
	"github.com/asauntung/bumdes/internal/apperr"
	"github.com/asauntung/bumdes/internal/middleware"
	"github.com/asauntung/bumdes/internal/models"
)

// Workflow is the mutation side of the ledger.
type Workflow interface {
	Create(ctx context.Context, actor models.Principal, in models.NewTransaction, idempotencyKey string) (models.Transaction, error)
	Approve(ctx context.Context, actor models.Principal, id int64) (models.Transaction, error)
	Reject(ctx context.Context, actor models.Principal, id int64) error
	Delete(ctx context.Context, actor models.Principal, id int64) error
}

type TransactionHandler struct {
	WF Workflow
}

func NewTransactionHandler(wf Workflow) *TransactionHandler {
	return &TransactionHandler{WF: wf}
}

const IdempotencyHeader = "Idempotency-Key"

func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httpx.WriteAppError(w, apperr.New(apperr.CodeAuthentication, "authentication required"))
	}
	return p, ok
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var in models.NewTransaction
	if err := decode(r, &in); err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	tx, err := h.WF.Create(r.Context(), p, in, r.Header.Get(IdempotencyHeader))
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tx)
}

func (h *TransactionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := idParam(r)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	tx, err := h.WF.Approve(r.Context(), p, id)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.WF.Reject)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.WF.Delete)
}

func (h *TransactionHandler) remove(w http.ResponseWriter, r *http.Request, fn func(context.Context, models.Principal, int64) error) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := idParam(r)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	if err := fn(r.Context(), p, id); err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
