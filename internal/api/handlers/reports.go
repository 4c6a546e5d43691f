package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/asauntung/bumdes/internal/api/httpx"
	"github.com/asauntung/bumdes/internal/apperr"
	"github.com/asauntung/bumdes/internal/export"
	"github.com/asauntung/bumdes/internal/ledger"
	"github.com/asauntung/bumdes/internal/models"
	"github.com/asauntung/bumdes/internal/services"
)

// Reports is the read side of the ledger.
type Reports interface {
	Dashboard(ctx context.Context, viewer models.Principal) (services.Dashboard, error)
	Pending(ctx context.Context, viewer models.Principal) ([]models.Transaction, error)
	Book(ctx context.Context, viewer models.Principal) (services.Book, error)
	PublicSummary(ctx context.Context) (services.PublicSummary, error)
	ExportRows(ctx context.Context) ([]ledger.ExportRow, error)
}

type ReportHandler struct {
	R       Reports
	OrgName string
	Now     func() time.Time
}

func NewReportHandler(r Reports, orgName string) *ReportHandler {
	return &ReportHandler{R: r, OrgName: orgName, Now: time.Now}
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	d, err := h.R.Dashboard(r.Context(), p)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

func (h *ReportHandler) Pending(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	txs, err := h.R.Pending(r.Context(), p)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": txs, "count": len(txs)})
}

func (h *ReportHandler) Book(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	b, err := h.R.Book(r.Context(), p)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *ReportHandler) Public(w http.ResponseWriter, r *http.Request) {
	s, err := h.R.PublicSummary(r.Context())
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

// ExportCSV renders fully before writing so a failure still yields a JSON error.
func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(w, r); !ok {
		return
	}
	rows, err := h.R.ExportRows(r.Context())
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rows); err != nil {
		httpx.WriteAppError(w, apperr.Wrap(apperr.CodeInternal, err, "export failed"))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(h.OrgName, h.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
