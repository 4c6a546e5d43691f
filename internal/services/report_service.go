package services

import (
	"context"
	"slices"
	"time"

	"github.com/asauntung/bumdes/internal/apperr"
	"github.com/asauntung/bumdes/internal/approval"
	"github.com/asauntung/bumdes/internal/ledger"
	"github.com/asauntung/bumdes/internal/models"
)

// ReportService builds every read view from one store snapshot per call.
type ReportService struct {
	store         *ledger.Store
	recentLimit   int
	publicHistory int
}

func NewReportService(st *ledger.Store, recentLimit, publicHistory int) *ReportService {
	if recentLimit <= 0 {
		recentLimit = 10
	}
	if publicHistory <= 0 {
		publicHistory = 50
	}
	return &ReportService{store: st, recentLimit: recentLimit, publicHistory: publicHistory}
}

func (s *ReportService) snapshot(ctx context.Context) ([]models.Transaction, error) {
	txs, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "could not read ledger")
	}
	return txs, nil
}

type Dashboard struct {
	Totals models.Totals        `json:"totals"`
	Recent []models.Transaction `json:"recent"`
}

// Dashboard is the approved-only totals plus the latest transactions viewer may see.
func (s *ReportService) Dashboard(ctx context.Context, viewer models.Principal) (Dashboard, error) {
	txs, err := s.snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Totals: ledger.Aggregate(txs, ledger.ApprovedOnly),
		Recent: ledger.RecentN(txs, s.recentLimit, approval.VisibleTo(viewer)),
	}, nil
}

// Pending is the approval queue, newest first.
func (s *ReportService) Pending(ctx context.Context, viewer models.Principal) ([]models.Transaction, error) {
	txs, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.RecentN(txs, 0, approval.PendingFor(viewer)), nil
}

type BookLine struct {
	Date        models.Date            `json:"date"`
	Reference   string                 `json:"reference"`
	Description string                 `json:"description"`
	Category    models.Category        `json:"category"`
	Type        models.TransactionType `json:"type"`
	Income      int64                  `json:"income"`
	Expense     int64                  `json:"expense"`
	Balance     int64                  `json:"balance"`
	CreatedBy   string                 `json:"createdBy,omitempty"`
	ApprovedBy  string                 `json:"approvedBy,omitempty"`
}

type Book struct {
	Lines  []BookLine    `json:"lines"`
	Count  int           `json:"count"`
	Totals models.Totals `json:"totals"`
}

// Book is the approved book of accounts in canonical order. Creator and
// approver columns are only filled for directors.
func (s *ReportService) Book(ctx context.Context, viewer models.Principal) (Book, error) {
	txs, err := s.snapshot(ctx)
	if err != nil {
		return Book{}, err
	}
	approved := ledger.Approved(txs)
	b := Book{
		Lines:  make([]BookLine, 0, len(approved)),
		Count:  len(approved),
		Totals: ledger.Aggregate(approved, ledger.ApprovedOnly),
	}
	for tx, bal := range ledger.RunningBalanceSeries(approved) {
		line := bookLine(tx, bal)
		if viewer.IsDirector() {
			line.CreatedBy = tx.CreatedBy
			line.ApprovedBy = tx.Approver()
			if line.ApprovedBy == "" {
				line.ApprovedBy = ledger.ApproverPlaceholder
			}
		}
		b.Lines = append(b.Lines, line)
	}
	return b, nil
}

func bookLine(tx models.Transaction, bal int64) BookLine {
	line := BookLine{
		Date:        tx.Date,
		Reference:   ledger.Reference(tx.ID),
		Description: tx.Description,
		Category:    tx.Category,
		Type:        tx.Type,
		Balance:     bal,
	}
	if tx.Type == models.TxnIncome {
		line.Income = tx.Amount
	} else {
		line.Expense = tx.Amount
	}
	return line
}

type PublicSummary struct {
	Totals        models.Totals         `json:"totals"`
	Categories    []ledger.CategoryLine `json:"categories"`
	History       []BookLine            `json:"history"`
	ApprovedCount int                   `json:"approvedCount"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// PublicSummary is the unauthenticated view: approved records only, history
// newest first and capped, each line carrying its canonical running balance.
func (s *ReportService) PublicSummary(ctx context.Context) (PublicSummary, error) {
	txs, err := s.snapshot(ctx)
	if err != nil {
		return PublicSummary{}, err
	}
	approved := ledger.Approved(txs)

	var history []BookLine
	for tx, bal := range ledger.RunningBalanceSeries(approved) {
		history = append(history, bookLine(tx, bal))
	}
	slices.Reverse(history)
	if len(history) > s.publicHistory {
		history = history[:s.publicHistory]
	}

	return PublicSummary{
		Totals:        ledger.Aggregate(approved, ledger.ApprovedOnly),
		Categories:    ledger.OrderedBreakdown(ledger.CategoryBreakdown(approved)),
		History:       history,
		ApprovedCount: len(approved),
		UpdatedAt:     s.store.LoadedAt(),
	}, nil
}

// ExportRows feeds the CSV export.
func (s *ReportService) ExportRows(ctx context.Context) ([]ledger.ExportRow, error) {
	txs, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.ExportRows(txs), nil
}
