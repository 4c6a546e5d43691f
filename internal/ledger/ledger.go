// Package ledger derives read views from a transaction set. Every function
// here is pure: inputs are never mutated and results depend only on inputs.
package ledger

import (
	"cmp"
	"iter"
	"slices"
	"strconv"

	"github.com/asauntung/bumdes/internal/models"
)

// Filter selects the records an aggregate runs over.
type Filter int

const (
	// ApprovedOnly restricts to the official book of accounts.
	ApprovedOnly Filter = iota
	// AllStatuses includes pending records; never used for published totals.
	AllStatuses
)

func (f Filter) keep(tx models.Transaction) bool {
	return f == AllStatuses || tx.IsApproved()
}

// Approved returns the approved subset, preserving input order.
func Approved(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.IsApproved() {
			out = append(out, tx)
		}
	}
	return out
}

// Aggregate sums income and expense over the records f keeps.
func Aggregate(txs []models.Transaction, f Filter) models.Totals {
	var t models.Totals
	for _, tx := range txs {
		if f.keep(tx) {
			t.Add(tx)
		}
	}
	return t
}

// CanonicalOrder sorts by (date asc, id asc). It returns a new slice.
func CanonicalOrder(txs []models.Transaction) []models.Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, func(a, b models.Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// RunningBalanceSeries yields each transaction with the balance after it, in
// canonical order. The input is ordered once; the sequence can be ranged over
// any number of times and always yields the same pairs.
func RunningBalanceSeries(txs []models.Transaction) iter.Seq2[models.Transaction, int64] {
	ordered := CanonicalOrder(txs)
	return func(yield func(models.Transaction, int64) bool) {
		var balance int64
		for _, tx := range ordered {
			balance += tx.Signed()
			if !yield(tx, balance) {
				return
			}
		}
	}
}

// Entry is a materialized step of a running balance series.
type Entry struct {
	Transaction models.Transaction `json:"transaction"`
	Balance     int64              `json:"balance"`
}

// CollectSeries materializes a running balance series into a slice.
func CollectSeries(seq iter.Seq2[models.Transaction, int64]) []Entry {
	var out []Entry
	for tx, bal := range seq {
		out = append(out, Entry{Transaction: tx, Balance: bal})
	}
	return out
}

// CategoryBreakdown sums income and expense per category. Categories with
// no activity are absent from the result.
func CategoryBreakdown(txs []models.Transaction) map[models.Category]models.CategoryTotals {
	out := map[models.Category]models.CategoryTotals{}
	for _, tx := range txs {
		ct := out[tx.Category]
		switch tx.Type {
		case models.TxnIncome:
			ct.Income += tx.Amount
		case models.TxnExpense:
			ct.Expense += tx.Amount
		default:
			continue
		}
		out[tx.Category] = ct
	}
	return out
}

// CategoryLine is one row of an ordered breakdown.
type CategoryLine struct {
	Category models.Category `json:"category"`
	models.CategoryTotals
}

// OrderedBreakdown lays a breakdown out in the fixed category order, with any
// unknown categories appended alphabetically.
func OrderedBreakdown(m map[models.Category]models.CategoryTotals) []CategoryLine {
	out := make([]CategoryLine, 0, len(m))
	for _, c := range models.Categories {
		if ct, ok := m[c]; ok {
			out = append(out, CategoryLine{Category: c, CategoryTotals: ct})
		}
	}
	var extra []models.Category
	for c := range m {
		if !c.IsValid() {
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)
	for _, c := range extra {
		out = append(out, CategoryLine{Category: c, CategoryTotals: m[c]})
	}
	return out
}

// RecentN returns up to n transactions accepted by visible, newest created
// first, ties broken by id descending. n <= 0 means no limit.
func RecentN(txs []models.Transaction, n int, visible func(models.Transaction) bool) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if visible == nil || visible(tx) {
			out = append(out, tx)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ApproverPlaceholder marks an absent approver in exported rows.
const ApproverPlaceholder = "-"

// ExportRow is one line of the book of accounts export.
type ExportRow struct {
	Date        string `json:"date"`
	Reference   string `json:"reference"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Income      int64  `json:"income"`
	Expense     int64  `json:"expense"`
	Balance     int64  `json:"balance"`
	CreatedBy   string `json:"createdBy"`
	ApprovedBy  string `json:"approvedBy"`
}

func (r ExportRow) Strings() []string {
	return []string{
		r.Date,
		r.Reference,
		r.Description,
		r.Category,
		strconv.FormatInt(r.Income, 10),
		strconv.FormatInt(r.Expense, 10),
		strconv.FormatInt(r.Balance, 10),
		r.CreatedBy,
		r.ApprovedBy,
	}
}

// Reference is "#" followed by the last six digits of the id.
func Reference(id int64) string {
	s := strconv.FormatInt(id, 10)
	if len(s) > 6 {
		s = s[len(s)-6:]
	}
	return "#" + s
}

// ExportRows converts the approved subset into rows in canonical order.
func ExportRows(txs []models.Transaction) []ExportRow {
	var out []ExportRow
	for tx, bal := range RunningBalanceSeries(Approved(txs)) {
		row := ExportRow{
			Date:        tx.Date.String(),
			Reference:   Reference(tx.ID),
			Description: tx.Description,
			Category:    string(tx.Category),
			Balance:     bal,
			CreatedBy:   tx.CreatedBy,
			ApprovedBy:  ApproverPlaceholder,
		}
		if a := tx.Approver(); a != "" {
			row.ApprovedBy = a
		}
		if tx.Type == models.TxnIncome {
			row.Income = tx.Amount
		} else {
			row.Expense = tx.Amount
		}
		out = append(out, row)
	}
	return out
}
