package models

// Totals is an aggregate over a transaction set. Balance is always
// TotalIncome - TotalExpense.
type Totals struct {
	TotalIncome  int64 `json:"totalIncome"`
	TotalExpense int64 `json:"totalExpense"`
	Balance      int64 `json:"balance"`
	IncomeCount  int   `json:"incomeCount"`
	ExpenseCount int   `json:"expenseCount"`
}

func (t *Totals) Add(tx Transaction) {
	switch tx.Type {
	case TxnIncome:
		t.TotalIncome += tx.Amount
		t.IncomeCount++
	case TxnExpense:
		t.TotalExpense += tx.Amount
		t.ExpenseCount++
	}
	t.Balance = t.TotalIncome - t.TotalExpense
}

// CategoryTotals holds per-category sums.
type CategoryTotals struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}
