package models

import (
	"time"
)

type TransactionType string

const (
	TxnIncome  TransactionType = "income"
	TxnExpense TransactionType = "expense"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TxnIncome, TxnExpense:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TxnPending  TransactionStatus = "pending"
	TxnApproved TransactionStatus = "approved"
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TxnPending, TxnApproved:
		return true
	}
	return false
}

// Transaction is a single cash movement. Amount is in the smallest currency unit.
type Transaction struct {
	ID          int64             `json:"id"`
	Date        Date              `json:"date"`
	Description string            `json:"description"`
	Amount      int64             `json:"amount"`
	Type        TransactionType   `json:"type"`
	Category    Category          `json:"category"`
	Status      TransactionStatus `json:"status"`
	CreatedBy   string            `json:"createdBy"`
	ApprovedBy  *string           `json:"approvedBy"`
	ApprovedAt  *time.Time        `json:"approvedAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func (t Transaction) IsApproved() bool { return t.Status == TxnApproved }

// Signed returns +Amount for income and -Amount for expense.
func (t Transaction) Signed() int64 {
	if t.Type == TxnExpense {
		return -t.Amount
	}
	return t.Amount
}

// Approver returns the approving principal or "" when absent.
func (t Transaction) Approver() string {
	if t.ApprovedBy == nil {
		return ""
	}
	return *t.ApprovedBy
}

// NewTransaction is the intake payload. Date is kept as text so malformed
// input surfaces as a validation error rather than a decode error.
type NewTransaction struct {
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Description string          `json:"description" validate:"required,notblank"`
	Amount      int64           `json:"amount" validate:"gt=0"`
	Type        TransactionType `json:"type" validate:"required,txntype"`
	Category    Category        `json:"category" validate:"required,category"`
}
