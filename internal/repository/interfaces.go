package repository

import (
	"context"
	"errors"
	"time"

	"github.com/asauntung/bumdes/internal/models"
)

// ErrNotFound is returned when the addressed record is absent, or for a
// conditional update, when it is no longer in the expected state.
var ErrNotFound = errors.New("transaction not found")

// Approval is the partial update applied on pending -> approved.
type Approval struct {
	ApprovedBy string
	ApprovedAt time.Time
}

// Transactions is the system of record. Every method reports success only
// once the backend has confirmed the write.
type Transactions interface {
	Load(ctx context.Context) ([]models.Transaction, error)

	// Insert stores tx and returns it with ID and CreatedAt assigned. A
	// repeated idempotencyKey returns the originally stored record.
	Insert(ctx context.Context, tx models.Transaction, idempotencyKey string) (models.Transaction, error)

	// Approve updates a pending record. ErrNotFound if it is missing or not pending.
	Approve(ctx context.Context, id int64, a Approval) error

	// DeletePending removes a record only while it is pending.
	DeletePending(ctx context.Context, id int64) error

	Delete(ctx context.Context, id int64) error
}
