package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/asauntung/bumdes/internal/models"
	"github.com/asauntung/bumdes/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const txColumns = `id, date, description, amount, type, category, status, created_by, approved_by, approved_at, created_at`

func scanTx(row pgx.Row) (models.Transaction, error) {
	var (
		tx   models.Transaction
		date time.Time
	)
	err := row.Scan(&tx.ID, &date, &tx.Description, &tx.Amount, &tx.Type, &tx.Category,
		&tx.Status, &tx.CreatedBy, &tx.ApprovedBy, &tx.ApprovedAt, &tx.CreatedAt)
	if err != nil {
		return models.Transaction{}, err
	}
	tx.Date = models.DateOf(date)
	return tx, nil
}

func (r *transactionsRepo) Load(ctx context.Context) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+txColumns+` FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTx(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *transactionsRepo) Insert(ctx context.Context, tx models.Transaction, key string) (models.Transaction, error) {
	var idem *string
	if key != "" {
		idem = &key
	}
	// A replayed key hits the no-op update and RETURNING yields the stored row.
	const q = `
INSERT INTO transactions (
  date, description, amount, type, category, status, created_by, approved_by, approved_at, idempotency_key
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,CASE WHEN $8::text IS NULL THEN NULL ELSE now() END,$9)
ON CONFLICT (idempotency_key) DO UPDATE
SET idempotency_key = EXCLUDED.idempotency_key
RETURNING ` + txColumns
	stored, err := scanTx(r.pool.QueryRow(ctx, q,
		tx.Date.Time, tx.Description, tx.Amount, tx.Type, tx.Category, tx.Status, tx.CreatedBy, tx.ApprovedBy, idem,
	))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return stored, nil
}

func (r *transactionsRepo) Approve(ctx context.Context, id int64, a repository.Approval) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions
		    SET status='approved', approved_by=$2, approved_at=$3
		  WHERE id=$1 AND status='pending'`,
		id, a.ApprovedBy, a.ApprovedAt,
	)
	if err != nil {
		return fmt.Errorf("approve transaction %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *transactionsRepo) DeletePending(ctx context.Context, id int64) error {
	return r.delete(ctx, `DELETE FROM transactions WHERE id=$1 AND status='pending'`, id)
}

func (r *transactionsRepo) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, `DELETE FROM transactions WHERE id=$1`, id)
}

func (r *transactionsRepo) delete(ctx context.Context, q string, id int64) error {
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
