// Package postgres is the system of record backed by pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/asauntung/bumdes/internal/repository"
)

// Repositories groups the pool-backed implementations.
type Repositories struct {
	Transactions repo.Transactions

	pool *pgxpool.Pool
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Transactions: &transactionsRepo{pool: pool},
		pool:         pool,
	}
}

// Ping checks the database is reachable.
func (r Repositories) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}
