package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresChannel is the channel the transactions trigger notifies on.
const PostgresChannel = "ledger_changes"

// Postgres subscribes to the database's own change notifications, so writes
// made outside this process (other instances, manual SQL) still reach the store.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres { return &Postgres{pool: pool} }

func (p *Postgres) Subscribe(ctx context.Context, fn func(Event)) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{PostgresChannel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", PostgresChannel, err)
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait notification: %w", err)
		}
		fn(Event{Source: "postgres", Op: n.Payload, At: time.Now()})
	}
}
