package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Psychoriddler/Emergilink-prototype/pkg/metrics"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/trm"
)

type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// TxorDB returns the transaction stored in ctx, or the pool outside one.
func TxorDB(ctx context.Context, db *pgxpool.Pool) Querier {
	tx, ok := ctx.Value(trm.TxKey).(pgx.Tx)
	if !ok {
		return db
	}
	return tx
}

// observe is deferred with a pointer to the named error result.
func observe(op string, start time.Time, err *error) {
	metrics.RecordDatabaseQuery(op, *err, time.Since(start))
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
