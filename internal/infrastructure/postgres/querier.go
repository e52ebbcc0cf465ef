package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// Querier lo común entre *pgxpool.Pool y pgx.Tx: los repositorios funcionan igual dentro o
// fuera de una transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// NewRepos arma el juego de repositorios sobre un pool o una tx.
func NewRepos(q Querier) repository.TxRepos {
	return repository.TxRepos{
		Items:       NewItemRepository(q),
		Places:      NewPlaceRepository(q),
		Allocations: NewAllocationRepository(q),
		Receipts:    NewReceiptRepository(q),
		Idempotency: NewIdempotencyRepository(q),
		Movements:   NewStockMovementRepository(q),
		Users:       NewUserRepository(q),
	}
}
