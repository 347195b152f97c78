package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxManager abstracts transaction boundaries so services can be tested
// without a live pool
type TxManager interface {
	WithTx(ctx context.Context, fn TxFunc) error
}

type pgxTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a TxManager backed by a pgx pool
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgxTxManager{pool: pool}
}

func (m *pgxTxManager) WithTx(ctx context.Context, fn TxFunc) error {
	return WithTransaction(ctx, m.pool, fn)
}
