package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tienda-api/internal/application/identity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ identity.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con repos atados a la tx.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunIdentity usuarios y tokens en la misma transacción (cambio de password, borrado de usuario).
func (r *TxRunner) RunIdentity(ctx context.Context, fn func(users repository.UserRepository, tokens repository.TokenRepository) error) error {
	return withTx(ctx, r.pool, func(tx Querier) error {
		return fn(NewUserRepository(tx), NewTokenRepository(tx))
	})
}
