package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labelhub/labelhub-api/internal/application/dealer"
	"github.com/labelhub/labelhub-api/internal/application/labels"
	"github.com/labelhub/labelhub-api/internal/domain/repository"
)

// Ensure TxRunner implementa los puertos de transacción de las aplicaciones.
var _ labels.LedgerTxRunner = (*TxRunner)(nil)
var _ dealer.LedgerTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunLedger inicia una transacción, ejecuta fn con los repos contables atados
// a la tx y hace Commit o Rollback. Los GetByIDForUpdate dentro de fn
// serializan las mutaciones de saldo por cuenta.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	accountRepo repository.AccountRepository,
	subUserRepo repository.SubUserRepository,
	historyRepo repository.HistoryRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	accountRepo := NewAccountRepository(tx)
	subUserRepo := NewSubUserRepository(tx)
	historyRepo := NewHistoryRepository(tx)

	if err := fn(accountRepo, subUserRepo, historyRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
