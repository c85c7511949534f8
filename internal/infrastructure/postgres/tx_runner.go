package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := inventory.Repositories{
		Layers:    NewLayerRepository(tx),
		Averages:  NewAverageCostRepository(tx),
		Items:     NewItemRepository(tx),
		Movements: NewInventoryMovementRepository(tx),
		Charges:   NewReceiptChargeRepository(tx),
		Locker:    NewAdvisoryLocker(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ReadRepositories repositorios atados al pool, para lecturas fuera de transacción.
func ReadRepositories(pool *pgxpool.Pool) inventory.Repositories {
	return inventory.Repositories{
		Layers:    NewLayerRepository(pool),
		Averages:  NewAverageCostRepository(pool),
		Items:     NewItemRepository(pool),
		Movements: NewInventoryMovementRepository(pool),
		Charges:   NewReceiptChargeRepository(pool),
		Locker:    noopLocker{},
	}
}
