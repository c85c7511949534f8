package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

var _ repository.AverageCostRepository = (*AverageCostRepo)(nil)

// AverageCostRepo costo promedio móvil sobre PostgreSQL (usable con pool o tx).
type AverageCostRepo struct {
	q Querier
}

// NewAverageCostRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAverageCostRepository(q Querier) *AverageCostRepo {
	return &AverageCostRepo{q: q}
}

// Get obtiene el promedio del artículo; (nil, nil) si no existe.
func (r *AverageCostRepo) Get(ctx context.Context, key entity.ItemKey) (*entity.AverageCost, error) {
	return r.get(ctx, key, false)
}

// GetForUpdate obtiene el promedio y bloquea la fila (SELECT FOR UPDATE).
func (r *AverageCostRepo) GetForUpdate(ctx context.Context, key entity.ItemKey) (*entity.AverageCost, error) {
	return r.get(ctx, key, true)
}

func (r *AverageCostRepo) get(ctx context.Context, key entity.ItemKey, forUpdate bool) (*entity.AverageCost, error) {
	query := `
		SELECT product_id, variant_id, quantity, unit_cost, updated_at
		FROM average_costs WHERE product_id = $1 AND variant_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var a entity.AverageCost
	err := r.q.QueryRow(ctx, query, key.ProductID, key.VariantID).Scan(
		&a.ProductID, &a.VariantID, &a.Quantity, &a.UnitCost, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get average cost: %w", err)
	}
	return &a, nil
}

// Upsert inserta o actualiza el promedio del artículo.
func (r *AverageCostRepo) Upsert(ctx context.Context, avg *entity.AverageCost) error {
	query := `
		INSERT INTO average_costs (product_id, variant_id, quantity, unit_cost, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, variant_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, unit_cost = EXCLUDED.unit_cost, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, avg.ProductID, avg.VariantID, avg.Quantity, avg.UnitCost, avg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert average cost: %w", err)
	}
	return nil
}

// Delete elimina el promedio (artículo absorbido en una fusión).
func (r *AverageCostRepo) Delete(ctx context.Context, key entity.ItemKey) error {
	_, err := r.q.Exec(ctx, `DELETE FROM average_costs WHERE product_id = $1 AND variant_id = $2`, key.ProductID, key.VariantID)
	if err != nil {
		return fmt.Errorf("delete average cost: %w", err)
	}
	return nil
}
