package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.LayerRepository = (*LayerRepo)(nil)

// LayerRepo implementación del libro de capas sobre PostgreSQL (usable con pool o tx).
type LayerRepo struct {
	q Querier
}

// NewLayerRepository construye el adaptador de capas. Pasar pool o tx (Querier).
func NewLayerRepository(q Querier) *LayerRepo {
	return &LayerRepo{q: q}
}

const layerColumns = `id, seq, product_id, variant_id, quantity_received, quantity_remaining, unit_cost,
		received_at, source_type, source_reference, created_at`

// Create inserta la capa; seq lo asigna la secuencia de la tabla.
func (r *LayerRepo) Create(ctx context.Context, layer *entity.InventoryLayer) error {
	query := `
		INSERT INTO inventory_layers (id, product_id, variant_id, quantity_received, quantity_remaining, unit_cost,
			received_at, source_type, source_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		layer.ID, layer.ProductID, layer.VariantID, layer.QuantityReceived, layer.QuantityRemaining,
		layer.UnitCost, layer.ReceivedAt, layer.SourceType, layer.SourceReference, layer.CreatedAt,
	).Scan(&layer.Seq)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: capa %s ya existe", domain.ErrConflict, layer.ID)
		}
		return fmt.Errorf("insert layer: %w", err)
	}
	return nil
}

// GetByID obtiene una capa por ID.
func (r *LayerRepo) GetByID(ctx context.Context, id string) (*entity.InventoryLayer, error) {
	query := `SELECT ` + layerColumns + ` FROM inventory_layers WHERE id = $1`
	l, err := scanLayer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get layer: %w", err)
	}
	return l, nil
}

// ListRemainingForUpdate capas con existencias en orden FIFO, bloqueadas (SELECT FOR UPDATE).
func (r *LayerRepo) ListRemainingForUpdate(ctx context.Context, key entity.ItemKey) ([]*entity.InventoryLayer, error) {
	query := `
		SELECT ` + layerColumns + `
		FROM inventory_layers
		WHERE product_id = $1 AND variant_id = $2 AND quantity_remaining > 0
		ORDER BY received_at, seq
		FOR UPDATE`
	return r.list(ctx, query, key.ProductID, key.VariantID)
}

// ListRemaining capas con existencias del artículo; asOf excluye las recibidas después.
func (r *LayerRepo) ListRemaining(ctx context.Context, key entity.ItemKey, asOf *time.Time) ([]*entity.InventoryLayer, error) {
	query := `
		SELECT ` + layerColumns + `
		FROM inventory_layers
		WHERE product_id = $1 AND variant_id = $2 AND quantity_remaining > 0`
	args := []any{key.ProductID, key.VariantID}
	if asOf != nil {
		query += ` AND received_at <= $3`
		args = append(args, *asOf)
	}
	query += ` ORDER BY received_at, seq`
	return r.list(ctx, query, args...)
}

// ListAllRemaining capas con existencias de todos los artículos.
func (r *LayerRepo) ListAllRemaining(ctx context.Context, asOf *time.Time) ([]*entity.InventoryLayer, error) {
	query := `SELECT ` + layerColumns + ` FROM inventory_layers WHERE quantity_remaining > 0`
	args := []any{}
	if asOf != nil {
		query += ` AND received_at <= $1`
		args = append(args, *asOf)
	}
	query += ` ORDER BY received_at, seq`
	return r.list(ctx, query, args...)
}

// DecrementRemaining resta quantity de la capa solo si alcanza; el CHECK de la tabla respalda la regla.
func (r *LayerRepo) DecrementRemaining(ctx context.Context, layerID string, quantity decimal.Decimal) error {
	query := `
		UPDATE inventory_layers SET quantity_remaining = quantity_remaining - $2
		WHERE id = $1 AND quantity_remaining >= $2`
	tag, err := r.q.Exec(ctx, query, layerID, quantity)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: capa %s", domain.ErrInsufficientStock, layerID)
		}
		return fmt.Errorf("decrement layer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: capa %s", domain.ErrInsufficientStock, layerID)
	}
	return nil
}

// Reassign mueve todas las capas (agotadas incluidas) de from a to.
func (r *LayerRepo) Reassign(ctx context.Context, from, to entity.ItemKey) (int64, error) {
	query := `
		UPDATE inventory_layers SET product_id = $3, variant_id = $4
		WHERE product_id = $1 AND variant_id = $2`
	tag, err := r.q.Exec(ctx, query, from.ProductID, from.VariantID, to.ProductID, to.VariantID)
	if err != nil {
		return 0, fmt.Errorf("reassign layers: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SumRemaining suma de existencias del artículo.
func (r *LayerRepo) SumRemaining(ctx context.Context, key entity.ItemKey) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity_remaining), 0)
		FROM inventory_layers WHERE product_id = $1 AND variant_id = $2`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, key.ProductID, key.VariantID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum layers: %w", err)
	}
	return total, nil
}

func (r *LayerRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryLayer, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list layers: %w", err)
	}
	defer rows.Close()
	var out []*entity.InventoryLayer
	for rows.Next() {
		l, err := scanLayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan layer: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLayer(row pgx.Row) (*entity.InventoryLayer, error) {
	var l entity.InventoryLayer
	err := row.Scan(
		&l.ID, &l.Seq, &l.ProductID, &l.VariantID, &l.QuantityReceived, &l.QuantityRemaining, &l.UnitCost,
		&l.ReceivedAt, &l.SourceType, &l.SourceReference, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
