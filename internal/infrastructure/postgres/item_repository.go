package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo registro de productos y variantes sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `product_id, variant_id, sku, name, store_id, category_id, cost_price, wholesale_price, price,
		stock_quantity, updated_at`

// Get obtiene un artículo por llave.
func (r *ItemRepo) Get(ctx context.Context, key entity.ItemKey) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE product_id = $1 AND variant_id = $2`
	it, err := scanItem(r.q.QueryRow(ctx, query, key.ProductID, key.VariantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// List artículos filtrados por tienda, categoría y producto (campos vacíos no filtran).
func (r *ItemRepo) List(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.StoreID != "" {
		query += fmt.Sprintf(" AND store_id = $%d", pos)
		args = append(args, filter.StoreID)
		pos++
	}
	if filter.CategoryID != "" {
		query += fmt.Sprintf(" AND category_id = $%d", pos)
		args = append(args, filter.CategoryID)
		pos++
	}
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
	}
	query += ` ORDER BY product_id, variant_id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var out []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Upsert crea o actualiza los datos del artículo.
func (r *ItemRepo) Upsert(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (product_id, variant_id, sku, name, store_id, category_id, cost_price, wholesale_price, price, stock_quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (product_id, variant_id) DO UPDATE SET
			sku = EXCLUDED.sku, name = EXCLUDED.name, store_id = EXCLUDED.store_id, category_id = EXCLUDED.category_id,
			cost_price = EXCLUDED.cost_price, wholesale_price = EXCLUDED.wholesale_price, price = EXCLUDED.price,
			stock_quantity = EXCLUDED.stock_quantity, updated_at = now()`
	_, err := r.q.Exec(ctx, query,
		item.ProductID, item.VariantID, item.SKU, item.Name, item.StoreID, item.CategoryID,
		item.CostPrice, item.WholesalePrice, item.Price, item.StockQuantity,
	)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}
	return nil
}

// SetStockQuantity reemplaza el contador agregado.
func (r *ItemRepo) SetStockQuantity(ctx context.Context, key entity.ItemKey, quantity decimal.Decimal) error {
	return r.exec(ctx, "set stock quantity", `
		UPDATE items SET stock_quantity = $3, updated_at = now()
		WHERE product_id = $1 AND variant_id = $2`, key, quantity)
}

// AdjustStockQuantity suma delta al contador agregado.
func (r *ItemRepo) AdjustStockQuantity(ctx context.Context, key entity.ItemKey, delta decimal.Decimal) error {
	return r.exec(ctx, "adjust stock quantity", `
		UPDATE items SET stock_quantity = stock_quantity + $3, updated_at = now()
		WHERE product_id = $1 AND variant_id = $2`, key, delta)
}

// UpdatePrices escribe costo, precio mayorista y al detal.
func (r *ItemRepo) UpdatePrices(ctx context.Context, key entity.ItemKey, cost, wholesale, retail decimal.Decimal) error {
	return r.exec(ctx, "update prices", `
		UPDATE items SET cost_price = $3, wholesale_price = $4, price = $5, updated_at = now()
		WHERE product_id = $1 AND variant_id = $2`, key, cost, wholesale, retail)
}

func (r *ItemRepo) exec(ctx context.Context, op, query string, key entity.ItemKey, args ...any) error {
	tag, err := r.q.Exec(ctx, query, append([]any{key.ProductID, key.VariantID}, args...)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: artículo %s", domain.ErrNotFound, key.String())
	}
	return nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(
		&it.ProductID, &it.VariantID, &it.SKU, &it.Name, &it.StoreID, &it.CategoryID,
		&it.CostPrice, &it.WholesalePrice, &it.Price, &it.StockQuantity, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
