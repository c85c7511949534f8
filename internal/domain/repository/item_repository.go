package repository

import (
	"context"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ItemRepository define el puerto hacia el registro de productos y variantes.
type ItemRepository interface {
	// Get devuelve (nil, nil) si el artículo no existe.
	Get(ctx context.Context, key entity.ItemKey) (*entity.Item, error)
	List(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error)
	Upsert(ctx context.Context, item *entity.Item) error
	// SetStockQuantity reemplaza el contador agregado.
	SetStockQuantity(ctx context.Context, key entity.ItemKey, quantity decimal.Decimal) error
	// AdjustStockQuantity suma delta (negativo en salidas) al contador agregado.
	AdjustStockQuantity(ctx context.Context, key entity.ItemKey, delta decimal.Decimal) error
	UpdatePrices(ctx context.Context, key entity.ItemKey, cost, wholesale, retail decimal.Decimal) error
}
