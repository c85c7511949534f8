package repository

import (
	"context"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
)

// AverageCostRepository define el puerto del costo promedio ponderado móvil.
// Get y GetForUpdate devuelven (nil, nil) si el artículo no tiene promedio.
type AverageCostRepository interface {
	Get(ctx context.Context, key entity.ItemKey) (*entity.AverageCost, error)
	GetForUpdate(ctx context.Context, key entity.ItemKey) (*entity.AverageCost, error)
	Upsert(ctx context.Context, avg *entity.AverageCost) error
	Delete(ctx context.Context, key entity.ItemKey) error
}
