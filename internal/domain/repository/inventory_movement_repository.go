package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error)
	ListByItem(ctx context.Context, key entity.ItemKey, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
}
