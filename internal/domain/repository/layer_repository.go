package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LayerRepository define el puerto de persistencia del libro de capas.
// Las capas nunca se borran; solo decrece QuantityRemaining o cambia de dueño en una fusión.
type LayerRepository interface {
	// Create inserta la capa y le asigna Seq.
	Create(ctx context.Context, layer *entity.InventoryLayer) error
	GetByID(ctx context.Context, id string) (*entity.InventoryLayer, error)
	// ListRemainingForUpdate devuelve las capas con existencias en orden FIFO y las bloquea
	// hasta el fin de la transacción (SELECT ... FOR UPDATE).
	ListRemainingForUpdate(ctx context.Context, key entity.ItemKey) ([]*entity.InventoryLayer, error)
	// ListRemaining devuelve las capas con existencias en orden FIFO; asOf excluye las recibidas después.
	ListRemaining(ctx context.Context, key entity.ItemKey, asOf *time.Time) ([]*entity.InventoryLayer, error)
	// ListAllRemaining igual que ListRemaining pero para todos los artículos.
	ListAllRemaining(ctx context.Context, asOf *time.Time) ([]*entity.InventoryLayer, error)
	// DecrementRemaining resta quantity de la capa. Nunca deja el saldo negativo.
	DecrementRemaining(ctx context.Context, layerID string, quantity decimal.Decimal) error
	// Reassign mueve todas las capas de from a to y devuelve cuántas movió.
	Reassign(ctx context.Context, from, to entity.ItemKey) (int64, error)
	SumRemaining(ctx context.Context, key entity.ItemKey) (decimal.Decimal, error)
}
