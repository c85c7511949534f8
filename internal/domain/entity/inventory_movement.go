package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de capas.
const (
	MovementTypeIN            = "IN"             // recepción (capa nueva)
	MovementTypeOUT           = "OUT"            // consumo FIFO (venta)
	MovementTypeProductionIN  = "PRODUCTION_IN"  // capa de salida de producción
	MovementTypeProductionOUT = "PRODUCTION_OUT" // consumo del insumo de producción
	MovementTypeMerge         = "MERGE"          // traspaso de capas por fusión de artículos
	MovementTypeResync        = "RESYNC"         // resincronización auditada del contador
)

// InventoryMovement registro de auditoría de cada operación del libro.
// Quantity es positiva en entradas y negativa en salidas; en MERGE y RESYNC registra la cantidad afectada.
type InventoryMovement struct {
	ID            string
	TransactionID string
	ProductID     string
	VariantID     string
	LayerID       string
	Type          string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	Reference     string
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
}
