package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origen de una capa de inventario.
const (
	LayerSourcePurchase   = "PURCHASE"   // recepción de compra (asignador de costo en destino)
	LayerSourceProduction = "PRODUCTION" // salida de una conversión de producción
	LayerSourceOpening    = "OPENING"    // saldo inicial o entrada manual
)

// InventoryLayer es una recepción inmutable de stock a un costo unitario conocido.
// QuantityReceived y UnitCost no cambian después de creada; QuantityRemaining solo decrece.
// Las capas en cero se conservan para auditoría.
type InventoryLayer struct {
	ID                string
	Seq               int64 // orden de inserción, desempata ReceivedAt
	ProductID         string
	VariantID         string
	QuantityReceived  decimal.Decimal
	QuantityRemaining decimal.Decimal
	UnitCost          decimal.Decimal // costo unitario en moneda local
	ReceivedAt        time.Time
	SourceType        string
	SourceReference   string
	CreatedAt         time.Time
}

// Key devuelve la llave del artículo dueño de la capa.
func (l *InventoryLayer) Key() ItemKey {
	return ItemKey{ProductID: l.ProductID, VariantID: l.VariantID}
}

// RemainingValue devuelve QuantityRemaining * UnitCost.
func (l *InventoryLayer) RemainingValue() decimal.Decimal {
	return l.QuantityRemaining.Mul(l.UnitCost)
}

// IsDepleted indica si la capa ya no tiene existencias.
func (l *InventoryLayer) IsDepleted() bool {
	return !l.QuantityRemaining.GreaterThan(decimal.Zero)
}

// Before ordena capas FIFO: ReceivedAt ascendente, luego Seq.
func (l *InventoryLayer) Before(o *InventoryLayer) bool {
	if !l.ReceivedAt.Equal(o.ReceivedAt) {
		return l.ReceivedAt.Before(o.ReceivedAt)
	}
	return l.Seq < o.Seq
}

// LayerConsumption es lo tomado de una capa en un consumo FIFO.
type LayerConsumption struct {
	LayerID       string          `json:"layer_id"`
	QuantityTaken decimal.Decimal `json:"quantity_taken"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
}

// Cost devuelve QuantityTaken * UnitCost.
func (c LayerConsumption) Cost() decimal.Decimal {
	return c.QuantityTaken.Mul(c.UnitCost)
}
