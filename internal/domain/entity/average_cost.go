package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AverageCost es el costo promedio ponderado móvil de un artículo.
// Se actualiza en cada recepción y no se recalcula al consumir.
type AverageCost struct {
	ProductID string
	VariantID string
	Quantity  decimal.Decimal // existencias consideradas en la última mezcla (incluye la recepción)
	UnitCost  decimal.Decimal
	UpdatedAt time.Time
}

// Key devuelve la llave del artículo.
func (a *AverageCost) Key() ItemKey {
	return ItemKey{ProductID: a.ProductID, VariantID: a.VariantID}
}
