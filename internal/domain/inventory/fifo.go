package inventory

import (
	"sort"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SortFIFO ordena las capas por ReceivedAt ascendente y, en empate, por orden de inserción.
func SortFIFO(layers []*entity.InventoryLayer) {
	sort.SliceStable(layers, func(i, j int) bool {
		return layers[i].Before(layers[j])
	})
}

// Available suma QuantityRemaining de las capas.
func Available(layers []*entity.InventoryLayer) decimal.Decimal {
	total := decimal.Zero
	for _, l := range layers {
		total = total.Add(l.QuantityRemaining)
	}
	return total
}

// PlanFIFO calcula qué tomar de cada capa para cubrir quantity, sin modificar las capas.
// Retorna domain.ErrInsufficientStock si las existencias no alcanzan; en ese caso no hay plan parcial.
func PlanFIFO(layers []*entity.InventoryLayer, quantity decimal.Decimal) ([]entity.LayerConsumption, error) {
	if !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	ordered := make([]*entity.InventoryLayer, 0, len(layers))
	for _, l := range layers {
		if l.QuantityRemaining.GreaterThan(decimal.Zero) {
			ordered = append(ordered, l)
		}
	}
	if Available(ordered).LessThan(quantity) {
		return nil, domain.ErrInsufficientStock
	}
	SortFIFO(ordered)

	pending := quantity
	plan := make([]entity.LayerConsumption, 0, 2)
	for _, l := range ordered {
		if !pending.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(pending, l.QuantityRemaining)
		plan = append(plan, entity.LayerConsumption{
			LayerID:       l.ID,
			QuantityTaken: take,
			UnitCost:      l.UnitCost,
		})
		pending = pending.Sub(take)
	}
	return plan, nil
}

// TotalCost suma QuantityTaken * UnitCost (costo de ventas exacto del consumo).
func TotalCost(plan []entity.LayerConsumption) decimal.Decimal {
	total := decimal.Zero
	for _, c := range plan {
		total = total.Add(c.Cost())
	}
	return total
}

// FIFOValue devuelve cantidad y valor exacto de las capas con existencias.
func FIFOValue(layers []*entity.InventoryLayer) (quantity, value decimal.Decimal) {
	quantity, value = decimal.Zero, decimal.Zero
	for _, l := range layers {
		if !l.QuantityRemaining.GreaterThan(decimal.Zero) {
			continue
		}
		quantity = quantity.Add(l.QuantityRemaining)
		value = value.Add(l.RemainingValue())
	}
	return quantity, value
}
