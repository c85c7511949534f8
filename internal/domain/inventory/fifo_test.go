package inventory_test

import (
	"testing"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layer(id string, seq int64, at time.Time, qty, cost string) *entity.InventoryLayer {
	return &entity.InventoryLayer{
		ID:                id,
		Seq:               seq,
		ProductID:         "p-1",
		QuantityReceived:  d(qty),
		QuantityRemaining: d(qty),
		UnitCost:          d(cost),
		ReceivedAt:        at,
	}
}

// Capas T1 < T2 < T3 de 10 unidades: consumir 15 toma 10 de L1 y 5 de L2.
func TestPlanFIFO_OrdenPorFechaDeRecepcion(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	layers := []*entity.InventoryLayer{
		layer("L3", 3, t0.Add(48*time.Hour), "10", "30"),
		layer("L1", 1, t0, "10", "10"),
		layer("L2", 2, t0.Add(24*time.Hour), "10", "20"),
	}

	plan, err := inventory.PlanFIFO(layers, d("15"))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "L1", plan[0].LayerID)
	assert.True(t, plan[0].QuantityTaken.Equal(d("10")))
	assert.True(t, plan[0].UnitCost.Equal(d("10")))
	assert.Equal(t, "L2", plan[1].LayerID)
	assert.True(t, plan[1].QuantityTaken.Equal(d("5")))
	assert.True(t, inventory.TotalCost(plan).Equal(d("200")))

	// El plan no modifica las capas.
	for _, l := range layers {
		assert.True(t, l.QuantityRemaining.Equal(d("10")))
	}
}

// Misma fecha de recepción: desempata el orden de inserción.
func TestPlanFIFO_EmpateDesempataPorInsercion(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	layers := []*entity.InventoryLayer{
		layer("B", 8, at, "5", "2"),
		layer("A", 7, at, "5", "1"),
	}
	plan, err := inventory.PlanFIFO(layers, d("6"))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "A", plan[0].LayerID)
	assert.Equal(t, "B", plan[1].LayerID)
	assert.True(t, plan[1].QuantityTaken.Equal(d("1")))
}

func TestPlanFIFO_IgnoraCapasAgotadas(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	empty := layer("L0", 0, t0.Add(-time.Hour), "10", "1")
	empty.QuantityRemaining = d("0")
	layers := []*entity.InventoryLayer{empty, layer("L1", 1, t0, "4", "3")}

	plan, err := inventory.PlanFIFO(layers, d("4"))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "L1", plan[0].LayerID)
}

func TestPlanFIFO_StockInsuficiente(t *testing.T) {
	t0 := time.Now()
	layers := []*entity.InventoryLayer{layer("L1", 1, t0, "3", "1"), layer("L2", 2, t0, "3", "1")}
	plan, err := inventory.PlanFIFO(layers, d("6.5"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, plan)
}

func TestPlanFIFO_CantidadNoPositiva(t *testing.T) {
	_, err := inventory.PlanFIFO(nil, d("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestFIFOValue(t *testing.T) {
	t0 := time.Now()
	l2 := layer("L2", 2, t0, "10", "200")
	l2.QuantityRemaining = d("4")
	qty, value := inventory.FIFOValue([]*entity.InventoryLayer{layer("L1", 1, t0, "10", "100"), l2})
	assert.True(t, qty.Equal(d("14")))
	assert.True(t, value.Equal(d("1800")))
}
