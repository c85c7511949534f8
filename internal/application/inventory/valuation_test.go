package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 10 @ 100 y 10 @ 200: promedio 150. Después de consumir 10 por FIFO queda la capa de 200,
// valor FIFO 2000; el promedio sigue en 150 y valoriza 1500.
func TestValuation_FIFOvsPromedioDivergen(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, item("p-1", ""))
	h.receive(t, "p-1", t0, "10", "100")
	h.receive(t, "p-1", t0.Add(time.Hour), "10", "200")

	wa, err := h.valuation.WeightedAverageValue(ctx, keyP1)
	require.NoError(t, err)
	assert.True(t, wa.UnitCost.Equal(d("150")))
	assert.True(t, wa.Value.Equal(d("3000")))

	_, err = h.ledger.ConsumeFIFO(ctx, inventory.ConsumeInput{ProductID: "p-1", Quantity: d("10")})
	require.NoError(t, err)

	fifo, err := h.valuation.FIFOValue(ctx, keyP1)
	require.NoError(t, err)
	assert.Equal(t, inventory.MethodFIFO, fifo.Method)
	assert.True(t, fifo.Quantity.Equal(d("10")))
	assert.True(t, fifo.Value.Equal(d("2000")), "FIFO: %s", fifo.Value)

	wa, err = h.valuation.WeightedAverageValue(ctx, keyP1)
	require.NoError(t, err)
	assert.True(t, wa.UnitCost.Equal(d("150")), "el consumo no recalcula el promedio")
	assert.True(t, wa.Value.Equal(d("1500")))
}

func TestComparisonReport_TotalesYCache(t *testing.T) {
	ctx := context.Background()
	cache := newCountingCache()
	other := item("p-2", "")
	other.StoreID = "tienda-2"
	h := newHarness(t, cache, item("p-1", ""), other)
	h.receive(t, "p-1", t0, "10", "100")
	h.receive(t, "p-1", t0.Add(time.Hour), "10", "200")
	h.receive(t, "p-2", t0, "5", "10")
	_, err := h.ledger.ConsumeFIFO(ctx, inventory.ConsumeInput{ProductID: "p-1", Quantity: d("10")})
	require.NoError(t, err)

	rep, err := h.valuation.ComparisonReport(ctx, inventory.ReportScope{})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)
	assert.Equal(t, "p-1", rep.Rows[0].ProductID)
	assert.True(t, rep.Rows[0].Difference.Equal(d("500")))
	assert.True(t, rep.TotalFIFOValue.Equal(d("2050")))
	assert.True(t, rep.TotalWeightedAverageValue.Equal(d("1550")))
	assert.True(t, rep.TotalQuantity.Equal(d("15")))

	_, err = h.valuation.ComparisonReport(ctx, inventory.ReportScope{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	// una escritura invalida el cache
	h.receive(t, "p-2", t0.Add(time.Hour), "1", "10")
	rep, err = h.valuation.ComparisonReport(ctx, inventory.ReportScope{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.True(t, rep.TotalQuantity.Equal(d("16")))

	scoped, err := h.valuation.ComparisonReport(ctx, inventory.ReportScope{StoreID: "tienda-2"})
	require.NoError(t, err)
	require.Len(t, scoped.Rows, 1)
	assert.Equal(t, "p-2", scoped.Rows[0].ProductID)
}

func TestValuation_ArticuloSinCapas(t *testing.T) {
	h := newHarness(t, nil, item("p-1", ""))
	fifo, err := h.valuation.FIFOValue(context.Background(), keyP1)
	require.NoError(t, err)
	assert.True(t, fifo.Value.IsZero())
	assert.True(t, fifo.UnitCost.IsZero())
}

// Una recepción que se confirma mientras el reporte se calcula deja obsoleto lo calculado:
// la siguiente consulta recalcula en vez de servir el reporte viejo.
func TestComparisonReport_EscrituraDuranteElCalculoNoQuedaEnCache(t *testing.T) {
	ctx := context.Background()
	cache := newCountingCache()
	h := newHarness(t, cache, item("p-1", ""))
	h.receive(t, "p-1", t0, "10", "10")

	cache.beforeSet = func() { h.receive(t, "p-1", t0.Add(time.Hour), "5", "10") }
	stale, err := h.valuation.ComparisonReport(ctx, inventory.ReportScope{})
	require.NoError(t, err)
	assert.True(t, stale.TotalQuantity.Equal(d("10")))

	fresh, err := h.valuation.ComparisonReport(ctx, inventory.ReportScope{})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.hits)
	assert.True(t, fresh.TotalQuantity.Equal(d("15")))
	assert.True(t, fresh.TotalFIFOValue.Equal(d("150")))
}
