package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	domaininv "github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_TramosYResumen(t *testing.T) {
	ctx := context.Background()
	other := item("p-2", "")
	other.CategoryID = "cat-2"
	h := newHarness(t, nil, item("p-1", ""), other)

	asOf := t0.AddDate(0, 0, 200)
	h.receive(t, "p-1", asOf.AddDate(0, 0, -200), "2", "10") // 200 días
	h.receive(t, "p-1", asOf.AddDate(0, 0, -180), "3", "10") // justo 180
	h.receive(t, "p-1", asOf.AddDate(0, 0, -95), "4", "10")
	h.receive(t, "p-2", asOf.AddDate(0, 0, -10), "5", "10")
	h.receive(t, "p-2", asOf.AddDate(0, 0, 5), "9", "10") // posterior al corte

	rep, err := h.aging.Classify(ctx, asOf, entity.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 4)
	assert.Equal(t, 200, rep.Rows[0].AgeDays)
	assert.Equal(t, domaininv.Bucket180Plus, rep.Rows[0].Bucket)
	assert.Equal(t, domaininv.RiskCritical, rep.Rows[1].Risk)
	assert.Equal(t, domaininv.Bucket90To180, rep.Rows[2].Bucket)
	assert.Equal(t, domaininv.RiskLow, rep.Rows[3].Risk)

	require.Len(t, rep.Summary, len(domaininv.Buckets))
	byBucket := map[domaininv.AgingBucket]inventory.AgingSummary{}
	for _, s := range rep.Summary {
		byBucket[s.Bucket] = s
	}
	assert.Equal(t, 2, byBucket[domaininv.Bucket180Plus].Layers)
	assert.True(t, byBucket[domaininv.Bucket180Plus].Value.Equal(d("50")))
	assert.Equal(t, 0, byBucket[domaininv.Bucket30To60].Layers)
	assert.Equal(t, domaininv.RiskLow, byBucket[domaininv.Bucket30To60].Risk)
	assert.Equal(t, domaininv.RiskMedium, byBucket[domaininv.Bucket60To90].Risk)
	assert.True(t, rep.TotalValue.Equal(d("140")))

	filtered, err := h.aging.Classify(ctx, asOf, entity.ItemFilter{CategoryID: "cat-2"})
	require.NoError(t, err)
	require.Len(t, filtered.Rows, 1)
	assert.Equal(t, "p-2", filtered.Rows[0].ProductID)
}

func TestClassifyLayers_OmiteCapasAgotadas(t *testing.T) {
	asOf := t0.Add(40 * 24 * time.Hour)
	layers := []*entity.InventoryLayer{
		{ID: "L1", ProductID: "p-1", QuantityReceived: d("5"), QuantityRemaining: d("0"), UnitCost: d("1"), ReceivedAt: t0},
		{ID: "L2", ProductID: "p-1", QuantityReceived: d("5"), QuantityRemaining: d("2"), UnitCost: d("3"), ReceivedAt: t0},
	}
	rep := inventory.ClassifyLayers(layers, asOf)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "L2", rep.Rows[0].LayerID)
	assert.Equal(t, domaininv.Bucket30To60, rep.Rows[0].Bucket)
	assert.True(t, rep.Rows[0].Value.Equal(d("6")))
}
