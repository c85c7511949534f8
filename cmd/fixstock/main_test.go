package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/memory"
)

type fixture struct {
	store   *memory.Store
	catalog *inventory.CatalogUseCase
	ledger  *inventory.LedgerUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	deps := inventory.Deps{
		TxRunner: memory.NewTxRunner(store),
		Reads:    store.Repositories(),
		Now:      func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) },
	}
	f := &fixture{
		store:   store,
		catalog: inventory.NewCatalogUseCase(deps),
		ledger:  inventory.NewLedgerUseCase(deps),
	}
	ctx := context.Background()
	for _, id := range []string{"A", "B"} {
		_, err := f.catalog.RegisterItem(ctx, inventory.RegisterItemInput{ProductID: id, Name: "Artículo " + id, StoreID: "tienda-1"})
		require.NoError(t, err)
		_, err = f.ledger.AppendLayer(ctx, inventory.AppendLayerInput{
			ProductID:  id,
			Quantity:   decimal.NewFromInt(10),
			UnitCost:   decimal.NewFromInt(5),
			ReceivedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			SourceType: entity.LayerSourcePurchase,
		})
		require.NoError(t, err)
	}
	return f
}

// ── Revisión ────────────────────────────────────────────────────────────────

func TestRun_SinDiferencias(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer

	sum, err := run(context.Background(), f.catalog, f.ledger, options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, summary{checked: 2}, sum)
	assert.Empty(t, out.String())
}

func TestRun_ReportaSinCorregir(t *testing.T) {
	f := newFixture(t)
	key := entity.NewItemKey("B", "")
	require.NoError(t, f.store.Repositories().Items.SetStockQuantity(context.Background(), key, decimal.NewFromInt(7)))
	var out bytes.Buffer

	sum, err := run(context.Background(), f.catalog, f.ledger, options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, summary{checked: 2, drifted: 1}, sum)
	assert.Contains(t, out.String(), "B\tcontador=7\tcapas=10")
	assert.Equal(t, 1, sum.exitCode())

	_, err = f.ledger.CheckStockDrift(context.Background(), key)
	assert.Error(t, err, "sin -apply el contador sigue desalineado")
}

// ── Corrección ──────────────────────────────────────────────────────────────

func TestRun_ApplyCorrige(t *testing.T) {
	f := newFixture(t)
	key := entity.NewItemKey("A", "")
	require.NoError(t, f.store.Repositories().Items.SetStockQuantity(context.Background(), key, decimal.NewFromInt(3)))

	sum, err := run(context.Background(), f.catalog, f.ledger, options{apply: true}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, summary{checked: 2, drifted: 1, fixed: 1}, sum)
	assert.Equal(t, 0, sum.exitCode())

	rep, err := f.ledger.CheckStockDrift(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, rep.Cached.Equal(decimal.NewFromInt(10)))
}

func TestRun_FiltroPorProducto(t *testing.T) {
	f := newFixture(t)
	opts := options{filter: entity.ItemFilter{ProductID: "A"}}

	sum, err := run(context.Background(), f.catalog, f.ledger, opts, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.checked)
}
