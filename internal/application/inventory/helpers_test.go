package inventory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

// harness motor completo sobre el store en memoria con reloj fijo.
type harness struct {
	store     *memory.Store
	deps      inventory.Deps
	ledger    *inventory.LedgerUseCase
	allocator *inventory.AllocatorUseCase
	valuation *inventory.ValuationUseCase
	aging     *inventory.AgingUseCase
	convert   *inventory.ConvertUseCase
	catalog   *inventory.CatalogUseCase
}

func newHarness(t *testing.T, cache inventory.ReportCache, items ...*entity.Item) *harness {
	t.Helper()
	store := memory.NewStore()
	for _, it := range items {
		require.NoError(t, store.Repositories().Items.Upsert(context.Background(), it))
	}
	deps := inventory.Deps{
		TxRunner:     memory.NewTxRunner(store),
		Reads:        store.Repositories(),
		Cache:        cache,
		HomeCurrency: "COP",
		Now:          func() time.Time { return t0 },
	}
	return &harness{
		store:     store,
		deps:      deps,
		ledger:    inventory.NewLedgerUseCase(deps),
		allocator: inventory.NewAllocatorUseCase(deps),
		valuation: inventory.NewValuationUseCase(deps),
		aging:     inventory.NewAgingUseCase(deps),
		convert:   inventory.NewConvertUseCase(deps),
		catalog:   inventory.NewCatalogUseCase(deps),
	}
}

func item(productID, variantID string) *entity.Item {
	return &entity.Item{
		ProductID:     productID,
		VariantID:     variantID,
		SKU:           "SKU-" + productID,
		Name:          "Artículo " + productID,
		StoreID:       "tienda-1",
		CategoryID:    "cat-1",
		StockQuantity: decimal.Zero,
	}
}

func (h *harness) receive(t *testing.T, productID string, at time.Time, qty, cost string) *entity.InventoryLayer {
	t.Helper()
	l, err := h.ledger.AppendLayer(context.Background(), inventory.AppendLayerInput{
		ProductID:  productID,
		Quantity:   d(qty),
		UnitCost:   d(cost),
		ReceivedAt: at,
		SourceType: entity.LayerSourcePurchase,
	})
	require.NoError(t, err)
	return l
}

func (h *harness) counter(t *testing.T, key entity.ItemKey) decimal.Decimal {
	t.Helper()
	it, err := h.store.Repositories().Items.Get(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it.StockQuantity
}

// countingCache cache en memoria por generación que cuenta aciertos e invalidaciones.
// beforeSet, si está, corre justo antes de guardar (escritura concurrente al cálculo).
type countingCache struct {
	gen           inventory.ReportVersion
	reports       map[string]*inventory.ComparisonReport
	hits          int
	invalidations int
	beforeSet     func()
}

func newCountingCache() *countingCache {
	return &countingCache{reports: map[string]*inventory.ComparisonReport{}}
}

func cacheSlot(v inventory.ReportVersion, scope string) string {
	return fmt.Sprintf("%d:%s", v, scope)
}

func (c *countingCache) GetComparison(_ context.Context, scope string) (*inventory.ComparisonReport, inventory.ReportVersion, error) {
	r, ok := c.reports[cacheSlot(c.gen, scope)]
	if ok {
		c.hits++
	}
	return r, c.gen, nil
}

func (c *countingCache) SetComparison(_ context.Context, scope string, v inventory.ReportVersion, r *inventory.ComparisonReport) error {
	if c.beforeSet != nil {
		fn := c.beforeSet
		c.beforeSet = nil
		fn()
	}
	c.reports[cacheSlot(v, scope)] = r
	return nil
}

func (c *countingCache) Invalidate(context.Context) error {
	c.invalidations++
	c.gen++
	return nil
}
