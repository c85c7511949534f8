package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-costeo/internal/application/dto"
	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/metrics"
	"github.com/jhoicas/Inventario-costeo/internal/infrastructure/report"
	apphttp "github.com/jhoicas/Inventario-costeo/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var clock = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

// buildCostingApp arma el API completo sobre el store en memoria.
func buildCostingApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	deps := inventory.Deps{
		TxRunner:     memory.NewTxRunner(store),
		Reads:        store.Repositories(),
		HomeCurrency: "COP",
		Now:          func() time.Time { return clock },
	}
	return apphttp.NewApp(apphttp.ServerConfig{
		AppName: "costeo-test",
		Metrics: metrics.New(nil),
	}, apphttp.RouterDeps{
		Ledger:    inventory.NewLedgerUseCase(deps),
		Allocator: inventory.NewAllocatorUseCase(deps),
		Convert:   inventory.NewConvertUseCase(deps),
		Catalog:   inventory.NewCatalogUseCase(deps),
		Valuation: inventory.NewValuationUseCase(deps),
		Aging:     inventory.NewAgingUseCase(deps),
		XLSX:      report.NewXLSXExporter(),
		JWTSecret: testJWTSecret,
	})
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func registerItem(t *testing.T, app *fiber.App, productID string) {
	t.Helper()
	resp := call(t, app, http.MethodPut, "/api/costing/items", "admin", fiber.Map{
		"product_id": productID, "sku": "SKU-" + productID, "name": "Artículo " + productID, "store_id": testStoreID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func appendLayer(t *testing.T, app *fiber.App, productID, qty, cost string, at time.Time) {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/costing/layers", "bodeguero", fiber.Map{
		"product_id": productID, "quantity": qty, "unit_cost": cost, "received_at": at, "source_type": "PURCHASE",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro de capas
// ──────────────────────────────────────────────────────────────────────────────

func TestConsume_TomaLasCapasMasAntiguas(t *testing.T) {
	app := buildCostingApp(t)
	registerItem(t, app, "P1")
	appendLayer(t, app, "P1", "10", "10", clock.Add(-72*time.Hour))
	appendLayer(t, app, "P1", "10", "12", clock.Add(-48*time.Hour))
	appendLayer(t, app, "P1", "10", "15", clock.Add(-24*time.Hour))

	resp := call(t, app, http.MethodPost, "/api/costing/consumptions", "bodeguero", fiber.Map{
		"product_id": "P1", "quantity": "15", "reference": "venta-1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res := decode[dto.ConsumptionResponse](t, resp)
	assert.Equal(t, "160", res.TotalCost.String())
	require.Len(t, res.Consumptions, 2)
	assert.Equal(t, "10", res.Consumptions[0].QuantityTaken.String())
	assert.Equal(t, "5", res.Consumptions[1].QuantityTaken.String())

	resp = call(t, app, http.MethodGet, "/api/costing/items/P1/layers", "auditor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	layers := decode[[]dto.LayerResponse](t, resp)
	require.Len(t, layers, 2)
	assert.Equal(t, "5", layers[0].QuantityRemaining.String())
}

func TestConsume_StockInsuficiente409(t *testing.T) {
	app := buildCostingApp(t)
	registerItem(t, app, "P1")
	appendLayer(t, app, "P1", "5", "10", clock.Add(-time.Hour))

	resp := call(t, app, http.MethodPost, "/api/costing/consumptions", "bodeguero", fiber.Map{
		"product_id": "P1", "quantity": "6",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)

	resp = call(t, app, http.MethodGet, "/api/costing/items/P1/layers", "auditor", nil)
	layers := decode[[]dto.LayerResponse](t, resp)
	require.Len(t, layers, 1)
	assert.Equal(t, "5", layers[0].QuantityRemaining.String())
}

func TestAppendLayer_CantidadCeroEsValidacion(t *testing.T) {
	app := buildCostingApp(t)
	registerItem(t, app, "P1")

	resp := call(t, app, http.MethodPost, "/api/costing/layers", "bodeguero", fiber.Map{
		"product_id": "P1", "quantity": "0", "unit_cost": "10",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAppendLayer_ArticuloInexistente404(t *testing.T) {
	app := buildCostingApp(t)
	resp := call(t, app, http.MethodPost, "/api/costing/layers", "admin", fiber.Map{
		"product_id": "NO", "quantity": "1", "unit_cost": "10",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAppendLayer_AuditorNoEscribe(t *testing.T) {
	app := buildCostingApp(t)
	resp := call(t, app, http.MethodPost, "/api/costing/layers", "auditor", fiber.Map{
		"product_id": "P1", "quantity": "1", "unit_cost": "10",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

// Después de una fusión el contador del destino queda desalineado hasta resincronizar.
func TestMerge_DriftYResync(t *testing.T) {
	app := buildCostingApp(t)
	registerItem(t, app, "A")
	registerItem(t, app, "B")
	appendLayer(t, app, "A", "10", "10", clock.Add(-time.Hour))

	resp := call(t, app, http.MethodPost, "/api/costing/merges", "admin", fiber.Map{
		"from_product_id": "A", "to_product_id": "B",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), decode[dto.MergeResponse](t, resp).LayersMoved)

	resp = call(t, app, http.MethodGet, "/api/costing/items/B/stock", "auditor", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var drift struct {
		Code    string            `json:"code"`
		Details dto.StockResponse `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&drift))
	resp.Body.Close()
	assert.Equal(t, "STOCK_DRIFT", drift.Code)
	assert.Equal(t, "0", drift.Details.Cached.String())
	assert.Equal(t, "10", drift.Details.Actual.String())

	resp = call(t, app, http.MethodPost, "/api/costing/items/B/stock/resync", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.StockResponse](t, resp).Drift)

	resp = call(t, app, http.MethodGet, "/api/costing/items/B/stock", "auditor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[dto.StockResponse](t, resp).Drift)
}

// ──────────────────────────────────────────────────────────────────────────────
// Embarques
// ──────────────────────────────────────────────────────────────────────────────

func shipmentBody() fiber.Map {
	return fiber.Map{
		"receipt_id": "rec-001",
		"lines": []fiber.Map{{
			"product_id": "P1", "cartons": "10", "total_pieces": "1000", "total_weight": "500",
			"price_per_carton": "50", "price_currency": "USD",
		}},
		"charges":              []fiber.Map{{"type": "freight", "amount": "200", "currency": "USD"}},
		"exchange_rate":        "600",
		"wholesale_margin_pct": "20",
		"retail_margin_pct":    "50",
	}
}

func TestAllocateReceipt_CostoEnDestinoYPrecios(t *testing.T) {
	app := buildCostingApp(t)
	registerItem(t, app, "P1")

	resp := call(t, app, http.MethodPost, "/api/costing/receipts/allocate", "bodeguero", shipmentBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res := decode[dto.AllocationResponse](t, resp)
	require.Len(t, res.Results, 1)
	r := res.Results[0]
	assert.Equal(t, "420", r.LandedCostPerUnit.String())
	assert.Equal(t, "504", r.WholesalePrice.String())
	assert.Equal(t, "630", r.RetailPrice.String())
	assert.NotEmpty(t, r.LayerID)

	// bodeguero no aplica precios
	prices := fiber.Map{"proposals": []fiber.Map{{
		"product_id": "P1", "cost_price": r.LandedCostPerUnit, "wholesale_price": r.WholesalePrice, "retail_price": r.RetailPrice,
	}}}
	resp = call(t, app, http.MethodPost, "/api/costing/prices/apply", "bodeguero", prices)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/costing/prices/apply", "admin", prices)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/costing/items/P1", "auditor", nil)
	it := decode[dto.ItemResponse](t, resp)
	assert.Equal(t, "630", it.Price.String())
	assert.Equal(t, "1000", it.StockQuantity.String())
}

func TestPreviewReceipt_NoEscribe(t *testing.T) {
	app := buildCostingApp(t)
	registerItem(t, app, "P1")

	resp := call(t, app, http.MethodPost, "/api/costing/receipts/preview", "bodeguero", shipmentBody())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[dto.AllocationResponse](t, resp)
	assert.Empty(t, res.Results[0].LayerID)

	resp = call(t, app, http.MethodGet, "/api/costing/items/P1/layers", "auditor", nil)
	assert.Empty(t, decode[[]dto.LayerResponse](t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestItemValuation_FIFOvsPromedio(t *testing.T) {
	app := buildCostingApp(t)
	registerItem(t, app, "P1")
	appendLayer(t, app, "P1", "10", "100", clock.Add(-48*time.Hour))
	appendLayer(t, app, "P1", "10", "200", clock.Add(-24*time.Hour))
	resp := call(t, app, http.MethodPost, "/api/costing/consumptions", "bodeguero", fiber.Map{"product_id": "P1", "quantity": "10"})
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/costing/items/P1/valuation", "auditor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decode[dto.ItemValuationResponse](t, resp)
	assert.Equal(t, "2000", v.FIFOValue.String())
	assert.Equal(t, "150", v.AverageUnitCost.String())
	assert.Equal(t, "1500", v.WeightedAverageValue.String())
	assert.Equal(t, "500", v.Difference.String())
}

func TestComparison_Formatos(t *testing.T) {
	app := buildCostingApp(t)
	registerItem(t, app, "P1")
	appendLayer(t, app, "P1", "10", "10", clock.Add(-time.Hour))

	resp := call(t, app, http.MethodGet, "/api/costing/valuation/comparison", "auditor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decode[inventory.ComparisonReport](t, resp)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "100", rep.TotalFIFOValue.String())

	resp = call(t, app, http.MethodGet, "/api/costing/valuation/comparison?format=xlsx", "auditor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	resp.Body.Close()

	// sin generador PDF configurado
	resp = call(t, app, http.MethodGet, "/api/costing/valuation/comparison?format=pdf", "auditor", nil)
	assert.Equal(t, http.StatusNotAcceptable, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/costing/valuation/comparison?format=csv", "auditor", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// El token está atado a testStoreID; pedir otra tienda es 403.
func TestComparison_TiendaFueraDelToken(t *testing.T) {
	app := buildCostingApp(t)
	resp := call(t, app, http.MethodGet, "/api/costing/valuation/comparison?store_id=otra", "admin", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestAging_LimiteDe180Dias(t *testing.T) {
	app := buildCostingApp(t)
	registerItem(t, app, "P1")
	asOf := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	appendLayer(t, app, "P1", "1", "10", asOf.AddDate(0, 0, -180))
	appendLayer(t, app, "P1", "1", "10", asOf.AddDate(0, 0, -179))

	resp := call(t, app, http.MethodGet, "/api/costing/aging?as_of=2026-09-01T00:00:00Z", "auditor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decode[inventory.AgingReport](t, resp)
	require.Len(t, rep.Rows, 2)
	assert.Equal(t, "critical", string(rep.Rows[0].Risk))
	assert.Equal(t, "high", string(rep.Rows[1].Risk))

	resp = call(t, app, http.MethodGet, "/api/costing/aging?as_of=ayer", "auditor", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Infraestructura
// ──────────────────────────────────────────────────────────────────────────────

func TestHealthYMetrics(t *testing.T) {
	app := buildCostingApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(raw), "costing_http_requests_total")
}

