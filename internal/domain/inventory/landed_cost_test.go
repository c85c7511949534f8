package inventory_test

import (
	"testing"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Vector de prueba del costeo en destino:
//
//	10 cajas, 1000 piezas, 50 USD/caja, 500 kg; flete 200 USD; tasa 600.
//	cargos = 120000, cargo/kg = 240, base/unidad = 300, kg/caja = 50,
//	cargo/caja = 12000, piezas/caja = 100, cargo/unidad = 120, costo = 420.
//	Mayorista 20% -> 504; detal 50% -> 630.
// ──────────────────────────────────────────────────────────────────────────────

func vectorInput() inventory.LandedCostInput {
	return inventory.LandedCostInput{
		Lines: []entity.PurchaseReceiptLine{{
			ProductID:      "p-1",
			Cartons:        d("10"),
			TotalPieces:    d("1000"),
			TotalWeight:    d("500"),
			PricePerCarton: d("50"),
			PriceCurrency:  "USD",
		}},
		Charges: []entity.Charge{
			{Type: entity.ChargeFreight, Description: "flete marítimo", Amount: d("200"), Currency: "USD"},
		},
		ExchangeRate:       d("600"),
		WholesaleMarginPct: d("20"),
		RetailMarginPct:    d("50"),
		HomeCurrency:       "COP",
	}
}

func TestAllocateLandedCost_VectorExacto(t *testing.T) {
	alloc, err := inventory.AllocateLandedCost(vectorInput())
	require.NoError(t, err)
	require.Len(t, alloc.Results, 1)

	assert.True(t, alloc.TotalCharges.Equal(d("120000")), "total cargos: %s", alloc.TotalCharges)
	assert.True(t, alloc.ChargesPerWeightUnit.Equal(d("240")), "cargo por kg: %s", alloc.ChargesPerWeightUnit)
	assert.False(t, alloc.ChargesNotDistributed)

	r := alloc.Results[0]
	assert.True(t, r.BaseCostPerUnit.Equal(d("300")), "base: %s", r.BaseCostPerUnit)
	assert.True(t, r.WeightPerCarton.Equal(d("50")))
	assert.True(t, r.ChargePerCarton.Equal(d("12000")))
	assert.True(t, r.PiecesPerCarton.Equal(d("100")))
	assert.True(t, r.ChargePerUnit.Equal(d("120")))
	assert.True(t, r.LandedCostPerUnit.Equal(d("420")), "costo en destino: %s", r.LandedCostPerUnit)
	assert.True(t, r.WholesalePrice.Equal(d("504")), "mayorista: %s", r.WholesalePrice)
	assert.True(t, r.RetailPrice.Equal(d("630")), "detal: %s", r.RetailPrice)
	assert.True(t, r.TotalLandedCost.Equal(d("420000")))
}

// Dos líneas comparten el flete en proporción a su peso.
func TestAllocateLandedCost_ProrrateoPorPeso(t *testing.T) {
	in := vectorInput()
	in.Lines = append(in.Lines, entity.PurchaseReceiptLine{
		ProductID:      "p-2",
		Cartons:        d("5"),
		TotalPieces:    d("100"),
		TotalWeight:    d("100"),
		PricePerCarton: d("20"),
		PriceCurrency:  "USD",
	})

	alloc, err := inventory.AllocateLandedCost(in)
	require.NoError(t, err)
	require.Len(t, alloc.Results, 2)

	// 120000 / 600 kg = 200 por kg
	assert.True(t, alloc.ChargesPerWeightUnit.Equal(d("200")))

	// Los cargos asignados suman el total del embarque.
	assigned := decimal.Zero
	for _, r := range alloc.Results {
		assigned = assigned.Add(r.ChargePerUnit.Mul(r.TotalPieces))
	}
	assert.True(t, assigned.Equal(alloc.TotalCharges), "asignado %s, total %s", assigned, alloc.TotalCharges)

	// p-2: 20 kg/caja * 200 = 4000 por caja, 20 piezas/caja -> 200 por unidad; base (5*20/100)*600 = 600
	assert.True(t, alloc.Results[1].ChargePerUnit.Equal(d("200")))
	assert.True(t, alloc.Results[1].LandedCostPerUnit.Equal(d("800")))
}

// Peso cero: los cargos no se distribuyen y el resultado lo marca.
func TestAllocateLandedCost_PesoCeroMarcaCargosSinDistribuir(t *testing.T) {
	in := vectorInput()
	in.Lines[0].TotalWeight = decimal.Zero

	alloc, err := inventory.AllocateLandedCost(in)
	require.NoError(t, err)
	assert.True(t, alloc.ChargesNotDistributed)
	assert.True(t, alloc.ChargesPerWeightUnit.IsZero())
	assert.True(t, alloc.Results[0].ChargePerUnit.IsZero())
	assert.True(t, alloc.Results[0].LandedCostPerUnit.Equal(d("300")))
}

func TestAllocateLandedCost_MonedaLocalNoSeConvierte(t *testing.T) {
	in := vectorInput()
	in.Lines[0].PriceCurrency = "COP"
	in.Charges[0].Currency = "cop"

	alloc, err := inventory.AllocateLandedCost(in)
	require.NoError(t, err)
	// base = 10*50/1000 = 0.5; cargo = 200/500 * 50 / 100 = 0.2
	assert.True(t, alloc.TotalCharges.Equal(d("200")))
	assert.True(t, alloc.Results[0].LandedCostPerUnit.Equal(d("0.7")), "costo: %s", alloc.Results[0].LandedCostPerUnit)
}

// Sin moneda declarada el precio y los cargos se convierten: una cotización en dólares
// que omite la moneda no puede quedar costeada a 1:1.
func TestAllocateLandedCost_MonedaVaciaSeConvierte(t *testing.T) {
	in := vectorInput()
	in.Lines[0].PriceCurrency = ""
	in.Charges[0].Currency = ""

	alloc, err := inventory.AllocateLandedCost(in)
	require.NoError(t, err)
	r := alloc.Results[0]
	assert.True(t, alloc.TotalCharges.Equal(d("120000")))
	assert.True(t, r.BaseCostPerUnit.Equal(d("300")), "base: %s", r.BaseCostPerUnit)
	assert.True(t, r.LandedCostPerUnit.Equal(d("420")), "costo en destino: %s", r.LandedCostPerUnit)
}

func TestAllocateLandedCost_LineaInvalidaRechazaLote(t *testing.T) {
	cases := []struct {
		name string
		edit func(*inventory.LandedCostInput)
		want error
	}{
		{"piezas en cero", func(in *inventory.LandedCostInput) { in.Lines[0].TotalPieces = decimal.Zero }, domain.ErrInvalidReceiptLine},
		{"cajas en cero", func(in *inventory.LandedCostInput) { in.Lines[0].Cartons = decimal.Zero }, domain.ErrInvalidReceiptLine},
		{"peso negativo", func(in *inventory.LandedCostInput) { in.Lines[0].TotalWeight = d("-1") }, domain.ErrInvalidReceiptLine},
		{"sin líneas", func(in *inventory.LandedCostInput) { in.Lines = nil }, domain.ErrInvalidReceiptLine},
		{"tasa en cero", func(in *inventory.LandedCostInput) { in.ExchangeRate = decimal.Zero }, domain.ErrInvalidInput},
		{"tipo de cargo desconocido", func(in *inventory.LandedCostInput) { in.Charges[0].Type = "seguro" }, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := vectorInput()
			tc.edit(&in)
			alloc, err := inventory.AllocateLandedCost(in)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, alloc)
		})
	}
}
