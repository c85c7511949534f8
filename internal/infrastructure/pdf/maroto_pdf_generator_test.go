package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1.234.567,89", money(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "$0,50", money(decimal.RequireFromString("0.5")))
	assert.Equal(t, "-$25.000,00", money(decimal.NewFromInt(-25000)))
}

func TestScopeLabel(t *testing.T) {
	assert.Equal(t, "todo el inventario", scopeLabel(inventory.ReportScope{}))
	assert.Equal(t, "tienda S1, producto P1", scopeLabel(inventory.ReportScope{StoreID: "S1", ProductID: "P1"}))
}

func TestGenerateComparisonPDF(t *testing.T) {
	rep := &inventory.ComparisonReport{
		GeneratedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Rows: []inventory.ComparisonRow{
			{ProductID: "P1", SKU: "SKU-1", Name: "Tornillo", Quantity: decimal.NewFromInt(15),
				FIFOValue: decimal.NewFromInt(170), AverageUnitCost: decimal.NewFromInt(12),
				WeightedAverageValue: decimal.NewFromInt(180), Difference: decimal.NewFromInt(-10)},
		},
		TotalQuantity:             decimal.NewFromInt(15),
		TotalFIFOValue:            decimal.NewFromInt(170),
		TotalWeightedAverageValue: decimal.NewFromInt(180),
		TotalDifference:           decimal.NewFromInt(-10),
	}
	data, err := NewMarotoPDFGenerator("Ferretería Central").GenerateComparisonPDF(context.Background(), rep)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))

	_, err = NewMarotoPDFGenerator("").GenerateComparisonPDF(context.Background(), nil)
	assert.Error(t, err)
}
