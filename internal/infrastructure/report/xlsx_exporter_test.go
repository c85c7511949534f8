package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	domaininv "github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func comparisonFixture() *inventory.ComparisonReport {
	return &inventory.ComparisonReport{
		GeneratedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Rows: []inventory.ComparisonRow{
			{ProductID: "P1", SKU: "SKU-1", Name: "Tornillo", Quantity: d("15"), FIFOValue: d("170"),
				AverageUnitCost: d("11"), WeightedAverageValue: d("165"), Difference: d("5")},
		},
		TotalQuantity:             d("15"),
		TotalFIFOValue:            d("170"),
		TotalWeightedAverageValue: d("165"),
		TotalDifference:           d("5"),
	}
}

func TestComparisonXLSX_FilasYTotales(t *testing.T) {
	data, err := NewXLSXExporter().ComparisonXLSX(comparisonFixture())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(comparisonSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "product_id", rows[0][0])
	assert.Equal(t, "P1", rows[1][0])
	assert.Equal(t, "170", rows[1][7])
	assert.Equal(t, "TOTAL", rows[2][0])
	assert.Equal(t, "5", rows[2][10])
}

func TestAgingXLSX_DosHojas(t *testing.T) {
	rep := &inventory.AgingReport{
		AsOf: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Rows: []inventory.AgingRow{
			{LayerID: "L1", ProductID: "P1", ReceivedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), AgeDays: 243,
				Bucket: domaininv.Bucket180Plus, Risk: domaininv.RiskCritical,
				QuantityRemaining: d("4"), UnitCost: d("2.5"), Value: d("10")},
		},
		Summary: []inventory.AgingSummary{
			{Bucket: domaininv.Bucket180Plus, Risk: domaininv.RiskCritical, Layers: 1, Quantity: d("4"), Value: d("10")},
		},
		TotalValue: d("10"),
	}
	data, err := NewXLSXExporter().AgingXLSX(rep)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	layers, err := f.GetRows(agingRowsSheet)
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, "180+", layers[1][5])
	assert.Equal(t, "critical", layers[1][6])

	summary, err := f.GetRows(agingSumSheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "TOTAL", summary[2][0])
}

func TestXLSX_ReporteNulo(t *testing.T) {
	_, err := NewXLSXExporter().ComparisonXLSX(nil)
	assert.Error(t, err)
	_, err = NewXLSXExporter().AgingXLSX(nil)
	assert.Error(t, err)
}
