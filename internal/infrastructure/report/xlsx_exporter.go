// Package report exporta los reportes de valorización y antigüedad a Excel.
package report

import (
	"bytes"
	"fmt"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/xuri/excelize/v2"
)

const (
	comparisonSheet = "Valorizacion"
	agingRowsSheet  = "Capas"
	agingSumSheet   = "Resumen"
)

// XLSXExporter genera libros .xlsx en memoria.
type XLSXExporter struct{}

// NewXLSXExporter construye el exportador.
func NewXLSXExporter() *XLSXExporter { return &XLSXExporter{} }

// ComparisonXLSX una fila por artículo y una fila final de totales.
func (e *XLSXExporter) ComparisonXLSX(rep *inventory.ComparisonReport) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("xlsx: reporte nulo")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), comparisonSheet); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	header := []interface{}{
		"product_id", "variant_id", "sku", "nombre", "tienda", "categoria",
		"cantidad", "valor_fifo", "costo_promedio", "valor_promedio", "diferencia",
	}
	rows := make([][]interface{}, 0, len(rep.Rows)+1)
	for _, r := range rep.Rows {
		rows = append(rows, []interface{}{
			r.ProductID, r.VariantID, r.SKU, r.Name, r.StoreID, r.CategoryID,
			r.Quantity.InexactFloat64(),
			r.FIFOValue.InexactFloat64(),
			r.AverageUnitCost.InexactFloat64(),
			r.WeightedAverageValue.InexactFloat64(),
			r.Difference.InexactFloat64(),
		})
	}
	rows = append(rows, []interface{}{
		"TOTAL", "", "", "", "", "",
		rep.TotalQuantity.InexactFloat64(),
		rep.TotalFIFOValue.InexactFloat64(),
		"",
		rep.TotalWeightedAverageValue.InexactFloat64(),
		rep.TotalDifference.InexactFloat64(),
	})
	if err := writeSheet(f, comparisonSheet, header, rows); err != nil {
		return nil, err
	}
	return toBytes(f)
}

// AgingXLSX hoja de capas clasificadas y hoja de resumen por tramo.
func (e *XLSXExporter) AgingXLSX(rep *inventory.AgingReport) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("xlsx: reporte nulo")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), agingRowsSheet); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	if _, err := f.NewSheet(agingSumSheet); err != nil {
		return nil, fmt.Errorf("xlsx: crear hoja: %w", err)
	}

	layerHeader := []interface{}{
		"layer_id", "product_id", "variant_id", "recibido", "dias", "tramo", "riesgo",
		"cantidad", "costo_unitario", "valor",
	}
	layerRows := make([][]interface{}, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		layerRows = append(layerRows, []interface{}{
			r.LayerID, r.ProductID, r.VariantID, r.ReceivedAt.Format("2006-01-02"), r.AgeDays,
			string(r.Bucket), string(r.Risk),
			r.QuantityRemaining.InexactFloat64(),
			r.UnitCost.InexactFloat64(),
			r.Value.InexactFloat64(),
		})
	}
	if err := writeSheet(f, agingRowsSheet, layerHeader, layerRows); err != nil {
		return nil, err
	}

	sumHeader := []interface{}{"tramo", "riesgo", "capas", "cantidad", "valor"}
	sumRows := make([][]interface{}, 0, len(rep.Summary)+1)
	for _, s := range rep.Summary {
		sumRows = append(sumRows, []interface{}{
			string(s.Bucket), string(s.Risk), s.Layers, s.Quantity.InexactFloat64(), s.Value.InexactFloat64(),
		})
	}
	sumRows = append(sumRows, []interface{}{"TOTAL", "", len(rep.Rows), "", rep.TotalValue.InexactFloat64()})
	if err := writeSheet(f, agingSumSheet, sumHeader, sumRows); err != nil {
		return nil, err
	}
	return toBytes(f)
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: encabezado %s: %w", sheet, err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: celda: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("xlsx: fila %d de %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

func toBytes(f *excelize.File) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
