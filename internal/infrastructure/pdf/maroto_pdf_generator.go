// Package pdf genera el reporte comparativo de valorización (FIFO vs promedio ponderado)
// en PDF.
//
// Layout de la página A4 apaisada:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + alcance      │  Fecha de generación      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Nombre | Cant | FIFO | C.Prom | Prom | Dif    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Cantidad / FIFO / Promedio / Diferencia            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator genera reportes de valorización usando Maroto v2.
type MarotoPDFGenerator struct {
	company string
}

// NewMarotoPDFGenerator construye el generador; company va en el encabezado.
func NewMarotoPDFGenerator(company string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: company}
}

// GenerateComparisonPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateComparisonPDF(_ context.Context, rep *inventory.ComparisonReport) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("pdf: reporte nulo")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Valorización de inventario", true).
		WithAuthor(nonEmpty(g.company, "Inventario"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.company, rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(rep.Rows)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(rep))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa y alcance (izq), fecha de generación (der).
func headerRow(company string, rep *inventory.ComparisonReport) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New(nonEmpty(company, "Inventario"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Alcance: "+scopeLabel(rep.Scope), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("VALORIZACIÓN FIFO vs PROMEDIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Artículo", 3, align.Left),
		h("Cant.", 1, align.Right),
		h("Valor FIFO", 2, align.Right),
		h("Costo prom.", 1, align.Right),
		h("Valor prom.", 2, align.Right),
		h("Diferencia", 1, align.Right),
	)
}

// tableDetailRows: una fila por artículo; las diferencias negativas van en rojo.
func tableDetailRows(rows []inventory.ComparisonRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		diffStyle := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if r.Difference.IsNegative() {
			diffStyle.Color = colorRed
		}
		name := r.Name
		if r.VariantID != "" {
			name += " (" + r.VariantID + ")"
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(nonEmpty(r.SKU, r.ProductID), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(r.Quantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(money(r.FIFOValue), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(money(r.AverageUnitCost), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(money(r.WeightedAverageValue), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(money(r.Difference), diffStyle)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(rep *inventory.ComparisonReport) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Cantidad:"),
			label("Valor FIFO:"),
			label("Valor promedio:"),
			label("Diferencia:"),
		),
		col.New(3).Add(
			value(rep.TotalQuantity.String()),
			value(money(rep.TotalFIFOValue)),
			value(money(rep.TotalWeightedAverageValue)),
			value(money(rep.TotalDifference)),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func scopeLabel(s inventory.ReportScope) string {
	var parts []string
	if s.StoreID != "" {
		parts = append(parts, "tienda "+s.StoreID)
	}
	if s.CategoryID != "" {
		parts = append(parts, "categoría "+s.CategoryID)
	}
	if s.ProductID != "" {
		parts = append(parts, "producto "+s.ProductID)
	}
	if len(parts) == 0 {
		return "todo el inventario"
	}
	return strings.Join(parts, ", ")
}

// money redondea a 2 decimales con puntos de miles y coma decimal.
// Ej: 1234567.891 → "$1.234.567,89"
func money(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Abs()
	}
	fixed := v.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + formatThousands(intPart) + "," + frac
}

// formatThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
