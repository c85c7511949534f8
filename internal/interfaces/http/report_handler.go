package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-costeo/internal/application/dto"
	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

// SpreadsheetExporter genera los reportes en .xlsx.
type SpreadsheetExporter interface {
	ComparisonXLSX(rep *inventory.ComparisonReport) ([]byte, error)
	AgingXLSX(rep *inventory.AgingReport) ([]byte, error)
}

// ComparisonPDFGenerator genera el reporte comparativo en PDF.
type ComparisonPDFGenerator interface {
	GenerateComparisonPDF(ctx context.Context, rep *inventory.ComparisonReport) ([]byte, error)
}

// ReportHandler valorización y antigüedad de inventario (solo lectura).
type ReportHandler struct {
	valuation *inventory.ValuationUseCase
	aging     *inventory.AgingUseCase
	xlsx      SpreadsheetExporter
	pdf       ComparisonPDFGenerator
}

// NewReportHandler construye el handler. xlsx y pdf pueden ser nil; ese formato responde 406.
func NewReportHandler(valuation *inventory.ValuationUseCase, aging *inventory.AgingUseCase, xlsx SpreadsheetExporter, pdf ComparisonPDFGenerator) *ReportHandler {
	return &ReportHandler{valuation: valuation, aging: aging, xlsx: xlsx, pdf: pdf}
}

// ItemValuation godoc
// @Summary      Valor de un artículo por FIFO y por promedio ponderado
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "Producto"
// @Param        variant_id  query  string  false  "Variante"
// @Success      200  {object}  dto.ItemValuationResponse
// @Router       /api/costing/items/{product_id}/valuation [get]
func (h *ReportHandler) ItemValuation(c *fiber.Ctx) error {
	key := pathKey(c)
	fifo, err := h.valuation.FIFOValue(c.Context(), key)
	if err != nil {
		return writeError(c, err)
	}
	avg, err := h.valuation.WeightedAverageValue(c.Context(), key)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ItemValuationResponse{
		ProductID:            key.ProductID,
		VariantID:            key.VariantID,
		Quantity:             fifo.Quantity,
		FIFOUnitCost:         fifo.UnitCost,
		FIFOValue:            fifo.Value,
		AverageUnitCost:      avg.UnitCost,
		WeightedAverageValue: avg.Value,
		Difference:           fifo.Value.Sub(avg.Value),
	})
}

// Comparison godoc
// @Summary      Reporte comparativo FIFO vs promedio ponderado
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      application/pdf
// @Param        store_id     query  string  false  "Tienda"
// @Param        category_id  query  string  false  "Categoría"
// @Param        product_id   query  string  false  "Producto"
// @Param        format       query  string  false  "json (defecto), xlsx o pdf"
// @Success      200  {object}  inventory.ComparisonReport
// @Router       /api/costing/valuation/comparison [get]
func (h *ReportHandler) Comparison(c *fiber.Ctx) error {
	store, err := scopedStore(c)
	if err != nil {
		return writeError(c, err)
	}
	rep, err := h.valuation.ComparisonReport(c.Context(), inventory.ReportScope{
		StoreID:    store,
		CategoryID: c.Query("category_id"),
		ProductID:  c.Query("product_id"),
	})
	if err != nil {
		return writeError(c, err)
	}
	switch c.Query("format", "json") {
	case "json":
		return c.JSON(rep)
	case "xlsx":
		if h.xlsx == nil {
			return formatUnavailable(c, "xlsx")
		}
		data, err := h.xlsx.ComparisonXLSX(rep)
		if err != nil {
			return writeError(c, err)
		}
		return sendFile(c, mimeXLSX, "valorizacion.xlsx", data)
	case "pdf":
		if h.pdf == nil {
			return formatUnavailable(c, "pdf")
		}
		data, err := h.pdf.GenerateComparisonPDF(c.Context(), rep)
		if err != nil {
			return writeError(c, err)
		}
		return sendFile(c, mimePDF, "valorizacion.pdf", data)
	}
	return badRequest(c, "INVALID_QUERY", "format debe ser json, xlsx o pdf")
}

// Aging godoc
// @Summary      Antigüedad de capas y riesgo de obsolescencia
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        as_of        query  string  false  "Fecha de corte (RFC3339 o YYYY-MM-DD); defecto ahora"
// @Param        store_id     query  string  false  "Tienda"
// @Param        category_id  query  string  false  "Categoría"
// @Param        product_id   query  string  false  "Producto"
// @Param        format       query  string  false  "json (defecto) o xlsx"
// @Success      200  {object}  inventory.AgingReport
// @Router       /api/costing/aging [get]
func (h *ReportHandler) Aging(c *fiber.Ctx) error {
	asOf, err := queryAsOf(c)
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "as_of inválido")
	}
	store, err := scopedStore(c)
	if err != nil {
		return writeError(c, err)
	}
	var cut time.Time
	if asOf != nil {
		cut = *asOf
	}
	rep, err := h.aging.Classify(c.Context(), cut, entity.ItemFilter{
		StoreID:    store,
		CategoryID: c.Query("category_id"),
		ProductID:  c.Query("product_id"),
	})
	if err != nil {
		return writeError(c, err)
	}
	switch c.Query("format", "json") {
	case "json":
		return c.JSON(rep)
	case "xlsx":
		if h.xlsx == nil {
			return formatUnavailable(c, "xlsx")
		}
		data, err := h.xlsx.AgingXLSX(rep)
		if err != nil {
			return writeError(c, err)
		}
		return sendFile(c, mimeXLSX, "antiguedad.xlsx", data)
	}
	return badRequest(c, "INVALID_QUERY", "format debe ser json o xlsx")
}

// scopedStore devuelve la tienda a consultar. Un token atado a una tienda solo ve esa tienda.
func scopedStore(c *fiber.Ctx) (string, error) {
	requested := c.Query("store_id")
	own := GetStoreID(c)
	if own == "" {
		return requested, nil
	}
	if requested != "" && requested != own {
		return "", fmt.Errorf("%w: tienda %s fuera del alcance del token", domain.ErrForbidden, requested)
	}
	return own, nil
}

func queryAsOf(c *fiber.Ctx) (*time.Time, error) {
	s := c.Query("as_of")
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func sendFile(c *fiber.Ctx, contentType, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

func formatUnavailable(c *fiber.Ctx, format string) error {
	return c.Status(fiber.StatusNotAcceptable).JSON(dto.ErrorResponse{Code: "FORMAT_UNAVAILABLE", Message: "formato " + format + " no disponible"})
}
