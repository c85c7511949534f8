package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-costeo/internal/application/dto"
	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
)

// CostingHandler maneja el libro de capas, el costeo de embarques y la producción (protegido).
type CostingHandler struct {
	ledger    *inventory.LedgerUseCase
	allocator *inventory.AllocatorUseCase
	convert   *inventory.ConvertUseCase
	catalog   *inventory.CatalogUseCase
}

// NewCostingHandler construye el handler.
func NewCostingHandler(
	ledger *inventory.LedgerUseCase,
	allocator *inventory.AllocatorUseCase,
	convert *inventory.ConvertUseCase,
	catalog *inventory.CatalogUseCase,
) *CostingHandler {
	return &CostingHandler{ledger: ledger, allocator: allocator, convert: convert, catalog: catalog}
}

// pathKey arma la llave del artículo con :product_id y ?variant_id=.
func pathKey(c *fiber.Ctx) entity.ItemKey {
	return entity.NewItemKey(strings.TrimSpace(c.Params("product_id")), strings.TrimSpace(c.Query("variant_id")))
}

// RegisterItem godoc
// @Summary      Registrar o actualizar artículo
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterItemRequest  true  "product_id, name; precios opcionales"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/costing/items [put]
func (h *CostingHandler) RegisterItem(c *fiber.Ctx) error {
	var in dto.RegisterItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if store := GetStoreID(c); store != "" && in.StoreID != "" && in.StoreID != store {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "tienda fuera del alcance del token"})
	}
	it, err := h.catalog.RegisterItem(c.Context(), inventory.RegisterItemInput{
		ProductID:      in.ProductID,
		VariantID:      in.VariantID,
		SKU:            in.SKU,
		Name:           in.Name,
		StoreID:        in.StoreID,
		CategoryID:     in.CategoryID,
		CostPrice:      in.CostPrice,
		WholesalePrice: in.WholesalePrice,
		Price:          in.Price,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toItemResponse(it))
}

// ListItems godoc
// @Summary      Listar artículos
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        store_id     query  string  false  "Tienda"
// @Param        category_id  query  string  false  "Categoría"
// @Success      200  {array}   dto.ItemResponse
// @Router       /api/costing/items [get]
func (h *CostingHandler) ListItems(c *fiber.Ctx) error {
	store, err := scopedStore(c)
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.catalog.ListItems(c.Context(), entity.ItemFilter{
		StoreID:    store,
		CategoryID: c.Query("category_id"),
		ProductID:  c.Query("product_id"),
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	return c.JSON(out)
}

// GetItem godoc
// @Summary      Obtener artículo
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "Producto"
// @Param        variant_id  query  string  false  "Variante"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/costing/items/{product_id} [get]
func (h *CostingHandler) GetItem(c *fiber.Ctx) error {
	it, err := h.catalog.GetItem(c.Context(), pathKey(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toItemResponse(it))
}

// ListMovements godoc
// @Summary      Historial de movimientos del artículo
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "Producto"
// @Param        variant_id  query  string  false  "Variante"
// @Param        from        query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to          query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit       query  int     false  "Máximo de filas (50)"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Router       /api/costing/items/{product_id}/movements [get]
func (h *CostingHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "paginación inválida")
	}
	q := inventory.MovementsQuery{Limit: page.Limit, Offset: page.Offset}
	if s := c.Query("from"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return badRequest(c, "INVALID_QUERY", "from inválido")
		}
		q.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return badRequest(c, "INVALID_QUERY", "to inválido")
		}
		q.To = &t
	}
	movs, err := h.catalog.Movements(c.Context(), pathKey(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponses(movs))
}

// AppendLayer godoc
// @Summary      Registrar capa de inventario
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AppendLayerRequest  true  "product_id, quantity > 0, unit_cost >= 0"
// @Success      201   {object}  dto.LayerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/costing/layers [post]
func (h *CostingHandler) AppendLayer(c *fiber.Ctx) error {
	var in dto.AppendLayerRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	input := inventory.AppendLayerInput{
		ProductID:       in.ProductID,
		VariantID:       in.VariantID,
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
		SourceType:      in.SourceType,
		SourceReference: in.SourceReference,
		UserID:          GetUserID(c),
	}
	if in.ReceivedAt != nil {
		input.ReceivedAt = *in.ReceivedAt
	}
	layer, err := h.ledger.AppendLayer(c.Context(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLayerResponse(layer))
}

// Consume godoc
// @Summary      Consumo FIFO (venta o despacho)
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeRequest  true  "product_id, quantity > 0"
// @Success      201   {object}  dto.ConsumptionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/costing/consumptions [post]
func (h *CostingHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.ledger.ConsumeFIFO(c.Context(), inventory.ConsumeInput{
		ProductID: in.ProductID,
		VariantID: in.VariantID,
		Quantity:  in.Quantity,
		Reference: in.Reference,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toConsumptionResponse(res))
}

// Merge godoc
// @Summary      Fusionar artículos (traspaso de capas)
// @Description  Reasigna todas las capas del origen al destino. El contador del destino queda
//
//	desalineado hasta POST /items/{product_id}/stock/resync.
//
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MergeRequest  true  "origen y destino"
// @Success      200   {object}  dto.MergeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/costing/merges [post]
func (h *CostingHandler) Merge(c *fiber.Ctx) error {
	var in dto.MergeRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	moved, err := h.ledger.TransferOwnership(c.Context(),
		entity.NewItemKey(in.FromProductID, in.FromVariantID),
		entity.NewItemKey(in.ToProductID, in.ToVariantID),
		GetUserID(c),
	)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MergeResponse{LayersMoved: moved})
}

// ListLayers godoc
// @Summary      Capas con existencias (orden FIFO)
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "Producto"
// @Param        variant_id  query  string  false  "Variante"
// @Param        as_of       query  string  false  "Fecha de corte (RFC3339 o YYYY-MM-DD)"
// @Success      200  {array}   dto.LayerResponse
// @Router       /api/costing/items/{product_id}/layers [get]
func (h *CostingHandler) ListLayers(c *fiber.Ctx) error {
	asOf, err := queryAsOf(c)
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "as_of inválido")
	}
	layers, err := h.ledger.RemainingLayers(c.Context(), pathKey(c), asOf)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LayerResponse, 0, len(layers))
	for _, l := range layers {
		out = append(out, toLayerResponse(l))
	}
	return c.JSON(out)
}

// GetStock godoc
// @Summary      Conciliar contador de stock contra capas
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "Producto"
// @Param        variant_id  query  string  false  "Variante"
// @Success      200  {object}  dto.StockResponse
// @Failure      409  {object}  dto.ErrorResponse  "STOCK_DRIFT con ambos valores"
// @Router       /api/costing/items/{product_id}/stock [get]
func (h *CostingHandler) GetStock(c *fiber.Ctx) error {
	rep, err := h.ledger.CheckStockDrift(c.Context(), pathKey(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockResponse(rep))
}

// ResyncStock godoc
// @Summary      Resincronizar contador de stock
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "Producto"
// @Param        variant_id  query  string  false  "Variante"
// @Success      200  {object}  dto.StockResponse  "cached = valor previo"
// @Router       /api/costing/items/{product_id}/stock/resync [post]
func (h *CostingHandler) ResyncStock(c *fiber.Ctx) error {
	rep, err := h.ledger.ResyncStockCounter(c.Context(), pathKey(c), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockResponse(rep))
}

// PreviewReceipt godoc
// @Summary      Vista previa del costeo de un embarque
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocateRequest  true  "líneas, cargos, tasa de cambio y márgenes"
// @Success      200   {object}  dto.AllocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/costing/receipts/preview [post]
func (h *CostingHandler) PreviewReceipt(c *fiber.Ctx) error {
	var in dto.AllocateRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.allocator.Preview(c.Context(), toAllocateInput(in, GetUserID(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAllocationResponse(res))
}

// AllocateReceipt godoc
// @Summary      Costear embarque y registrar capas
// @Description  Todo o nada: una capa PURCHASE por línea con su costo en destino.
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocateRequest  true  "líneas, cargos, tasa de cambio y márgenes"
// @Success      201   {object}  dto.AllocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/costing/receipts/allocate [post]
func (h *CostingHandler) AllocateReceipt(c *fiber.Ctx) error {
	var in dto.AllocateRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.allocator.Allocate(c.Context(), toAllocateInput(in, GetUserID(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAllocationResponse(res))
}

// ApplyPrices godoc
// @Summary      Aplicar precios propuestos al registro
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyPricesRequest  true  "propuestas"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/costing/prices/apply [post]
func (h *CostingHandler) ApplyPrices(c *fiber.Ctx) error {
	var in dto.ApplyPricesRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	proposals := make([]inventory.PriceProposal, 0, len(in.Proposals))
	for _, p := range in.Proposals {
		proposals = append(proposals, inventory.PriceProposal{
			ProductID:      p.ProductID,
			VariantID:      p.VariantID,
			CostPrice:      p.CostPrice,
			WholesalePrice: p.WholesalePrice,
			RetailPrice:    p.RetailPrice,
		})
	}
	if err := h.allocator.ApplyPriceProposals(c.Context(), proposals); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"applied": len(proposals)})
}

// Produce godoc
// @Summary      Conversión de producción
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductionRequest  true  "insumo, cantidad y salidas con share_pct"
// @Success      201   {object}  dto.ProductionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/costing/productions [post]
func (h *CostingHandler) Produce(c *fiber.Ctx) error {
	var in dto.ProductionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.convert.Convert(c.Context(), toProductionInput(in, GetUserID(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toProductionResponse(res))
}
