package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.LedgerUseCase
	Allocator *inventory.AllocatorUseCase
	Convert   *inventory.ConvertUseCase
	Catalog   *inventory.CatalogUseCase
	Valuation *inventory.ValuationUseCase
	Aging     *inventory.AgingUseCase
	XLSX      SpreadsheetExporter
	PDF       ComparisonPDFGenerator
	JWTSecret string
}

// Router registra las rutas de la API de costeo.
//
//	admin:      todo
//	bodeguero:  escrituras en el libro, embarques y reportes
//	auditor:    solo lectura
func Router(app *fiber.App, deps RouterDeps) {
	costing := app.Group("/api/costing", AuthMiddleware(deps.JWTSecret))

	writers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleAuditor)
	adminOnly := RequireRole(jwt.RoleAdmin)
	inStore := ItemInStore(deps.Catalog)

	ch := NewCostingHandler(deps.Ledger, deps.Allocator, deps.Convert, deps.Catalog)
	rh := NewReportHandler(deps.Valuation, deps.Aging, deps.XLSX, deps.PDF)

	// Registro de artículos
	costing.Put("/items", writers, ch.RegisterItem)
	costing.Get("/items", readers, ch.ListItems)
	costing.Get("/items/:product_id", readers, inStore, ch.GetItem)
	costing.Get("/items/:product_id/movements", readers, inStore, ch.ListMovements)

	// Libro de capas
	costing.Post("/layers", writers, ch.AppendLayer)
	costing.Post("/consumptions", writers, ch.Consume)
	costing.Post("/merges", writers, ch.Merge)
	costing.Get("/items/:product_id/layers", readers, inStore, ch.ListLayers)
	costing.Get("/items/:product_id/stock", readers, inStore, ch.GetStock)
	costing.Post("/items/:product_id/stock/resync", writers, inStore, ch.ResyncStock)

	// Costeo de embarques y precios
	costing.Post("/receipts/preview", writers, ch.PreviewReceipt)
	costing.Post("/receipts/allocate", writers, ch.AllocateReceipt)
	costing.Post("/prices/apply", adminOnly, ch.ApplyPrices)

	// Producción
	costing.Post("/productions", writers, ch.Produce)

	// Reportes
	costing.Get("/items/:product_id/valuation", readers, inStore, rh.ItemValuation)
	costing.Get("/valuation/comparison", readers, rh.Comparison)
	costing.Get("/aging", readers, rh.Aging)
}
