package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Repositories agrupa los puertos que usa el motor de costeo. TxRunner los entrega atados a
// una transacción; fuera de ella se usan para lecturas (reportes, conciliación).
type Repositories struct {
	Layers    repository.LayerRepository
	Averages  repository.AverageCostRepository
	Items     repository.ItemRepository
	Movements repository.InventoryMovementRepository
	Charges   repository.ReceiptChargeRepository
	Locker    repository.ItemLocker
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ninguna escritura queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}

// ReportVersion generación del cache vista al buscar un reporte.
type ReportVersion int64

// ReportCache guarda reportes de valorización ya calculados. Invalidate se llama después de
// cada escritura confirmada en el libro. GetComparison devuelve nil si no hay reporte, junto
// con la versión vigente; SetComparison guarda bajo esa versión, de modo que un reporte
// calculado antes de una invalidación nunca se sirve después de ella.
type ReportCache interface {
	GetComparison(ctx context.Context, scope string) (*ComparisonReport, ReportVersion, error)
	SetComparison(ctx context.Context, scope string, version ReportVersion, report *ComparisonReport) error
	Invalidate(ctx context.Context) error
}

// Metrics recibe los eventos del motor (contadores Prometheus en producción).
type Metrics interface {
	LayerAppended(source string, quantity decimal.Decimal)
	Consumed(movementType string, quantity, cost decimal.Decimal)
	InsufficientStock()
	StockDrift()
	Allocation(lines int, chargesNotDistributed bool)
}

// NoopReportCache no guarda nada.
type NoopReportCache struct{}

func (NoopReportCache) GetComparison(context.Context, string) (*ComparisonReport, ReportVersion, error) {
	return nil, 0, nil
}
func (NoopReportCache) SetComparison(context.Context, string, ReportVersion, *ComparisonReport) error {
	return nil
}
func (NoopReportCache) Invalidate(context.Context) error { return nil }

// NoopMetrics descarta los eventos.
type NoopMetrics struct{}

func (NoopMetrics) LayerAppended(string, decimal.Decimal) {}
func (NoopMetrics) Consumed(string, decimal.Decimal, decimal.Decimal) {}
func (NoopMetrics) InsufficientStock() {}
func (NoopMetrics) StockDrift() {}
func (NoopMetrics) Allocation(int, bool) {}
