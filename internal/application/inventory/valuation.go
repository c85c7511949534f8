package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/pkg/logger"
	"github.com/shopspring/decimal"
)

// ValuationUseCase valoriza existencias por FIFO (capas) y por promedio ponderado móvil.
// Solo lectura.
type ValuationUseCase struct {
	deps Deps
	log  *logger.Logger
}

// NewValuationUseCase construye el caso de uso.
func NewValuationUseCase(deps Deps) *ValuationUseCase {
	deps = deps.withDefaults()
	return &ValuationUseCase{deps: deps, log: deps.Logger.Component("valuation")}
}

// Valuation valor de las existencias de un artículo con un método.
type Valuation struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Method    string          `json:"method"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Value     decimal.Decimal `json:"value"`
}

// Métodos de valorización.
const (
	MethodFIFO            = "FIFO"
	MethodWeightedAverage = "WEIGHTED_AVERAGE"
)

// ReportScope filtro del reporte comparativo; campos vacíos no filtran.
type ReportScope struct {
	StoreID    string `json:"store_id,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	ProductID  string `json:"product_id,omitempty"`
}

// CacheKey llave estable del alcance para el cache de reportes.
func (s ReportScope) CacheKey() string {
	return fmt.Sprintf("store=%s|category=%s|product=%s", s.StoreID, s.CategoryID, s.ProductID)
}

func (s ReportScope) filter() entity.ItemFilter {
	return entity.ItemFilter{StoreID: s.StoreID, CategoryID: s.CategoryID, ProductID: s.ProductID}
}

// ComparisonRow una fila del reporte FIFO vs promedio ponderado.
type ComparisonRow struct {
	ProductID            string          `json:"product_id"`
	VariantID            string          `json:"variant_id,omitempty"`
	SKU                  string          `json:"sku"`
	Name                 string          `json:"name"`
	StoreID              string          `json:"store_id,omitempty"`
	CategoryID           string          `json:"category_id,omitempty"`
	Quantity             decimal.Decimal `json:"quantity"`
	FIFOValue            decimal.Decimal `json:"fifo_value"`
	AverageUnitCost      decimal.Decimal `json:"average_unit_cost"`
	WeightedAverageValue decimal.Decimal `json:"weighted_average_value"`
	Difference           decimal.Decimal `json:"difference"` // FIFO - promedio
}

// ComparisonReport reporte comparativo de valorización.
type ComparisonReport struct {
	Scope                     ReportScope     `json:"scope"`
	GeneratedAt               time.Time       `json:"generated_at"`
	Rows                      []ComparisonRow `json:"rows"`
	TotalQuantity             decimal.Decimal `json:"total_quantity"`
	TotalFIFOValue            decimal.Decimal `json:"total_fifo_value"`
	TotalWeightedAverageValue decimal.Decimal `json:"total_weighted_average_value"`
	TotalDifference           decimal.Decimal `json:"total_difference"`
}

// FIFOValue suma exacta de existencia restante por costo de cada capa.
func (uc *ValuationUseCase) FIFOValue(ctx context.Context, key entity.ItemKey) (*Valuation, error) {
	if key.IsZero() {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	layers, err := uc.deps.Reads.Layers.ListRemaining(ctx, key, nil)
	if err != nil {
		return nil, err
	}
	qty, value := inventory.FIFOValue(layers)
	unit := decimal.Zero
	if qty.GreaterThan(decimal.Zero) {
		unit = value.Div(qty)
	}
	return &Valuation{
		ProductID: key.ProductID,
		VariantID: key.VariantID,
		Method:    MethodFIFO,
		Quantity:  qty,
		UnitCost:  unit,
		Value:     value,
	}, nil
}

// WeightedAverageValue existencia restante por el costo promedio móvil vigente. El promedio se
// forma con los costos históricos de recepción y puede diferir del valor FIFO después de consumos.
func (uc *ValuationUseCase) WeightedAverageValue(ctx context.Context, key entity.ItemKey) (*Valuation, error) {
	if key.IsZero() {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	qty, err := uc.deps.Reads.Layers.SumRemaining(ctx, key)
	if err != nil {
		return nil, err
	}
	avg, err := uc.deps.Reads.Averages.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	unit := decimal.Zero
	if avg != nil {
		unit = avg.UnitCost
	}
	return &Valuation{
		ProductID: key.ProductID,
		VariantID: key.VariantID,
		Method:    MethodWeightedAverage,
		Quantity:  qty,
		UnitCost:  unit,
		Value:     qty.Mul(unit),
	}, nil
}

// ComparisonReport valoriza cada artículo del alcance por ambos métodos. Usa el cache de
// reportes; cualquier escritura en el libro lo invalida.
func (uc *ValuationUseCase) ComparisonReport(ctx context.Context, scope ReportScope) (*ComparisonReport, error) {
	cacheKey := scope.CacheKey()
	cached, version, err := uc.deps.Cache.GetComparison(ctx, cacheKey)
	cacheOK := err == nil
	if err != nil {
		uc.log.Warn().Err(err).Msg("cache de reportes no disponible")
	} else if cached != nil {
		return cached, nil
	}

	items, err := uc.deps.Reads.Items.List(ctx, scope.filter())
	if err != nil {
		return nil, err
	}
	rep := &ComparisonReport{
		Scope:                     scope,
		GeneratedAt:               uc.deps.Now(),
		Rows:                      make([]ComparisonRow, 0, len(items)),
		TotalQuantity:             decimal.Zero,
		TotalFIFOValue:            decimal.Zero,
		TotalWeightedAverageValue: decimal.Zero,
		TotalDifference:           decimal.Zero,
	}
	for _, it := range items {
		fifo, err := uc.FIFOValue(ctx, it.Key())
		if err != nil {
			return nil, err
		}
		wa, err := uc.WeightedAverageValue(ctx, it.Key())
		if err != nil {
			return nil, err
		}
		row := ComparisonRow{
			ProductID:            it.ProductID,
			VariantID:            it.VariantID,
			SKU:                  it.SKU,
			Name:                 it.Name,
			StoreID:              it.StoreID,
			CategoryID:           it.CategoryID,
			Quantity:             fifo.Quantity,
			FIFOValue:            fifo.Value,
			AverageUnitCost:      wa.UnitCost,
			WeightedAverageValue: wa.Value,
			Difference:           fifo.Value.Sub(wa.Value),
		}
		rep.Rows = append(rep.Rows, row)
		rep.TotalQuantity = rep.TotalQuantity.Add(row.Quantity)
		rep.TotalFIFOValue = rep.TotalFIFOValue.Add(row.FIFOValue)
		rep.TotalWeightedAverageValue = rep.TotalWeightedAverageValue.Add(row.WeightedAverageValue)
		rep.TotalDifference = rep.TotalDifference.Add(row.Difference)
	}

	// Sin versión conocida no se guarda: podría quedar bajo una generación posterior.
	if cacheOK {
		if err := uc.deps.Cache.SetComparison(ctx, cacheKey, version, rep); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo guardar el reporte en cache")
		}
	}
	return rep, nil
}
