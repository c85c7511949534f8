package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/pkg/logger"
	"github.com/shopspring/decimal"
)

// AgingUseCase clasifica las capas con existencias por antigüedad y riesgo de obsolescencia.
type AgingUseCase struct {
	deps Deps
	log  *logger.Logger
}

// NewAgingUseCase construye el caso de uso.
func NewAgingUseCase(deps Deps) *AgingUseCase {
	deps = deps.withDefaults()
	return &AgingUseCase{deps: deps, log: deps.Logger.Component("aging")}
}

// AgingRow una capa clasificada.
type AgingRow struct {
	LayerID           string                `json:"layer_id"`
	ProductID         string                `json:"product_id"`
	VariantID         string                `json:"variant_id,omitempty"`
	ReceivedAt        time.Time             `json:"received_at"`
	AgeDays           int                   `json:"age_days"`
	Bucket            inventory.AgingBucket `json:"bucket"`
	Risk              inventory.RiskTier    `json:"risk"`
	QuantityRemaining decimal.Decimal       `json:"quantity_remaining"`
	UnitCost          decimal.Decimal       `json:"unit_cost"`
	Value             decimal.Decimal       `json:"value"`
}

// AgingSummary totales por tramo.
type AgingSummary struct {
	Bucket   inventory.AgingBucket `json:"bucket"`
	Risk     inventory.RiskTier    `json:"risk"`
	Layers   int                   `json:"layers"`
	Quantity decimal.Decimal       `json:"quantity"`
	Value    decimal.Decimal       `json:"value"`
}

// AgingReport resultado de la clasificación a una fecha de corte.
type AgingReport struct {
	AsOf       time.Time       `json:"as_of"`
	Rows       []AgingRow      `json:"rows"`
	Summary    []AgingSummary  `json:"summary"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// Classify clasifica las capas con existencias recibidas hasta asOf. filter limita por tienda,
// categoría o producto usando el registro de artículos.
func (uc *AgingUseCase) Classify(ctx context.Context, asOf time.Time, filter entity.ItemFilter) (*AgingReport, error) {
	if asOf.IsZero() {
		asOf = uc.deps.Now()
	}
	layers, err := uc.deps.Reads.Layers.ListAllRemaining(ctx, &asOf)
	if err != nil {
		return nil, err
	}

	if filter != (entity.ItemFilter{}) {
		items, err := uc.deps.Reads.Items.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		allowed := make(map[entity.ItemKey]struct{}, len(items))
		for _, it := range items {
			allowed[it.Key()] = struct{}{}
		}
		kept := layers[:0]
		for _, l := range layers {
			if _, ok := allowed[l.Key()]; ok {
				kept = append(kept, l)
			}
		}
		layers = kept
	}

	rep := ClassifyLayers(layers, asOf)
	uc.log.Debug().Int("layers", len(rep.Rows)).Time("as_of", asOf).Msg("antigüedad calculada")
	return rep, nil
}

// ClassifyLayers es la clasificación pura, sin acceso a datos. Las capas agotadas se omiten.
func ClassifyLayers(layers []*entity.InventoryLayer, asOf time.Time) *AgingReport {
	ordered := make([]*entity.InventoryLayer, 0, len(layers))
	for _, l := range layers {
		if !l.IsDepleted() {
			ordered = append(ordered, l)
		}
	}
	inventory.SortFIFO(ordered)

	byBucket := make(map[inventory.AgingBucket]*AgingSummary, len(inventory.Buckets))
	for _, b := range inventory.Buckets {
		_, risk := inventory.ClassifyAge(b.MinDays())
		byBucket[b] = &AgingSummary{Bucket: b, Risk: risk, Quantity: decimal.Zero, Value: decimal.Zero}
	}

	rep := &AgingReport{
		AsOf:       asOf,
		Rows:       make([]AgingRow, 0, len(ordered)),
		TotalValue: decimal.Zero,
	}
	for _, l := range ordered {
		days := inventory.AgeInDays(l.ReceivedAt, asOf)
		bucket, risk := inventory.ClassifyAge(days)
		value := l.RemainingValue()
		rep.Rows = append(rep.Rows, AgingRow{
			LayerID:           l.ID,
			ProductID:         l.ProductID,
			VariantID:         l.VariantID,
			ReceivedAt:        l.ReceivedAt,
			AgeDays:           days,
			Bucket:            bucket,
			Risk:              risk,
			QuantityRemaining: l.QuantityRemaining,
			UnitCost:          l.UnitCost,
			Value:             value,
		})
		s := byBucket[bucket]
		s.Layers++
		s.Quantity = s.Quantity.Add(l.QuantityRemaining)
		s.Value = s.Value.Add(value)
		rep.TotalValue = rep.TotalValue.Add(value)
	}

	rep.Summary = make([]AgingSummary, 0, len(inventory.Buckets))
	for _, b := range inventory.Buckets {
		rep.Summary = append(rep.Summary, *byBucket[b])
	}
	return rep
}
