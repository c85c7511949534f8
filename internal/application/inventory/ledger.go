package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/pkg/logger"
	"github.com/shopspring/decimal"
)

// LedgerUseCase es el libro de capas: recepciones, consumo FIFO, fusión de artículos y
// conciliación del contador de stock. Cada escritura corre en una transacción con el
// artículo bloqueado (SELECT FOR UPDATE sobre las capas y bloqueo por llave).
type LedgerUseCase struct {
	deps Deps
	log  *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(deps Deps) *LedgerUseCase {
	deps = deps.withDefaults()
	return &LedgerUseCase{deps: deps, log: deps.Logger.Component("ledger")}
}

// AppendLayerInput entrada para registrar una capa nueva.
// ReceivedAt vacío usa la hora actual; SourceType vacío es OPENING.
type AppendLayerInput struct {
	ProductID       string
	VariantID       string
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
	ReceivedAt      time.Time
	SourceType      string
	SourceReference string
	UserID          string
}

// Key devuelve la llave del artículo.
func (in AppendLayerInput) Key() entity.ItemKey {
	return entity.NewItemKey(in.ProductID, in.VariantID)
}

// ConsumeInput entrada para un consumo FIFO (venta o despacho).
type ConsumeInput struct {
	ProductID string
	VariantID string
	Quantity  decimal.Decimal
	Reference string
	UserID    string
}

// Key devuelve la llave del artículo.
func (in ConsumeInput) Key() entity.ItemKey {
	return entity.NewItemKey(in.ProductID, in.VariantID)
}

// ConsumptionResult detalle capa por capa de un consumo y su costo de ventas exacto.
type ConsumptionResult struct {
	ProductID     string
	VariantID     string
	TransactionID string
	Quantity      decimal.Decimal
	Consumptions  []entity.LayerConsumption
	TotalCost     decimal.Decimal
}

// StockReport compara el contador cacheado del artículo con la suma real de capas.
type StockReport struct {
	ProductID string
	VariantID string
	Cached    decimal.Decimal
	Actual    decimal.Decimal
	Drift     bool
}

// Difference devuelve actual - cacheado.
func (r StockReport) Difference() decimal.Decimal {
	return r.Actual.Sub(r.Cached)
}

// AppendLayer registra una recepción como capa nueva y actualiza el costo promedio móvil
// y el contador del artículo en la misma transacción.
func (uc *LedgerUseCase) AppendLayer(ctx context.Context, in AppendLayerInput) (*entity.InventoryLayer, error) {
	if err := validateAppend(in); err != nil {
		return nil, err
	}
	txID := uuid.New().String()
	var layer *entity.InventoryLayer
	err := uc.deps.TxRunner.Run(ctx, func(r Repositories) error {
		var err error
		layer, err = appendLayerTx(ctx, r, in, uc.deps.Now(), txID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.deps.committed(ctx)
	uc.deps.Metrics.LayerAppended(layer.SourceType, layer.QuantityReceived)
	uc.log.Info().
		Str("item", layer.Key().String()).
		Str("layer_id", layer.ID).
		Str("quantity", layer.QuantityReceived.String()).
		Str("unit_cost", layer.UnitCost.String()).
		Msg("capa registrada")
	return layer, nil
}

// ConsumeFIFO toma quantity de las capas más antiguas primero y devuelve el detalle por capa.
// Si las existencias no alcanzan devuelve *domain.InsufficientStockError y ninguna capa cambia.
func (uc *LedgerUseCase) ConsumeFIFO(ctx context.Context, in ConsumeInput) (*ConsumptionResult, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	txID := uuid.New().String()
	var res *ConsumptionResult
	err := uc.deps.TxRunner.Run(ctx, func(r Repositories) error {
		var err error
		res, err = consumeTx(ctx, r, in, entity.MovementTypeOUT, uc.deps.Now(), txID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.deps.Metrics.InsufficientStock()
			uc.log.Warn().Err(err).Str("item", in.Key().String()).Msg("consumo rechazado")
		}
		return nil, err
	}
	uc.deps.committed(ctx)
	uc.deps.Metrics.Consumed(entity.MovementTypeOUT, res.Quantity, res.TotalCost)
	uc.log.Info().
		Str("item", in.Key().String()).
		Str("quantity", res.Quantity.String()).
		Str("cogs", res.TotalCost.String()).
		Int("layers", len(res.Consumptions)).
		Msg("consumo FIFO")
	return res, nil
}

// TransferOwnership reasigna todas las capas de from a to (fusión de artículos) y mezcla el
// costo promedio del origen en el destino. No toca los contadores: la diferencia se concilia
// con ResyncStockCounter. Repetir la operación no mueve nada.
func (uc *LedgerUseCase) TransferOwnership(ctx context.Context, from, to entity.ItemKey, userID string) (int64, error) {
	if from.IsZero() || to.IsZero() {
		return 0, fmt.Errorf("%w: origen y destino requeridos", domain.ErrInvalidInput)
	}
	if from == to {
		return 0, nil
	}
	now := uc.deps.Now()
	txID := uuid.New().String()
	var moved int64
	err := uc.deps.TxRunner.Run(ctx, func(r Repositories) error {
		if err := r.Locker.Lock(ctx, from, to); err != nil {
			return err
		}
		dest, err := r.Items.Get(ctx, to)
		if err != nil {
			return err
		}
		if dest == nil {
			return fmt.Errorf("%w: artículo destino %s", domain.ErrNotFound, to.String())
		}

		srcQty, err := r.Layers.SumRemaining(ctx, from)
		if err != nil {
			return err
		}
		dstQty, err := r.Layers.SumRemaining(ctx, to)
		if err != nil {
			return err
		}
		srcAvg, err := r.Averages.GetForUpdate(ctx, from)
		if err != nil {
			return err
		}
		dstAvg, err := r.Averages.GetForUpdate(ctx, to)
		if err != nil {
			return err
		}

		moved, err = r.Layers.Reassign(ctx, from, to)
		if err != nil {
			return err
		}

		if srcAvg != nil {
			dstCost := decimal.Zero
			if dstAvg != nil {
				dstCost = dstAvg.UnitCost
			}
			blended := inventory.BlendAverages(dstQty, dstCost, srcQty, srcAvg.UnitCost)
			if err := r.Averages.Upsert(ctx, &entity.AverageCost{
				ProductID: to.ProductID,
				VariantID: to.VariantID,
				Quantity:  dstQty.Add(srcQty),
				UnitCost:  blended,
				UpdatedAt: now,
			}); err != nil {
				return err
			}
			if err := r.Averages.Delete(ctx, from); err != nil {
				return err
			}
		}

		if moved == 0 {
			return nil
		}
		return r.Movements.Create(ctx, &entity.InventoryMovement{
			TransactionID: txID,
			ProductID:     to.ProductID,
			VariantID:     to.VariantID,
			Type:          entity.MovementTypeMerge,
			Quantity:      srcQty,
			Reference:     from.String(),
			Date:          now,
			CreatedAt:     now,
			CreatedBy:     userID,
		})
	})
	if err != nil {
		return 0, err
	}
	uc.deps.committed(ctx)
	uc.log.Info().
		Str("from", from.String()).
		Str("to", to.String()).
		Int64("layers", moved).
		Msg("capas reasignadas por fusión")
	return moved, nil
}

// RecomputeStockCounter devuelve la suma de existencias de las capas del artículo.
func (uc *LedgerUseCase) RecomputeStockCounter(ctx context.Context, key entity.ItemKey) (decimal.Decimal, error) {
	if key.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	return uc.deps.Reads.Layers.SumRemaining(ctx, key)
}

// RemainingLayers devuelve las capas con existencias en orden FIFO. asOf (opcional) excluye
// las recibidas después de esa fecha.
func (uc *LedgerUseCase) RemainingLayers(ctx context.Context, key entity.ItemKey, asOf *time.Time) ([]*entity.InventoryLayer, error) {
	if key.IsZero() {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	layers, err := uc.deps.Reads.Layers.ListRemaining(ctx, key, asOf)
	if err != nil {
		return nil, err
	}
	inventory.SortFIFO(layers)
	return layers, nil
}

// CheckStockDrift compara el contador del artículo con la suma de capas. Si difieren devuelve
// el reporte junto con *domain.StockDriftError.
func (uc *LedgerUseCase) CheckStockDrift(ctx context.Context, key entity.ItemKey) (*StockReport, error) {
	item, err := uc.deps.Reads.Items.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, key.String())
	}
	actual, err := uc.deps.Reads.Layers.SumRemaining(ctx, key)
	if err != nil {
		return nil, err
	}
	rep := &StockReport{
		ProductID: key.ProductID,
		VariantID: key.VariantID,
		Cached:    item.StockQuantity,
		Actual:    actual,
		Drift:     !item.StockQuantity.Equal(actual),
	}
	if rep.Drift {
		uc.deps.Metrics.StockDrift()
		uc.log.Warn().
			Str("item", key.String()).
			Str("cached", rep.Cached.String()).
			Str("actual", rep.Actual.String()).
			Msg("contador de stock desalineado")
		return rep, &domain.StockDriftError{
			ProductID: key.ProductID,
			VariantID: key.VariantID,
			Cached:    rep.Cached,
			Actual:    rep.Actual,
		}
	}
	return rep, nil
}

// ResyncStockCounter reemplaza el contador del artículo por la suma de capas y deja un
// movimiento RESYNC con la diferencia. El reporte devuelto tiene el valor previo en Cached.
func (uc *LedgerUseCase) ResyncStockCounter(ctx context.Context, key entity.ItemKey, userID string) (*StockReport, error) {
	if key.IsZero() {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	now := uc.deps.Now()
	var rep *StockReport
	err := uc.deps.TxRunner.Run(ctx, func(r Repositories) error {
		if err := r.Locker.Lock(ctx, key); err != nil {
			return err
		}
		item, err := r.Items.Get(ctx, key)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: artículo %s", domain.ErrNotFound, key.String())
		}
		actual, err := r.Layers.SumRemaining(ctx, key)
		if err != nil {
			return err
		}
		rep = &StockReport{
			ProductID: key.ProductID,
			VariantID: key.VariantID,
			Cached:    item.StockQuantity,
			Actual:    actual,
			Drift:     !item.StockQuantity.Equal(actual),
		}
		if !rep.Drift {
			return nil
		}
		if err := r.Items.SetStockQuantity(ctx, key, actual); err != nil {
			return err
		}
		return r.Movements.Create(ctx, &entity.InventoryMovement{
			TransactionID: uuid.New().String(),
			ProductID:     key.ProductID,
			VariantID:     key.VariantID,
			Type:          entity.MovementTypeResync,
			Quantity:      rep.Difference(),
			Reference:     fmt.Sprintf("contador %s -> %s", rep.Cached.String(), rep.Actual.String()),
			Date:          now,
			CreatedAt:     now,
			CreatedBy:     userID,
		})
	})
	if err != nil {
		return nil, err
	}
	if rep.Drift {
		uc.deps.committed(ctx)
		uc.log.Info().
			Str("item", key.String()).
			Str("from", rep.Cached.String()).
			Str("to", rep.Actual.String()).
			Msg("contador de stock resincronizado")
	}
	return rep, nil
}

func validateAppend(in AppendLayerInput) error {
	if strings.TrimSpace(in.ProductID) == "" {
		return fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidQuantity)
	}
	if in.UnitCost.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidQuantity)
	}
	return nil
}

// appendLayerTx registra la capa con los repositorios de la transacción del llamador.
// Orden: bloqueo, existencias previas, promedio móvil, capa, contador, movimiento.
func appendLayerTx(ctx context.Context, r Repositories, in AppendLayerInput, now time.Time, txID string) (*entity.InventoryLayer, error) {
	if err := validateAppend(in); err != nil {
		return nil, err
	}
	key := in.Key()
	if err := r.Locker.Lock(ctx, key); err != nil {
		return nil, err
	}
	item, err := r.Items.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, key.String())
	}

	prevQty, err := r.Layers.SumRemaining(ctx, key)
	if err != nil {
		return nil, err
	}
	avg, err := r.Averages.GetForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	prevCost := decimal.Zero
	if avg != nil {
		prevCost = avg.UnitCost
	}

	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}
	source := in.SourceType
	if source == "" {
		source = entity.LayerSourceOpening
	}
	layer := &entity.InventoryLayer{
		ID:                uuid.New().String(),
		ProductID:         key.ProductID,
		VariantID:         key.VariantID,
		QuantityReceived:  in.Quantity,
		QuantityRemaining: in.Quantity,
		UnitCost:          in.UnitCost,
		ReceivedAt:        receivedAt,
		SourceType:        source,
		SourceReference:   in.SourceReference,
		CreatedAt:         now,
	}
	if err := r.Layers.Create(ctx, layer); err != nil {
		return nil, err
	}

	if err := r.Averages.Upsert(ctx, &entity.AverageCost{
		ProductID: key.ProductID,
		VariantID: key.VariantID,
		Quantity:  prevQty.Add(in.Quantity),
		UnitCost:  inventory.CostCalculator(prevQty, prevCost, in.Quantity, in.UnitCost),
		UpdatedAt: now,
	}); err != nil {
		return nil, err
	}
	if err := r.Items.AdjustStockQuantity(ctx, key, in.Quantity); err != nil {
		return nil, err
	}

	movType := entity.MovementTypeIN
	if source == entity.LayerSourceProduction {
		movType = entity.MovementTypeProductionIN
	}
	if err := r.Movements.Create(ctx, &entity.InventoryMovement{
		TransactionID: txID,
		ProductID:     key.ProductID,
		VariantID:     key.VariantID,
		LayerID:       layer.ID,
		Type:          movType,
		Quantity:      in.Quantity,
		UnitCost:      in.UnitCost,
		TotalCost:     in.Quantity.Mul(in.UnitCost),
		Reference:     in.SourceReference,
		Date:          receivedAt,
		CreatedAt:     now,
		CreatedBy:     in.UserID,
	}); err != nil {
		return nil, err
	}
	return layer, nil
}

// consumeTx ejecuta el consumo FIFO con los repositorios de la transacción del llamador.
// Las capas se leen bloqueadas; si no alcanzan no se escribe nada.
func consumeTx(ctx context.Context, r Repositories, in ConsumeInput, movType string, now time.Time, txID string) (*ConsumptionResult, error) {
	key := in.Key()
	if err := r.Locker.Lock(ctx, key); err != nil {
		return nil, err
	}
	item, err := r.Items.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, key.String())
	}

	layers, err := r.Layers.ListRemainingForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	plan, err := inventory.PlanFIFO(layers, in.Quantity)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, &domain.InsufficientStockError{
				ProductID: key.ProductID,
				VariantID: key.VariantID,
				Requested: in.Quantity,
				Available: inventory.Available(layers),
			}
		}
		return nil, err
	}

	for _, c := range plan {
		if err := r.Layers.DecrementRemaining(ctx, c.LayerID, c.QuantityTaken); err != nil {
			return nil, err
		}
		if err := r.Movements.Create(ctx, &entity.InventoryMovement{
			TransactionID: txID,
			ProductID:     key.ProductID,
			VariantID:     key.VariantID,
			LayerID:       c.LayerID,
			Type:          movType,
			Quantity:      c.QuantityTaken.Neg(),
			UnitCost:      c.UnitCost,
			TotalCost:     c.Cost().Neg(),
			Reference:     in.Reference,
			Date:          now,
			CreatedAt:     now,
			CreatedBy:     in.UserID,
		}); err != nil {
			return nil, err
		}
	}
	if err := r.Items.AdjustStockQuantity(ctx, key, in.Quantity.Neg()); err != nil {
		return nil, err
	}

	return &ConsumptionResult{
		ProductID:     key.ProductID,
		VariantID:     key.VariantID,
		TransactionID: txID,
		Quantity:      in.Quantity,
		Consumptions:  plan,
		TotalCost:     inventory.TotalCost(plan),
	}, nil
}

// sortedKeys devuelve las llaves sin duplicados y en orden estable para bloquearlas.
func sortedKeys(keys ...entity.ItemKey) []entity.ItemKey {
	seen := make(map[entity.ItemKey]struct{}, len(keys))
	out := make([]entity.ItemKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
