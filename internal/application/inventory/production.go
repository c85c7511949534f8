package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/pkg/logger"
	"github.com/shopspring/decimal"
)

// ConvertUseCase transforma un insumo en uno o más productos terminados. El valor FIFO
// consumido del insumo se reparte entre las salidas según su participación.
type ConvertUseCase struct {
	deps Deps
	log  *logger.Logger
}

// NewConvertUseCase construye el caso de uso.
func NewConvertUseCase(deps Deps) *ConvertUseCase {
	deps = deps.withDefaults()
	return &ConvertUseCase{deps: deps, log: deps.Logger.Component("production")}
}

// ProductionOutput un producto resultante. SharePct es el porcentaje del costo consumido que
// absorbe; si ninguna salida lo indica se reparte en partes iguales.
type ProductionOutput struct {
	ProductID string
	VariantID string
	Quantity  decimal.Decimal
	SharePct  decimal.Decimal
}

// Key devuelve la llave del artículo.
func (o ProductionOutput) Key() entity.ItemKey {
	return entity.NewItemKey(o.ProductID, o.VariantID)
}

// ProductionInput orden de producción.
type ProductionInput struct {
	ProductID string
	VariantID string
	Quantity  decimal.Decimal
	Outputs   []ProductionOutput
	Reference string
	UserID    string
}

// Key devuelve la llave del insumo.
func (in ProductionInput) Key() entity.ItemKey {
	return entity.NewItemKey(in.ProductID, in.VariantID)
}

// ProductionOutputResult capa creada para una salida.
type ProductionOutputResult struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	LayerID   string          `json:"layer_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	SharePct  decimal.Decimal `json:"share_pct"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// ProductionResult consumo del insumo y capas de salida.
type ProductionResult struct {
	Consumed *ConsumptionResult
	Outputs  []ProductionOutputResult
}

// Convert consume el insumo por FIFO y registra una capa por salida en una sola transacción.
// La suma del costo de las salidas es igual al valor consumido.
func (uc *ConvertUseCase) Convert(ctx context.Context, in ProductionInput) (*ProductionResult, error) {
	shares, err := validateProduction(in)
	if err != nil {
		return nil, err
	}
	now := uc.deps.Now()
	txID := uuid.New().String()
	reference := in.Reference
	if strings.TrimSpace(reference) == "" {
		reference = txID
	}

	keys := []entity.ItemKey{in.Key()}
	for _, o := range in.Outputs {
		keys = append(keys, o.Key())
	}

	var res *ProductionResult
	err = uc.deps.TxRunner.Run(ctx, func(r Repositories) error {
		if err := r.Locker.Lock(ctx, sortedKeys(keys...)...); err != nil {
			return err
		}
		consumed, err := consumeTx(ctx, r, ConsumeInput{
			ProductID: in.ProductID,
			VariantID: in.VariantID,
			Quantity:  in.Quantity,
			Reference: reference,
			UserID:    in.UserID,
		}, entity.MovementTypeProductionOUT, now, txID)
		if err != nil {
			return err
		}

		res = &ProductionResult{Consumed: consumed, Outputs: make([]ProductionOutputResult, 0, len(in.Outputs))}
		assigned := decimal.Zero
		for i, o := range in.Outputs {
			value := consumed.TotalCost.Mul(shares[i]).Div(hundred)
			if i == len(in.Outputs)-1 {
				// la última salida absorbe el residuo de redondeo
				value = consumed.TotalCost.Sub(assigned)
			}
			assigned = assigned.Add(value)
			unitCost := value.Div(o.Quantity)

			layer, err := appendLayerTx(ctx, r, AppendLayerInput{
				ProductID:       o.ProductID,
				VariantID:       o.VariantID,
				Quantity:        o.Quantity,
				UnitCost:        unitCost,
				ReceivedAt:      now,
				SourceType:      entity.LayerSourceProduction,
				SourceReference: reference,
				UserID:          in.UserID,
			}, now, txID)
			if err != nil {
				return fmt.Errorf("salida %d: %w", i+1, err)
			}
			res.Outputs = append(res.Outputs, ProductionOutputResult{
				ProductID: o.ProductID,
				VariantID: o.VariantID,
				LayerID:   layer.ID,
				Quantity:  o.Quantity,
				SharePct:  shares[i],
				UnitCost:  unitCost,
				TotalCost: value,
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.deps.Metrics.InsufficientStock()
		}
		return nil, err
	}

	uc.deps.committed(ctx)
	uc.deps.Metrics.Consumed(entity.MovementTypeProductionOUT, res.Consumed.Quantity, res.Consumed.TotalCost)
	for _, o := range res.Outputs {
		uc.deps.Metrics.LayerAppended(entity.LayerSourceProduction, o.Quantity)
	}
	uc.log.Info().
		Str("input", in.Key().String()).
		Str("quantity", in.Quantity.String()).
		Str("consumed_value", res.Consumed.TotalCost.String()).
		Int("outputs", len(res.Outputs)).
		Msg("conversión de producción")
	return res, nil
}

// validateProduction valida la orden y devuelve la participación efectiva de cada salida.
func validateProduction(in ProductionInput) ([]decimal.Decimal, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, fmt.Errorf("%w: insumo requerido", domain.ErrInvalidInput)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: cantidad del insumo debe ser mayor a cero", domain.ErrInvalidQuantity)
	}
	if len(in.Outputs) == 0 {
		return nil, fmt.Errorf("%w: la orden no tiene salidas", domain.ErrInvalidInput)
	}

	explicit := false
	total := decimal.Zero
	for i, o := range in.Outputs {
		if strings.TrimSpace(o.ProductID) == "" {
			return nil, fmt.Errorf("%w: salida %d sin producto", domain.ErrInvalidInput, i+1)
		}
		if !o.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: salida %d con cantidad <= 0", domain.ErrInvalidQuantity, i+1)
		}
		if o.SharePct.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: salida %d con participación negativa", domain.ErrInvalidInput, i+1)
		}
		if !o.SharePct.IsZero() {
			explicit = true
		}
		total = total.Add(o.SharePct)
	}

	shares := make([]decimal.Decimal, len(in.Outputs))
	if !explicit {
		equal := hundred.Div(decimal.NewFromInt(int64(len(in.Outputs))))
		for i := range shares {
			shares[i] = equal
		}
		return shares, nil
	}
	if !total.Equal(hundred) {
		return nil, fmt.Errorf("%w: las participaciones suman %s, deben sumar 100", domain.ErrInvalidInput, total.String())
	}
	for i, o := range in.Outputs {
		shares[i] = o.SharePct
	}
	return shares, nil
}
