package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/pkg/logger"
	"github.com/shopspring/decimal"
)

// WarningChargesNotDistributed aviso cuando el embarque tiene cargos pero peso total cero.
const WarningChargesNotDistributed = "CHARGES_NOT_DISTRIBUTED"

// AllocatorUseCase costea embarques en destino: prorratea los cargos por peso, registra una
// capa por línea y propone precios. Los precios propuestos no se aplican solos.
type AllocatorUseCase struct {
	deps Deps
	log  *logger.Logger
}

// NewAllocatorUseCase construye el caso de uso.
func NewAllocatorUseCase(deps Deps) *AllocatorUseCase {
	deps = deps.withDefaults()
	return &AllocatorUseCase{deps: deps, log: deps.Logger.Component("allocator")}
}

// AllocateInput un embarque completo. Lines y Charges se costean como un solo lote.
// ExchangeRate son unidades de moneda local por unidad de moneda extranjera.
type AllocateInput struct {
	ReceiptID          string
	Lines              []entity.PurchaseReceiptLine
	Charges            []entity.Charge
	ExchangeRate       decimal.Decimal
	WholesaleMarginPct decimal.Decimal
	RetailMarginPct    decimal.Decimal
	ReceivedAt         time.Time
	UserID             string
}

// AllocationResult resultado del costeo de un embarque.
type AllocationResult struct {
	ReceiptID             string
	Results               []entity.LandedCostResult
	Charges               []*entity.ReceiptCharge
	TotalCharges          decimal.Decimal
	TotalWeight           decimal.Decimal
	ChargesPerWeightUnit  decimal.Decimal
	ChargesNotDistributed bool
	Warnings              []string
}

// PriceProposal precios a aplicar en el registro del artículo (normalmente los de una asignación).
type PriceProposal struct {
	ProductID      string
	VariantID      string
	CostPrice      decimal.Decimal
	WholesalePrice decimal.Decimal
	RetailPrice    decimal.Decimal
}

// Key devuelve la llave del artículo.
func (p PriceProposal) Key() entity.ItemKey {
	return entity.NewItemKey(p.ProductID, p.VariantID)
}

// Preview calcula el costeo sin escribir nada.
func (uc *AllocatorUseCase) Preview(ctx context.Context, in AllocateInput) (*AllocationResult, error) {
	alloc, err := inventory.AllocateLandedCost(uc.landedInput(in))
	if err != nil {
		return nil, err
	}
	res := uc.buildResult(in.ReceiptID, in.Charges, alloc, uc.deps.Now())
	for i, r := range res.Results {
		item, err := uc.deps.Reads.Items.Get(ctx, r.Key())
		if err != nil {
			return nil, err
		}
		if item == nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("línea %d: artículo %s no existe", i+1, r.Key().String()))
		}
	}
	return res, nil
}

// Allocate costea el embarque y registra una capa por línea con su costo en destino.
// Es todo o nada: si una línea falla no queda ninguna capa ni cargo registrado.
func (uc *AllocatorUseCase) Allocate(ctx context.Context, in AllocateInput) (*AllocationResult, error) {
	alloc, err := inventory.AllocateLandedCost(uc.landedInput(in))
	if err != nil {
		return nil, err
	}
	receiptID := strings.TrimSpace(in.ReceiptID)
	if receiptID == "" {
		receiptID = uuid.New().String()
	}
	now := uc.deps.Now()
	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}
	res := uc.buildResult(receiptID, in.Charges, alloc, now)
	txID := uuid.New().String()

	keys := make([]entity.ItemKey, 0, len(res.Results))
	for _, r := range res.Results {
		keys = append(keys, r.Key())
	}

	err = uc.deps.TxRunner.Run(ctx, func(r Repositories) error {
		if err := r.Locker.Lock(ctx, sortedKeys(keys...)...); err != nil {
			return err
		}
		for i := range res.Results {
			line := &res.Results[i]
			layer, err := appendLayerTx(ctx, r, AppendLayerInput{
				ProductID:       line.ProductID,
				VariantID:       line.VariantID,
				Quantity:        line.TotalPieces,
				UnitCost:        line.LandedCostPerUnit,
				ReceivedAt:      receivedAt,
				SourceType:      entity.LayerSourcePurchase,
				SourceReference: receiptID,
				UserID:          in.UserID,
			}, now, txID)
			if err != nil {
				return fmt.Errorf("línea %d: %w", i+1, err)
			}
			line.LayerID = layer.ID
		}
		if len(res.Charges) == 0 {
			return nil
		}
		return r.Charges.CreateBatch(ctx, res.Charges)
	})
	if err != nil {
		return nil, err
	}

	uc.deps.committed(ctx)
	uc.deps.Metrics.Allocation(len(res.Results), res.ChargesNotDistributed)
	for _, line := range res.Results {
		uc.deps.Metrics.LayerAppended(entity.LayerSourcePurchase, line.TotalPieces)
	}
	ev := uc.log.Info()
	if res.ChargesNotDistributed {
		ev = uc.log.Warn()
	}
	ev.Str("receipt_id", receiptID).
		Int("lines", len(res.Results)).
		Str("total_charges", res.TotalCharges.String()).
		Str("total_weight", res.TotalWeight.String()).
		Bool("charges_not_distributed", res.ChargesNotDistributed).
		Msg("embarque costeado")
	return res, nil
}

// ApplyPriceProposals escribe costo, precio mayorista y al detal en el registro, todo o nada.
func (uc *AllocatorUseCase) ApplyPriceProposals(ctx context.Context, proposals []PriceProposal) error {
	if len(proposals) == 0 {
		return fmt.Errorf("%w: sin propuestas de precio", domain.ErrInvalidInput)
	}
	for i, p := range proposals {
		if strings.TrimSpace(p.ProductID) == "" {
			return fmt.Errorf("%w: propuesta %d sin producto", domain.ErrInvalidInput, i+1)
		}
		if p.CostPrice.LessThan(decimal.Zero) || p.WholesalePrice.LessThan(decimal.Zero) || p.RetailPrice.LessThan(decimal.Zero) {
			return fmt.Errorf("%w: propuesta %d con precio negativo", domain.ErrInvalidInput, i+1)
		}
	}
	err := uc.deps.TxRunner.Run(ctx, func(r Repositories) error {
		for _, p := range proposals {
			item, err := r.Items.Get(ctx, p.Key())
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("%w: artículo %s", domain.ErrNotFound, p.Key().String())
			}
			if err := r.Items.UpdatePrices(ctx, p.Key(), p.CostPrice, p.WholesalePrice, p.RetailPrice); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.deps.committed(ctx)
	uc.log.Info().Int("items", len(proposals)).Msg("precios aplicados")
	return nil
}

// ProposalsFrom convierte el resultado de una asignación en propuestas de precio.
func ProposalsFrom(res *AllocationResult) []PriceProposal {
	out := make([]PriceProposal, 0, len(res.Results))
	for _, r := range res.Results {
		out = append(out, PriceProposal{
			ProductID:      r.ProductID,
			VariantID:      r.VariantID,
			CostPrice:      r.LandedCostPerUnit,
			WholesalePrice: r.WholesalePrice,
			RetailPrice:    r.RetailPrice,
		})
	}
	return out
}

func (uc *AllocatorUseCase) landedInput(in AllocateInput) inventory.LandedCostInput {
	return inventory.LandedCostInput{
		Lines:              in.Lines,
		Charges:            in.Charges,
		ExchangeRate:       in.ExchangeRate,
		WholesaleMarginPct: in.WholesaleMarginPct,
		RetailMarginPct:    in.RetailMarginPct,
		HomeCurrency:       uc.deps.HomeCurrency,
	}
}

func (uc *AllocatorUseCase) buildResult(receiptID string, charges []entity.Charge, alloc *inventory.LandedCostAllocation, now time.Time) *AllocationResult {
	res := &AllocationResult{
		ReceiptID:             receiptID,
		Results:               alloc.Results,
		Charges:               make([]*entity.ReceiptCharge, 0, len(charges)),
		TotalCharges:          alloc.TotalCharges,
		TotalWeight:           alloc.TotalWeight,
		ChargesPerWeightUnit:  alloc.ChargesPerWeightUnit,
		ChargesNotDistributed: alloc.ChargesNotDistributed,
	}
	for i, c := range charges {
		res.Charges = append(res.Charges, &entity.ReceiptCharge{
			ID:          uuid.New().String(),
			ReceiptID:   receiptID,
			Type:        c.Type,
			Description: c.Description,
			Amount:      c.Amount,
			Currency:    c.Currency,
			HomeAmount:  alloc.ChargeHomeAmounts[i],
			CreatedAt:   now,
		})
	}
	if res.ChargesNotDistributed {
		res.Warnings = append(res.Warnings, WarningChargesNotDistributed)
	}
	return res
}
