package http

import (
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/application/dto"
	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
)

func toItemResponse(it *entity.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ProductID:      it.ProductID,
		VariantID:      it.VariantID,
		SKU:            it.SKU,
		Name:           it.Name,
		StoreID:        it.StoreID,
		CategoryID:     it.CategoryID,
		CostPrice:      it.CostPrice,
		WholesalePrice: it.WholesalePrice,
		Price:          it.Price,
		StockQuantity:  it.StockQuantity,
		UpdatedAt:      it.UpdatedAt,
	}
}

func toMovementResponses(list []*entity.InventoryMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			LayerID:       m.LayerID,
			Type:          m.Type,
			Quantity:      m.Quantity,
			UnitCost:      m.UnitCost,
			TotalCost:     m.TotalCost,
			Reference:     m.Reference,
			Date:          m.Date,
			CreatedBy:     m.CreatedBy,
		})
	}
	return out
}

func toLayerResponse(l *entity.InventoryLayer) dto.LayerResponse {
	return dto.LayerResponse{
		ID:                l.ID,
		ProductID:         l.ProductID,
		VariantID:         l.VariantID,
		QuantityReceived:  l.QuantityReceived,
		QuantityRemaining: l.QuantityRemaining,
		UnitCost:          l.UnitCost,
		ReceivedAt:        l.ReceivedAt,
		SourceType:        l.SourceType,
		SourceReference:   l.SourceReference,
	}
}

func toConsumptionResponse(r *inventory.ConsumptionResult) dto.ConsumptionResponse {
	out := dto.ConsumptionResponse{
		ProductID:     r.ProductID,
		VariantID:     r.VariantID,
		TransactionID: r.TransactionID,
		Quantity:      r.Quantity,
		TotalCost:     r.TotalCost,
		Consumptions:  make([]dto.LayerConsumptionResponse, 0, len(r.Consumptions)),
	}
	for _, c := range r.Consumptions {
		out.Consumptions = append(out.Consumptions, dto.LayerConsumptionResponse{
			LayerID:       c.LayerID,
			QuantityTaken: c.QuantityTaken,
			UnitCost:      c.UnitCost,
			Cost:          c.Cost(),
		})
	}
	return out
}

func toStockResponse(r *inventory.StockReport) dto.StockResponse {
	return dto.StockResponse{
		ProductID:  r.ProductID,
		VariantID:  r.VariantID,
		Cached:     r.Cached,
		Actual:     r.Actual,
		Difference: r.Difference(),
		Drift:      r.Drift,
	}
}

func toAllocateInput(in dto.AllocateRequest, userID string) inventory.AllocateInput {
	out := inventory.AllocateInput{
		ReceiptID:          in.ReceiptID,
		ExchangeRate:       in.ExchangeRate,
		WholesaleMarginPct: in.WholesaleMarginPct,
		RetailMarginPct:    in.RetailMarginPct,
		UserID:             userID,
	}
	if in.ReceivedAt != nil {
		out.ReceivedAt = *in.ReceivedAt
	}
	for _, l := range in.Lines {
		out.Lines = append(out.Lines, entity.PurchaseReceiptLine{
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Cartons:        l.Cartons,
			TotalPieces:    l.TotalPieces,
			TotalWeight:    l.TotalWeight,
			PricePerCarton: l.PricePerCarton,
			PriceCurrency:  l.PriceCurrency,
		})
	}
	for _, ch := range in.Charges {
		out.Charges = append(out.Charges, entity.Charge{
			Type:        ch.Type,
			Description: ch.Description,
			Amount:      ch.Amount,
			Currency:    ch.Currency,
		})
	}
	return out
}

func toAllocationResponse(r *inventory.AllocationResult) dto.AllocationResponse {
	out := dto.AllocationResponse{
		ReceiptID:             r.ReceiptID,
		Results:               make([]dto.LandedCostResponse, 0, len(r.Results)),
		TotalCharges:          r.TotalCharges,
		TotalWeight:           r.TotalWeight,
		ChargesPerWeightUnit:  r.ChargesPerWeightUnit,
		ChargesNotDistributed: r.ChargesNotDistributed,
		Warnings:              r.Warnings,
	}
	for _, l := range r.Results {
		out.Results = append(out.Results, dto.LandedCostResponse{
			ProductID:         l.ProductID,
			VariantID:         l.VariantID,
			LayerID:           l.LayerID,
			PiecesPerCarton:   l.PiecesPerCarton,
			WeightPerCarton:   l.WeightPerCarton,
			BaseCostPerUnit:   l.BaseCostPerUnit,
			ChargePerCarton:   l.ChargePerCarton,
			ChargePerUnit:     l.ChargePerUnit,
			LandedCostPerUnit: l.LandedCostPerUnit,
			WholesalePrice:    l.WholesalePrice,
			RetailPrice:       l.RetailPrice,
			TotalPieces:       l.TotalPieces,
			TotalLandedCost:   l.TotalLandedCost,
		})
	}
	return out
}

func toProductionInput(in dto.ProductionRequest, userID string) inventory.ProductionInput {
	out := inventory.ProductionInput{
		ProductID: in.ProductID,
		VariantID: in.VariantID,
		Quantity:  in.Quantity,
		Reference: in.Reference,
		UserID:    userID,
	}
	for _, o := range in.Outputs {
		out.Outputs = append(out.Outputs, inventory.ProductionOutput{
			ProductID: o.ProductID,
			VariantID: o.VariantID,
			Quantity:  o.Quantity,
			SharePct:  o.SharePct,
		})
	}
	return out
}

func toProductionResponse(r *inventory.ProductionResult) dto.ProductionResponse {
	out := dto.ProductionResponse{
		Consumed: toConsumptionResponse(r.Consumed),
		Outputs:  make([]dto.ProductionOutputResponse, 0, len(r.Outputs)),
	}
	for _, o := range r.Outputs {
		out.Outputs = append(out.Outputs, dto.ProductionOutputResponse{
			ProductID: o.ProductID,
			VariantID: o.VariantID,
			LayerID:   o.LayerID,
			Quantity:  o.Quantity,
			SharePct:  o.SharePct,
			UnitCost:  o.UnitCost,
			TotalCost: o.TotalCost,
		})
	}
	return out
}

// parseDate acepta RFC3339 o YYYY-MM-DD; una fecha sin hora cubre el día completo (UTC).
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(24*time.Hour - time.Nanosecond), nil
}
