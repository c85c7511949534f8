package inventory

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LandedCostInput datos de un embarque para el costeo en destino.
// ExchangeRate son unidades de moneda local por una unidad de moneda extranjera.
type LandedCostInput struct {
	Lines              []entity.PurchaseReceiptLine
	Charges            []entity.Charge
	ExchangeRate       decimal.Decimal
	WholesaleMarginPct decimal.Decimal
	RetailMarginPct    decimal.Decimal
	HomeCurrency       string
}

// LandedCostAllocation resultado del prorrateo de un embarque completo.
type LandedCostAllocation struct {
	Results              []entity.LandedCostResult
	ChargeHomeAmounts    []decimal.Decimal // un valor por cargo, en moneda local
	TotalCharges         decimal.Decimal
	TotalWeight          decimal.Decimal
	ChargesPerWeightUnit decimal.Decimal
	// ChargesNotDistributed es verdadero cuando hay cargos pero el peso total es cero:
	// los cargos no entran al costo unitario y el llamador debe advertirlo.
	ChargesNotDistributed bool
}

// ValidateLandedCostInput verifica el lote completo antes de costear (todo o nada).
func ValidateLandedCostInput(in LandedCostInput) error {
	if len(in.Lines) == 0 {
		return fmt.Errorf("%w: el embarque no tiene líneas", domain.ErrInvalidReceiptLine)
	}
	if !in.ExchangeRate.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: tasa de cambio debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if in.WholesaleMarginPct.LessThan(decimal.Zero) || in.RetailMarginPct.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: márgenes negativos", domain.ErrInvalidInput)
	}
	for i, l := range in.Lines {
		switch {
		case strings.TrimSpace(l.ProductID) == "":
			return fmt.Errorf("%w: línea %d sin producto", domain.ErrInvalidReceiptLine, i+1)
		case !l.Cartons.GreaterThan(decimal.Zero):
			return fmt.Errorf("%w: línea %d con cajas <= 0", domain.ErrInvalidReceiptLine, i+1)
		case !l.TotalPieces.GreaterThan(decimal.Zero):
			return fmt.Errorf("%w: línea %d con piezas <= 0", domain.ErrInvalidReceiptLine, i+1)
		case l.TotalWeight.LessThan(decimal.Zero):
			return fmt.Errorf("%w: línea %d con peso negativo", domain.ErrInvalidReceiptLine, i+1)
		case l.PricePerCarton.LessThan(decimal.Zero):
			return fmt.Errorf("%w: línea %d con precio negativo", domain.ErrInvalidReceiptLine, i+1)
		}
	}
	for i, c := range in.Charges {
		if !entity.IsValidChargeType(c.Type) {
			return fmt.Errorf("%w: cargo %d con tipo %q", domain.ErrInvalidInput, i+1, c.Type)
		}
		if c.Amount.LessThan(decimal.Zero) {
			return fmt.Errorf("%w: cargo %d con monto negativo", domain.ErrInvalidInput, i+1)
		}
	}
	return nil
}

// AllocateLandedCost prorratea los cargos del embarque por peso y calcula el costo unitario
// en destino de cada línea, más las propuestas de precio mayorista y al detal.
// Las divisiones por cero se degradan a contribución 0.
func AllocateLandedCost(in LandedCostInput) (*LandedCostAllocation, error) {
	if err := ValidateLandedCostInput(in); err != nil {
		return nil, err
	}

	out := &LandedCostAllocation{
		Results:           make([]entity.LandedCostResult, 0, len(in.Lines)),
		ChargeHomeAmounts: make([]decimal.Decimal, 0, len(in.Charges)),
		TotalCharges:      decimal.Zero,
		TotalWeight:       decimal.Zero,
	}

	// 1. Cargos a moneda local
	for _, c := range in.Charges {
		home := ToHomeCurrency(c.Amount, c.Currency, in.HomeCurrency, in.ExchangeRate)
		out.ChargeHomeAmounts = append(out.ChargeHomeAmounts, home)
		out.TotalCharges = out.TotalCharges.Add(home)
	}

	// 2-3. Peso total del embarque y cargo por unidad de peso
	for _, l := range in.Lines {
		out.TotalWeight = out.TotalWeight.Add(l.TotalWeight)
	}
	out.ChargesPerWeightUnit = safeDiv(out.TotalCharges, out.TotalWeight)
	out.ChargesNotDistributed = out.TotalWeight.IsZero() && out.TotalCharges.GreaterThan(decimal.Zero)

	wholesaleFactor := decimal.NewFromInt(1).Add(in.WholesaleMarginPct.Div(hundred))
	retailFactor := decimal.NewFromInt(1).Add(in.RetailMarginPct.Div(hundred))

	// 4. Costo por línea
	for _, l := range in.Lines {
		rate := lineRate(l.PriceCurrency, in.HomeCurrency, in.ExchangeRate)

		piecesPerCarton := safeDiv(l.TotalPieces, l.Cartons)
		weightPerCarton := safeDiv(l.TotalWeight, l.Cartons)
		baseCost := safeDiv(l.Cartons.Mul(l.PricePerCarton), l.TotalPieces).Mul(rate)
		chargePerCarton := out.ChargesPerWeightUnit.Mul(weightPerCarton)
		chargePerUnit := safeDiv(chargePerCarton, piecesPerCarton)
		landed := baseCost.Add(chargePerUnit)

		out.Results = append(out.Results, entity.LandedCostResult{
			ProductID:         l.ProductID,
			VariantID:         l.VariantID,
			PiecesPerCarton:   piecesPerCarton,
			WeightPerCarton:   weightPerCarton,
			BaseCostPerUnit:   baseCost,
			ChargePerCarton:   chargePerCarton,
			ChargePerUnit:     chargePerUnit,
			LandedCostPerUnit: landed,
			WholesalePrice:    landed.Mul(wholesaleFactor),
			RetailPrice:       landed.Mul(retailFactor),
			TotalPieces:       l.TotalPieces,
			TotalLandedCost:   landed.Mul(l.TotalPieces),
		})
	}
	return out, nil
}

// ToHomeCurrency convierte un monto a moneda local. Solo una moneda igual a la local se deja
// sin convertir; una moneda vacía se trata como extranjera.
func ToHomeCurrency(amount decimal.Decimal, currency, home string, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(lineRate(currency, home, rate))
}

func lineRate(currency, home string, rate decimal.Decimal) decimal.Decimal {
	c := strings.TrimSpace(currency)
	if c != "" && strings.EqualFold(c, strings.TrimSpace(home)) {
		return decimal.NewFromInt(1)
	}
	return rate
}

func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}
