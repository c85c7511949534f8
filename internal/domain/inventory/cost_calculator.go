package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa el costo promedio ponderado móvil (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// StockActual es la suma de existencias ANTES de la recepción.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	if stockActual.LessThan(decimal.Zero) {
		stockActual = decimal.Zero
	}
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// BlendAverages combina dos promedios ponderados por sus existencias (fusión de artículos).
// Si ambas existencias son cero conserva el costo del destino.
func BlendAverages(qtyDestino, costoDestino, qtyOrigen, costoOrigen decimal.Decimal) decimal.Decimal {
	if qtyDestino.Add(qtyOrigen).LessThanOrEqual(decimal.Zero) {
		if costoDestino.IsZero() {
			return costoOrigen
		}
		return costoDestino
	}
	return CostCalculator(qtyDestino, costoDestino, qtyOrigen, costoOrigen)
}
