package entity

import "github.com/shopspring/decimal"

// PurchaseReceiptLine un artículo cotizado por el proveedor dentro de un embarque.
type PurchaseReceiptLine struct {
	ProductID      string
	VariantID      string
	Cartons        decimal.Decimal
	TotalPieces    decimal.Decimal
	TotalWeight    decimal.Decimal
	PricePerCarton decimal.Decimal
	PriceCurrency  string
}

// Key devuelve la llave del artículo de la línea.
func (l PurchaseReceiptLine) Key() ItemKey {
	return ItemKey{ProductID: l.ProductID, VariantID: l.VariantID}
}

// LandedCostResult resultado del costeo en destino de una línea.
type LandedCostResult struct {
	ProductID         string
	VariantID         string
	LayerID           string // vacío en vista previa
	PiecesPerCarton   decimal.Decimal
	WeightPerCarton   decimal.Decimal
	BaseCostPerUnit   decimal.Decimal // costo ex-works convertido
	ChargePerCarton   decimal.Decimal
	ChargePerUnit     decimal.Decimal
	LandedCostPerUnit decimal.Decimal
	WholesalePrice    decimal.Decimal // propuesta
	RetailPrice       decimal.Decimal // propuesta
	TotalPieces       decimal.Decimal
	TotalLandedCost   decimal.Decimal
}

// Key devuelve la llave del artículo del resultado.
func (r LandedCostResult) Key() ItemKey {
	return ItemKey{ProductID: r.ProductID, VariantID: r.VariantID}
}
