package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemKey identifica el artículo costeado: producto y, opcionalmente, variante.
// VariantID vacío significa que el producto no maneja variantes.
type ItemKey struct {
	ProductID string
	VariantID string
}

// NewItemKey construye la llave de un artículo.
func NewItemKey(productID, variantID string) ItemKey {
	return ItemKey{ProductID: productID, VariantID: variantID}
}

// String devuelve "producto" o "producto/variante"; es también la llave de bloqueo.
func (k ItemKey) String() string {
	if k.VariantID == "" {
		return k.ProductID
	}
	return k.ProductID + "/" + k.VariantID
}

// IsZero indica si la llave no tiene producto.
func (k ItemKey) IsZero() bool {
	return k.ProductID == ""
}

// Item representa el producto o variante en el registro externo (catálogo).
// Los campos de precio son mutables y los escribe el llamador; StockQuantity es el
// contador agregado (cache) que debe coincidir con la suma de capas.
type Item struct {
	ProductID      string
	VariantID      string
	SKU            string
	Name           string
	StoreID        string
	CategoryID     string
	CostPrice      decimal.Decimal // último costo propuesto y aplicado
	WholesalePrice decimal.Decimal // precio mayorista
	Price          decimal.Decimal // precio de venta al detal
	StockQuantity  decimal.Decimal // contador agregado (denormalizado)
	UpdatedAt      time.Time
}

// Key devuelve la llave del artículo.
func (i *Item) Key() ItemKey {
	return ItemKey{ProductID: i.ProductID, VariantID: i.VariantID}
}

// ItemFilter filtra artículos del registro para reportes.
type ItemFilter struct {
	StoreID    string
	CategoryID string
	ProductID  string
}

// Matches indica si el artículo cumple el filtro (campos vacíos no filtran).
func (f ItemFilter) Matches(i *Item) bool {
	if f.StoreID != "" && i.StoreID != f.StoreID {
		return false
	}
	if f.CategoryID != "" && i.CategoryID != f.CategoryID {
		return false
	}
	if f.ProductID != "" && i.ProductID != f.ProductID {
		return false
	}
	return true
}
