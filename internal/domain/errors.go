package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Motor de costeo.
	ErrInvalidQuantity    = errors.New("cantidad o costo inválido")
	ErrInvalidReceiptLine = errors.New("línea de recepción inválida")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrStockDrift         = errors.New("el contador de stock no coincide con las capas")
)

// StockDriftError detalla la diferencia entre el contador cacheado del producto y la suma real de capas.
// errors.Is(err, ErrStockDrift) es verdadero.
type StockDriftError struct {
	ProductID string
	VariantID string
	Cached    decimal.Decimal
	Actual    decimal.Decimal
}

func (e *StockDriftError) Error() string {
	item := e.ProductID
	if e.VariantID != "" {
		item += "/" + e.VariantID
	}
	return fmt.Sprintf("%s: %s (cacheado %s, capas %s)", ErrStockDrift.Error(), item, e.Cached.String(), e.Actual.String())
}

// Unwrap permite errors.Is(err, ErrStockDrift).
func (e *StockDriftError) Unwrap() error { return ErrStockDrift }

// Difference devuelve actual - cacheado.
func (e *StockDriftError) Difference() decimal.Decimal {
	return e.Actual.Sub(e.Cached)
}

// InsufficientStockError informa cuánto se pidió y cuánto había disponible.
type InsufficientStockError struct {
	ProductID string
	VariantID string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	item := e.ProductID
	if e.VariantID != "" {
		item += "/" + e.VariantID
	}
	return fmt.Sprintf("%s: %s (solicitado %s, disponible %s)", ErrInsufficientStock.Error(), item, e.Requested.String(), e.Available.String())
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
