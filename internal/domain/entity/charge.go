package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de cargo compartido de un embarque.
const (
	ChargeFreight  = "freight"
	ChargeClearing = "clearing"
	ChargeCustoms  = "customs"
	ChargeHandling = "handling"
	ChargeOther    = "other"
)

// Charge es un costo del embarque que no se atribuye a un artículo a priori.
type Charge struct {
	Type        string
	Description string
	Amount      decimal.Decimal
	Currency    string
}

// IsValidChargeType valida el tipo de cargo.
func IsValidChargeType(t string) bool {
	switch t {
	case ChargeFreight, ChargeClearing, ChargeCustoms, ChargeHandling, ChargeOther:
		return true
	}
	return false
}

// ReceiptCharge registro persistido de un cargo usado en una asignación (no se vuelve a consumir).
type ReceiptCharge struct {
	ID          string
	ReceiptID   string
	Type        string
	Description string
	Amount      decimal.Decimal
	Currency    string
	HomeAmount  decimal.Decimal // monto convertido a moneda local
	CreatedAt   time.Time
}
