package repository

import (
	"context"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
)

// ReceiptChargeRepository persiste los cargos ya usados en una asignación.
type ReceiptChargeRepository interface {
	CreateBatch(ctx context.Context, charges []*entity.ReceiptCharge) error
	ListByReceipt(ctx context.Context, receiptID string) ([]*entity.ReceiptCharge, error)
}
