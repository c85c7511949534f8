package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

var _ repository.ReceiptChargeRepository = (*ReceiptChargeRepo)(nil)

// ReceiptChargeRepo cargos de embarque sobre PostgreSQL.
type ReceiptChargeRepo struct {
	q Querier
}

// NewReceiptChargeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptChargeRepository(q Querier) *ReceiptChargeRepo {
	return &ReceiptChargeRepo{q: q}
}

// CreateBatch inserta los cargos en un solo viaje (pgx.Batch).
func (r *ReceiptChargeRepo) CreateBatch(ctx context.Context, charges []*entity.ReceiptCharge) error {
	if len(charges) == 0 {
		return nil
	}
	query := `
		INSERT INTO receipt_charges (id, receipt_id, type, description, amount, currency, home_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	batch := &pgx.Batch{}
	for _, c := range charges {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		batch.Queue(query, c.ID, c.ReceiptID, c.Type, c.Description, c.Amount, c.Currency, c.HomeAmount, c.CreatedAt)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range charges {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert receipt charge: %w", err)
		}
	}
	return nil
}

// ListByReceipt cargos registrados de un embarque.
func (r *ReceiptChargeRepo) ListByReceipt(ctx context.Context, receiptID string) ([]*entity.ReceiptCharge, error) {
	query := `
		SELECT id, receipt_id, type, description, amount, currency, home_amount, created_at
		FROM receipt_charges WHERE receipt_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, receiptID)
	if err != nil {
		return nil, fmt.Errorf("list receipt charges: %w", err)
	}
	defer rows.Close()
	var out []*entity.ReceiptCharge
	for rows.Next() {
		var c entity.ReceiptCharge
		if err := rows.Scan(&c.ID, &c.ReceiptID, &c.Type, &c.Description, &c.Amount, &c.Currency, &c.HomeAmount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan receipt charge: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
