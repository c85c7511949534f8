package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

var (
	_ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)
	_ repository.ReceiptChargeRepository     = (*ReceiptChargeRepo)(nil)
)

// InventoryMovementRepo auditoría de movimientos en memoria.
type InventoryMovementRepo struct {
	sess *session
}

// Create agrega el movimiento; asigna ID si viene vacío.
func (r *InventoryMovementRepo) Create(_ context.Context, movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	st := r.sess.store
	st.mu.Lock()
	defer st.mu.Unlock()
	cp := *movement
	st.movements = append(st.movements, &cp)
	id := cp.ID
	r.sess.record(func() {
		st.movements = removeMovement(st.movements, id)
	})
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *InventoryMovementRepo) GetByID(_ context.Context, id string) (*entity.InventoryMovement, error) {
	st := r.sess.store
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, m := range st.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

// ListByItem movimientos del artículo, más recientes primero.
func (r *InventoryMovementRepo) ListByItem(_ context.Context, key entity.ItemKey, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	st := r.sess.store
	st.mu.RLock()
	out := make([]*entity.InventoryMovement, 0)
	for _, m := range st.movements {
		if m.ProductID != key.ProductID || m.VariantID != key.VariantID {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	st.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if offset > len(out) {
		return []*entity.InventoryMovement{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func removeMovement(list []*entity.InventoryMovement, id string) []*entity.InventoryMovement {
	for i, m := range list {
		if m.ID == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// ReceiptChargeRepo cargos de embarque en memoria.
type ReceiptChargeRepo struct {
	sess *session
}

// CreateBatch agrega los cargos de una asignación.
func (r *ReceiptChargeRepo) CreateBatch(_ context.Context, charges []*entity.ReceiptCharge) error {
	st := r.sess.store
	st.mu.Lock()
	defer st.mu.Unlock()
	ids := make(map[string]struct{}, len(charges))
	for _, c := range charges {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		cp := *c
		st.charges = append(st.charges, &cp)
		ids[cp.ID] = struct{}{}
	}
	r.sess.record(func() {
		kept := st.charges[:0]
		for _, c := range st.charges {
			if _, ok := ids[c.ID]; !ok {
				kept = append(kept, c)
			}
		}
		st.charges = kept
	})
	return nil
}

// ListByReceipt cargos registrados de un embarque.
func (r *ReceiptChargeRepo) ListByReceipt(_ context.Context, receiptID string) ([]*entity.ReceiptCharge, error) {
	st := r.sess.store
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*entity.ReceiptCharge, 0)
	for _, c := range st.charges {
		if c.ReceiptID == receiptID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}
