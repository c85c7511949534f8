package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.LayerRepository = (*LayerRepo)(nil)

// LayerRepo capas en memoria. Devuelve copias para que el llamador no altere el store.
type LayerRepo struct {
	sess *session
}

// Create inserta la capa y asigna Seq.
func (r *LayerRepo) Create(_ context.Context, layer *entity.InventoryLayer) error {
	st := r.sess.store
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.layers[layer.ID]; ok {
		return fmt.Errorf("%w: capa %s ya existe", domain.ErrConflict, layer.ID)
	}
	st.seq++
	layer.Seq = st.seq
	cp := *layer
	st.layers[layer.ID] = &cp
	id := layer.ID
	r.sess.record(func() { delete(st.layers, id) })
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *LayerRepo) GetByID(_ context.Context, id string) (*entity.InventoryLayer, error) {
	st := r.sess.store
	st.mu.RLock()
	defer st.mu.RUnlock()
	l, ok := st.layers[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

// ListRemainingForUpdate en memoria el bloqueo ya lo da el Locker del artículo.
func (r *LayerRepo) ListRemainingForUpdate(ctx context.Context, key entity.ItemKey) ([]*entity.InventoryLayer, error) {
	return r.ListRemaining(ctx, key, nil)
}

// ListRemaining capas con existencias del artículo en orden FIFO.
func (r *LayerRepo) ListRemaining(_ context.Context, key entity.ItemKey, asOf *time.Time) ([]*entity.InventoryLayer, error) {
	return r.list(func(l *entity.InventoryLayer) bool { return l.Key() == key }, asOf), nil
}

// ListAllRemaining capas con existencias de todos los artículos.
func (r *LayerRepo) ListAllRemaining(_ context.Context, asOf *time.Time) ([]*entity.InventoryLayer, error) {
	return r.list(func(*entity.InventoryLayer) bool { return true }, asOf), nil
}

func (r *LayerRepo) list(match func(*entity.InventoryLayer) bool, asOf *time.Time) []*entity.InventoryLayer {
	st := r.sess.store
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*entity.InventoryLayer, 0)
	for _, l := range st.layers {
		if l.IsDepleted() || !match(l) {
			continue
		}
		if asOf != nil && l.ReceivedAt.After(*asOf) {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	inventory.SortFIFO(out)
	return out
}

// DecrementRemaining resta quantity de la capa; no permite saldo negativo.
func (r *LayerRepo) DecrementRemaining(_ context.Context, layerID string, quantity decimal.Decimal) error {
	st := r.sess.store
	st.mu.Lock()
	defer st.mu.Unlock()
	l, ok := st.layers[layerID]
	if !ok {
		return fmt.Errorf("%w: capa %s", domain.ErrNotFound, layerID)
	}
	if l.QuantityRemaining.LessThan(quantity) {
		return fmt.Errorf("%w: capa %s", domain.ErrInsufficientStock, layerID)
	}
	prev := l.QuantityRemaining
	l.QuantityRemaining = prev.Sub(quantity)
	r.sess.record(func() { l.QuantityRemaining = prev })
	return nil
}

// Reassign cambia el dueño de todas las capas de from, agotadas incluidas.
func (r *LayerRepo) Reassign(_ context.Context, from, to entity.ItemKey) (int64, error) {
	st := r.sess.store
	st.mu.Lock()
	defer st.mu.Unlock()
	var n int64
	for _, l := range st.layers {
		if l.Key() != from {
			continue
		}
		layer := l
		layer.ProductID, layer.VariantID = to.ProductID, to.VariantID
		r.sess.record(func() { layer.ProductID, layer.VariantID = from.ProductID, from.VariantID })
		n++
	}
	return n, nil
}

// SumRemaining suma de existencias del artículo.
func (r *LayerRepo) SumRemaining(_ context.Context, key entity.ItemKey) (decimal.Decimal, error) {
	st := r.sess.store
	st.mu.RLock()
	defer st.mu.RUnlock()
	total := decimal.Zero
	for _, l := range st.layers {
		if l.Key() == key {
			total = total.Add(l.QuantityRemaining)
		}
	}
	return total, nil
}
