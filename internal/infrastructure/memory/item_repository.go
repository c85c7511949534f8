package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ItemRepository        = (*ItemRepo)(nil)
	_ repository.AverageCostRepository = (*AverageCostRepo)(nil)
)

// ItemRepo registro de artículos en memoria.
type ItemRepo struct {
	sess *session
}

// Get devuelve (nil, nil) si el artículo no existe.
func (r *ItemRepo) Get(_ context.Context, key entity.ItemKey) (*entity.Item, error) {
	st := r.sess.store
	st.mu.RLock()
	defer st.mu.RUnlock()
	it, ok := st.items[key]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

// List artículos que cumplen el filtro, ordenados por producto y variante.
func (r *ItemRepo) List(_ context.Context, filter entity.ItemFilter) ([]*entity.Item, error) {
	st := r.sess.store
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*entity.Item, 0, len(st.items))
	for _, it := range st.items {
		if !filter.Matches(it) {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().String() < out[j].Key().String() })
	return out, nil
}

// Upsert crea o reemplaza el artículo.
func (r *ItemRepo) Upsert(_ context.Context, item *entity.Item) error {
	if item.ProductID == "" {
		return fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	st := r.sess.store
	st.mu.Lock()
	defer st.mu.Unlock()
	r.snapshot(item.Key())
	cp := *item
	st.items[item.Key()] = &cp
	return nil
}

// SetStockQuantity reemplaza el contador agregado.
func (r *ItemRepo) SetStockQuantity(_ context.Context, key entity.ItemKey, quantity decimal.Decimal) error {
	return r.mutate(key, func(it *entity.Item) { it.StockQuantity = quantity })
}

// AdjustStockQuantity suma delta al contador agregado.
func (r *ItemRepo) AdjustStockQuantity(_ context.Context, key entity.ItemKey, delta decimal.Decimal) error {
	return r.mutate(key, func(it *entity.Item) { it.StockQuantity = it.StockQuantity.Add(delta) })
}

// UpdatePrices escribe costo, mayorista y detal.
func (r *ItemRepo) UpdatePrices(_ context.Context, key entity.ItemKey, cost, wholesale, retail decimal.Decimal) error {
	return r.mutate(key, func(it *entity.Item) {
		it.CostPrice = cost
		it.WholesalePrice = wholesale
		it.Price = retail
	})
}

func (r *ItemRepo) mutate(key entity.ItemKey, fn func(*entity.Item)) error {
	st := r.sess.store
	st.mu.Lock()
	defer st.mu.Unlock()
	it, ok := st.items[key]
	if !ok {
		return fmt.Errorf("%w: artículo %s", domain.ErrNotFound, key.String())
	}
	r.snapshot(key)
	cp := *it
	fn(&cp)
	cp.UpdatedAt = time.Now()
	st.items[key] = &cp
	return nil
}

// snapshot registra el estado previo del artículo para deshacer. Requiere store.mu tomado.
func (r *ItemRepo) snapshot(key entity.ItemKey) {
	st := r.sess.store
	prev, existed := st.items[key]
	r.sess.record(func() {
		if existed {
			st.items[key] = prev
		} else {
			delete(st.items, key)
		}
	})
}

// AverageCostRepo costo promedio móvil en memoria.
type AverageCostRepo struct {
	sess *session
}

// Get devuelve (nil, nil) si no hay promedio.
func (r *AverageCostRepo) Get(_ context.Context, key entity.ItemKey) (*entity.AverageCost, error) {
	st := r.sess.store
	st.mu.RLock()
	defer st.mu.RUnlock()
	a, ok := st.averages[key]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// GetForUpdate igual que Get; el bloqueo lo da el Locker del artículo.
func (r *AverageCostRepo) GetForUpdate(ctx context.Context, key entity.ItemKey) (*entity.AverageCost, error) {
	return r.Get(ctx, key)
}

// Upsert crea o reemplaza el promedio del artículo.
func (r *AverageCostRepo) Upsert(_ context.Context, avg *entity.AverageCost) error {
	st := r.sess.store
	st.mu.Lock()
	defer st.mu.Unlock()
	key := avg.Key()
	r.snapshot(key)
	cp := *avg
	st.averages[key] = &cp
	return nil
}

// Delete elimina el promedio del artículo (fusión).
func (r *AverageCostRepo) Delete(_ context.Context, key entity.ItemKey) error {
	st := r.sess.store
	st.mu.Lock()
	defer st.mu.Unlock()
	r.snapshot(key)
	delete(st.averages, key)
	return nil
}

func (r *AverageCostRepo) snapshot(key entity.ItemKey) {
	st := r.sess.store
	prev, existed := st.averages[key]
	r.sess.record(func() {
		if existed {
			st.averages[key] = prev
		} else {
			delete(st.averages, key)
		}
	})
}
