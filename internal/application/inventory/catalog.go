package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/pkg/logger"
	"github.com/shopspring/decimal"
)

// CatalogUseCase mantiene el registro de artículos que el motor costea y expone su historial
// de movimientos. El contador de stock no se edita aquí.
type CatalogUseCase struct {
	deps Deps
	log  *logger.Logger
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(deps Deps) *CatalogUseCase {
	deps = deps.withDefaults()
	return &CatalogUseCase{deps: deps, log: deps.Logger.Component("catalog")}
}

// RegisterItemInput datos descriptivos del artículo. Los precios nil conservan los actuales.
type RegisterItemInput struct {
	ProductID      string
	VariantID      string
	SKU            string
	Name           string
	StoreID        string
	CategoryID     string
	CostPrice      *decimal.Decimal
	WholesalePrice *decimal.Decimal
	Price          *decimal.Decimal
}

// Key devuelve la llave del artículo.
func (in RegisterItemInput) Key() entity.ItemKey {
	return entity.NewItemKey(in.ProductID, in.VariantID)
}

// RegisterItem crea o actualiza el artículo. Un artículo nuevo arranca con contador en cero;
// uno existente conserva su contador.
func (uc *CatalogUseCase) RegisterItem(ctx context.Context, in RegisterItemInput) (*entity.Item, error) {
	key := in.Key()
	if strings.TrimSpace(key.ProductID) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: producto y nombre requeridos", domain.ErrInvalidInput)
	}
	for _, p := range []*decimal.Decimal{in.CostPrice, in.WholesalePrice, in.Price} {
		if p != nil && p.IsNegative() {
			return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidQuantity)
		}
	}
	var out *entity.Item
	err := uc.deps.TxRunner.Run(ctx, func(r Repositories) error {
		if err := r.Locker.Lock(ctx, key); err != nil {
			return err
		}
		cur, err := r.Items.Get(ctx, key)
		if err != nil {
			return err
		}
		item := &entity.Item{ProductID: key.ProductID, VariantID: key.VariantID}
		if cur != nil {
			*item = *cur
		}
		item.SKU = in.SKU
		item.Name = in.Name
		item.StoreID = in.StoreID
		item.CategoryID = in.CategoryID
		if in.CostPrice != nil {
			item.CostPrice = *in.CostPrice
		}
		if in.WholesalePrice != nil {
			item.WholesalePrice = *in.WholesalePrice
		}
		if in.Price != nil {
			item.Price = *in.Price
		}
		if err := r.Items.Upsert(ctx, item); err != nil {
			return err
		}
		out, err = r.Items.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.deps.committed(ctx)
	uc.log.Debug().Str("item", key.String()).Msg("artículo registrado")
	return out, nil
}

// GetItem devuelve el artículo o domain.ErrNotFound.
func (uc *CatalogUseCase) GetItem(ctx context.Context, key entity.ItemKey) (*entity.Item, error) {
	if key.IsZero() {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	item, err := uc.deps.Reads.Items.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, key.String())
	}
	return item, nil
}

// ListItems artículos del registro filtrados por tienda, categoría o producto.
func (uc *CatalogUseCase) ListItems(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error) {
	return uc.deps.Reads.Items.List(ctx, filter)
}

// MovementsQuery filtro del historial; limit <= 0 usa 50.
type MovementsQuery struct {
	From, To *time.Time
	Limit    int
	Offset   int
}

// Movements historial del artículo, más recientes primero.
func (uc *CatalogUseCase) Movements(ctx context.Context, key entity.ItemKey, q MovementsQuery) ([]*entity.InventoryMovement, error) {
	if key.IsZero() {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return uc.deps.Reads.Movements.ListByItem(ctx, key, q.From, q.To, q.Limit, q.Offset)
}
