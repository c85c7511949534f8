package inventory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterItem_NuevoArrancaEnCero(t *testing.T) {
	h := newHarness(t, nil)
	price := d("1500")

	it, err := h.catalog.RegisterItem(context.Background(), inventory.RegisterItemInput{
		ProductID: "P1", SKU: "SKU-P1", Name: "Tornillo", StoreID: "tienda-1", Price: &price,
	})
	require.NoError(t, err)
	assert.True(t, it.StockQuantity.IsZero())
	assert.True(t, it.Price.Equal(price))
}

// Re-registrar un artículo con existencias no toca su contador ni los precios omitidos.
func TestRegisterItem_ConservaContadorYPrecios(t *testing.T) {
	h := newHarness(t, nil, item("P1", ""))
	h.receive(t, "P1", t0, "10", "5")
	require.NoError(t, h.store.Repositories().Items.UpdatePrices(context.Background(), entity.NewItemKey("P1", ""), d("5"), d("6"), d("7")))

	it, err := h.catalog.RegisterItem(context.Background(), inventory.RegisterItemInput{
		ProductID: "P1", SKU: "SKU-NUEVO", Name: "Tornillo largo",
	})
	require.NoError(t, err)
	assert.Equal(t, "SKU-NUEVO", it.SKU)
	assert.Equal(t, "10", it.StockQuantity.String())
	assert.Equal(t, "7", it.Price.String())
}

func TestRegisterItem_Validaciones(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.catalog.RegisterItem(context.Background(), inventory.RegisterItemInput{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	neg := decimal.NewFromInt(-1)
	_, err = h.catalog.RegisterItem(context.Background(), inventory.RegisterItemInput{ProductID: "P1", Name: "x", Price: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestGetItem_NoExiste(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.catalog.GetItem(context.Background(), entity.NewItemKey("NO", ""))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovements_HistorialDeEntradasYSalidas(t *testing.T) {
	h := newHarness(t, nil, item("P1", ""))
	h.receive(t, "P1", t0, "10", "5")
	_, err := h.ledger.ConsumeFIFO(context.Background(), inventory.ConsumeInput{ProductID: "P1", Quantity: d("4")})
	require.NoError(t, err)

	movs, err := h.catalog.Movements(context.Background(), entity.NewItemKey("P1", ""), inventory.MovementsQuery{})
	require.NoError(t, err)
	require.Len(t, movs, 2)

	types := []string{movs[0].Type, movs[1].Type}
	assert.ElementsMatch(t, []string{entity.MovementTypeIN, entity.MovementTypeOUT}, types)
}
