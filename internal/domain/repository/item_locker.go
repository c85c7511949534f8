package repository

import (
	"context"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
)

// ItemLocker serializa las escrituras sobre un mismo artículo dentro de una transacción.
// Los bloqueos se liberan al terminar la transacción. Tomar varias llaves en una sola
// llamada las adquiere en orden estable.
type ItemLocker interface {
	Lock(ctx context.Context, keys ...entity.ItemKey) error
}
