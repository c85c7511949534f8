package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
	"github.com/jhoicas/Inventario-costeo/internal/domain/repository"
)

var _ repository.ItemLocker = (*AdvisoryLocker)(nil)

// AdvisoryLocker bloqueo por artículo con pg_advisory_xact_lock; se libera al terminar la tx.
// Solo tiene sentido con un Querier que sea pgx.Tx.
type AdvisoryLocker struct {
	q Querier
}

// NewAdvisoryLocker construye el locker atado a la transacción.
func NewAdvisoryLocker(q Querier) *AdvisoryLocker {
	return &AdvisoryLocker{q: q}
}

// Lock toma los bloqueos en orden de llave para evitar interbloqueos entre transacciones.
// Repetir una llave dentro de la misma tx es inocuo (el bloqueo es reentrante).
func (l *AdvisoryLocker) Lock(ctx context.Context, keys ...entity.ItemKey) error {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.String())
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := l.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "costing:"+name); err != nil {
			return fmt.Errorf("lock item %s: %w", name, err)
		}
	}
	return nil
}

// noopLocker para repositorios atados al pool (solo lecturas).
type noopLocker struct{}

func (noopLocker) Lock(context.Context, ...entity.ItemKey) error { return nil }
