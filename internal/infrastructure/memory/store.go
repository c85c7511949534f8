package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/jhoicas/Inventario-costeo/internal/domain/entity"
)

// Store guarda el libro de capas en memoria (desarrollo, demos y tests).
// Las transacciones toman bloqueos por artículo y llevan un diario de deshacer; las lecturas
// fuera de transacción pueden ver escrituras aún no confirmadas.
type Store struct {
	mu        sync.RWMutex
	layers    map[string]*entity.InventoryLayer
	seq       int64
	averages  map[entity.ItemKey]*entity.AverageCost
	items     map[entity.ItemKey]*entity.Item
	movements []*entity.InventoryMovement
	charges   []*entity.ReceiptCharge
	locks     *keyLocks
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		layers:   make(map[string]*entity.InventoryLayer),
		averages: make(map[entity.ItemKey]*entity.AverageCost),
		items:    make(map[entity.ItemKey]*entity.Item),
		locks:    &keyLocks{m: make(map[string]chan struct{})},
	}
}

// Repositories devuelve repositorios fuera de transacción: lecturas y carga inicial.
func (s *Store) Repositories() inventory.Repositories {
	return (&session{store: s}).repositories()
}

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks con repositorios transaccionales sobre el Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn; si devuelve error aplica el diario de deshacer en orden inverso.
// Los bloqueos por artículo se liberan siempre al salir.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess := &session{store: r.store, tx: true, held: make(map[string]struct{})}
	defer sess.release()

	if err := fn(sess.repositories()); err != nil {
		sess.rollback()
		return err
	}
	return nil
}

// session agrupa las escrituras de una transacción.
type session struct {
	store *Store
	tx    bool
	undo  []func()
	held  map[string]struct{}
	order []string
}

func (s *session) repositories() inventory.Repositories {
	return inventory.Repositories{
		Layers:    &LayerRepo{sess: s},
		Averages:  &AverageCostRepo{sess: s},
		Items:     &ItemRepo{sess: s},
		Movements: &InventoryMovementRepo{sess: s},
		Charges:   &ReceiptChargeRepo{sess: s},
		Locker:    &Locker{sess: s},
	}
}

// record agrega un paso al diario. Se llama con store.mu tomado.
func (s *session) record(fn func()) {
	if s.tx {
		s.undo = append(s.undo, fn)
	}
}

func (s *session) rollback() {
	if len(s.undo) == 0 {
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for i := len(s.undo) - 1; i >= 0; i-- {
		s.undo[i]()
	}
	s.undo = nil
}

func (s *session) release() {
	for i := len(s.order) - 1; i >= 0; i-- {
		s.store.locks.unlock(s.order[i])
	}
	s.order = nil
	s.held = nil
}

// Locker bloqueo por artículo mientras dure la transacción. Fuera de transacción no hace nada.
type Locker struct {
	sess *session
}

// Lock adquiere las llaves en orden; las ya tomadas por la misma transacción se omiten.
func (l *Locker) Lock(ctx context.Context, keys ...entity.ItemKey) error {
	if !l.sess.tx {
		return nil
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.String())
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := l.sess.held[name]; ok {
			continue
		}
		if err := l.sess.store.locks.lock(ctx, name); err != nil {
			return err
		}
		l.sess.held[name] = struct{}{}
		l.sess.order = append(l.sess.order, name)
	}
	return nil
}

// keyLocks un semáforo de capacidad 1 por llave; permite cancelar la espera con ctx.
type keyLocks struct {
	mu sync.Mutex
	m  map[string]chan struct{}
}

func (k *keyLocks) get(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	ch, ok := k.m[key]
	if !ok {
		ch = make(chan struct{}, 1)
		k.m[key] = ch
	}
	return ch
}

func (k *keyLocks) lock(ctx context.Context, key string) error {
	select {
	case k.get(key) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *keyLocks) unlock(key string) {
	<-k.get(key)
}
