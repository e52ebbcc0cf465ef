// Package memory implementa los puertos de persistencia en memoria.
// Se usa en tests y con STORE_DRIVER=memory. Las transacciones se serializan con un mutex:
// el callback trabaja sobre una copia del estado y la copia reemplaza al original solo si
// el callback termina sin error, lo que da rollback real.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

type allocKey struct {
	placeID string
	itemID  string
}

type state struct {
	items       map[string]*entity.Item
	places      map[string]*entity.Place
	allocations map[allocKey]*entity.PlaceAllocation
	receipts    map[string]*entity.Receipt
	idempotency map[string]*entity.IdempotencyRecord // teamID|key
	movements   []*entity.StockMovement
	users       map[string]*entity.User
}

func newState() *state {
	return &state{
		items:       make(map[string]*entity.Item),
		places:      make(map[string]*entity.Place),
		allocations: make(map[allocKey]*entity.PlaceAllocation),
		receipts:    make(map[string]*entity.Receipt),
		idempotency: make(map[string]*entity.IdempotencyRecord),
		users:       make(map[string]*entity.User),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.items {
		c.items[k] = v.Clone()
	}
	for k, v := range s.places {
		p := *v
		c.places[k] = &p
	}
	for k, v := range s.allocations {
		a := *v
		c.allocations[k] = &a
	}
	for k, v := range s.receipts {
		c.receipts[k] = v.Clone()
	}
	for k, v := range s.idempotency {
		r := *v
		c.idempotency[k] = &r
	}
	c.movements = make([]*entity.StockMovement, len(s.movements))
	for i, m := range s.movements {
		mv := *m
		c.movements[i] = &mv
	}
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	return c
}

// Store estado compartido en memoria.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// Repos devuelve repositorios que operan fuera de transacción (cada llamada toma el mutex).
func (s *Store) Repos() repository.TxRepos {
	return s.reposFor(&view{store: s, locked: false})
}

func (s *Store) reposFor(v *view) repository.TxRepos {
	return repository.TxRepos{
		Items:       &ItemRepo{v: v},
		Places:      &PlaceRepo{v: v},
		Allocations: &AllocationRepo{v: v},
		Receipts:    &ReceiptRepo{v: v},
		Idempotency: &IdempotencyRepo{v: v},
		Movements:   &StockMovementRepo{v: v},
		Users:       &UserRepo{v: v},
	}
}

// view da acceso al estado: el de la tienda (tomando el mutex) o una copia transaccional.
type view struct {
	store  *Store
	tx     *state
	locked bool // true dentro de Run: el mutex ya está tomado
}

func (v *view) with(fn func(st *state) error) error {
	if v.locked {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

func (v *view) now() time.Time { return v.store.now() }

func sortedItems(list []*entity.Item) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
