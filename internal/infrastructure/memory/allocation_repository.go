package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.AllocationRepository = (*AllocationRepo)(nil)

// AllocationRepo asignaciones lugar-artículo en memoria.
type AllocationRepo struct {
	v *view
}

func (r *AllocationRepo) GetForUpdate(_ context.Context, placeID, itemID string) (*entity.PlaceAllocation, error) {
	var out *entity.PlaceAllocation
	err := r.v.with(func(st *state) error {
		if a, ok := st.allocations[allocKey{placeID, itemID}]; ok {
			cp := *a
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *AllocationRepo) EnsureForUpdate(_ context.Context, placeID, itemID string) (*entity.PlaceAllocation, error) {
	var out *entity.PlaceAllocation
	err := r.v.with(func(st *state) error {
		if _, ok := st.places[placeID]; !ok {
			return fmt.Errorf("ensure allocation: %w", domain.ErrNotFound)
		}
		if _, ok := st.items[itemID]; !ok {
			return fmt.Errorf("ensure allocation: %w", domain.ErrNotFound)
		}
		k := allocKey{placeID, itemID}
		a, ok := st.allocations[k]
		if !ok {
			now := r.v.now()
			a = &entity.PlaceAllocation{
				ID:        uuid.New().String(),
				PlaceID:   placeID,
				ItemID:    itemID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			st.allocations[k] = a
		}
		cp := *a
		out = &cp
		return nil
	})
	return out, err
}

func (r *AllocationRepo) SetQuantity(_ context.Context, id string, quantity int64) error {
	return r.v.with(func(st *state) error {
		if quantity < 0 {
			return fmt.Errorf("update allocation: valor negativo %d", quantity)
		}
		for _, a := range st.allocations {
			if a.ID == id {
				a.AllocatedQuantity = quantity
				a.UpdatedAt = r.v.now()
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *AllocationRepo) Delete(_ context.Context, placeID, itemID string) (bool, error) {
	var existed bool
	err := r.v.with(func(st *state) error {
		k := allocKey{placeID, itemID}
		_, existed = st.allocations[k]
		delete(st.allocations, k)
		return nil
	})
	return existed, err
}

func (r *AllocationRepo) ListByPlace(_ context.Context, placeID string) ([]*entity.AllocatedItem, error) {
	var out []*entity.AllocatedItem
	err := r.v.with(func(st *state) error {
		for k, a := range st.allocations {
			if k.placeID != placeID {
				continue
			}
			it, ok := st.items[k.itemID]
			if !ok {
				continue
			}
			out = append(out, &entity.AllocatedItem{Allocation: *a, Item: *it.Clone()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Item.Name != out[j].Item.Name {
			return out[i].Item.Name < out[j].Item.Name
		}
		return out[i].Item.ID < out[j].Item.ID
	})
	return out, nil
}
