package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo artículos en memoria. Replica las restricciones únicas de PostgreSQL:
// SKU único por equipo y (equipo, nombre, color, SKU) único.
type ItemRepo struct {
	v *view
}

func conflicts(st *state, it *entity.Item) bool {
	for _, other := range st.items {
		if other.ID == it.ID || other.TeamID != it.TeamID {
			continue
		}
		if it.SKU != "" && other.SKU == it.SKU {
			return true
		}
		if strings.EqualFold(other.Name, it.Name) && strings.EqualFold(other.Color, it.Color) && other.SKU == it.SKU {
			return true
		}
	}
	return false
}

func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.items[item.ID]; ok {
			return domain.ErrDuplicate
		}
		if conflicts(st, item) {
			return domain.ErrDuplicate
		}
		if item.WarehouseStock < 0 {
			return fmt.Errorf("insert item: warehouse_stock negativo")
		}
		st.items[item.ID] = item.Clone()
		return nil
	})
}

// Update no toca WarehouseStock: el stock solo cambia vía SetWarehouseStock.
func (r *ItemRepo) Update(_ context.Context, item *entity.Item) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.items[item.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if conflicts(st, item) {
			return domain.ErrDuplicate
		}
		next := item.Clone()
		next.WarehouseStock = cur.WarehouseStock
		next.CreatedAt = cur.CreatedAt
		st.items[item.ID] = next
		return nil
	})
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	var out *entity.Item
	err := r.v.with(func(st *state) error {
		out = st.items[id].Clone()
		return nil
	})
	return out, err
}

func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) FindByNameForUpdate(_ context.Context, teamID, name, color string) (*entity.Item, error) {
	var out *entity.Item
	err := r.v.with(func(st *state) error {
		for _, it := range st.items {
			if it.TeamID == teamID && strings.EqualFold(it.Name, name) && strings.EqualFold(it.Color, color) {
				if out == nil || it.ID < out.ID {
					out = it
				}
			}
		}
		out = out.Clone()
		return nil
	})
	return out, err
}

func matches(it *entity.Item, teamID string, f repository.ItemFilter) bool {
	if it.TeamID != teamID {
		return false
	}
	if f.ActiveOnly && !it.Active {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" && !containsFold(it.Name, q) && !containsFold(it.SKU, q) {
		return false
	}
	return true
}

func (r *ItemRepo) List(_ context.Context, teamID string, f repository.ItemFilter) ([]*entity.Item, error) {
	var out []*entity.Item
	err := r.v.with(func(st *state) error {
		for _, it := range st.items {
			if matches(it, teamID, f) {
				out = append(out, it.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortedItems(out)
	return paginate(out, f.Limit, f.Offset), nil
}

func (r *ItemRepo) Count(_ context.Context, teamID string, f repository.ItemFilter) (int, error) {
	n := 0
	err := r.v.with(func(st *state) error {
		for _, it := range st.items {
			if matches(it, teamID, f) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ItemRepo) SetWarehouseStock(_ context.Context, id string, quantity int64) error {
	return r.v.with(func(st *state) error {
		it, ok := st.items[id]
		if !ok {
			return domain.ErrNotFound
		}
		if quantity < 0 {
			return fmt.Errorf("update warehouse stock: valor negativo %d", quantity)
		}
		it.WarehouseStock = quantity
		it.UpdatedAt = r.v.now()
		return nil
	})
}

func hasReferences(st *state, id string) bool {
	for k := range st.allocations {
		if k.itemID == id {
			return true
		}
	}
	for _, rc := range st.receipts {
		for _, l := range rc.Lines {
			if l.ItemID == id {
				return true
			}
		}
	}
	return false
}

func (r *ItemRepo) HasReferences(_ context.Context, id string) (bool, error) {
	var refs bool
	err := r.v.with(func(st *state) error {
		refs = hasReferences(st, id)
		return nil
	})
	return refs, err
}

// Delete emula ON DELETE RESTRICT de las llaves foráneas.
func (r *ItemRepo) Delete(_ context.Context, id string) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.items[id]; !ok {
			return domain.ErrNotFound
		}
		if hasReferences(st, id) {
			return domain.ErrConflict
		}
		delete(st.items, id)
		return nil
	})
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
