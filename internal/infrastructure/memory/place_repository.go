package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.PlaceRepository = (*PlaceRepo)(nil)

// PlaceRepo lugares de venta en memoria.
type PlaceRepo struct {
	v *view
}

func (r *PlaceRepo) Create(_ context.Context, place *entity.Place) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.places[place.ID]; ok {
			return domain.ErrDuplicate
		}
		p := *place
		st.places[place.ID] = &p
		return nil
	})
}

func (r *PlaceRepo) Update(_ context.Context, place *entity.Place) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.places[place.ID]
		if !ok {
			return domain.ErrNotFound
		}
		p := *place
		p.CreatedAt = cur.CreatedAt
		st.places[place.ID] = &p
		return nil
	})
}

func (r *PlaceRepo) GetByID(_ context.Context, id string) (*entity.Place, error) {
	var out *entity.Place
	err := r.v.with(func(st *state) error {
		if p, ok := st.places[id]; ok {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *PlaceRepo) ListByTeam(_ context.Context, teamID string, limit, offset int) ([]*entity.Place, error) {
	var out []*entity.Place
	err := r.v.with(func(st *state) error {
		for _, p := range st.places {
			if p.TeamID == teamID {
				cp := *p
				out = append(out, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, limit, offset), nil
}
