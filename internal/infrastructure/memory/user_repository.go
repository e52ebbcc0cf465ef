package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo cuentas de usuario en memoria; el email es único.
type UserRepo struct {
	v *view
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.users[user.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, u := range st.users {
			if u.Email == user.Email {
				return domain.ErrDuplicate
			}
		}
		cp := *user
		st.users[user.ID] = &cp
		return nil
	})
}

func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.users[user.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cp := *user
		cp.CreatedAt = cur.CreatedAt
		st.users[user.ID] = &cp
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.v.with(func(st *state) error {
		if u, ok := st.users[id]; ok {
			cp := *u
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.v.with(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				cp := *u
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) ListByTeam(_ context.Context, teamID string, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	err := r.v.with(func(st *state) error {
		for _, u := range st.users {
			if u.TeamID == teamID {
				cp := *u
				out = append(out, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return paginate(out, limit, offset), nil
}
