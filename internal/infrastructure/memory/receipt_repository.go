package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var (
	_ repository.ReceiptRepository       = (*ReceiptRepo)(nil)
	_ repository.IdempotencyRepository   = (*IdempotencyRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

// ReceiptRepo recibos en memoria (solo inserción).
type ReceiptRepo struct {
	v *view
}

func (r *ReceiptRepo) Create(_ context.Context, receipt *entity.Receipt) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.receipts[receipt.ID]; ok {
			return domain.ErrDuplicate
		}
		c := receipt.Clone()
		for i := range c.Lines {
			if c.Lines[i].ID == "" {
				c.Lines[i].ID = uuid.New().String()
			}
			c.Lines[i].ReceiptID = c.ID
		}
		st.receipts[c.ID] = c
		return nil
	})
}

func (r *ReceiptRepo) GetByID(_ context.Context, id string) (*entity.Receipt, error) {
	var out *entity.Receipt
	err := r.v.with(func(st *state) error {
		out = st.receipts[id].Clone()
		return nil
	})
	return out, err
}

func (r *ReceiptRepo) byPlace(placeID string) ([]*entity.Receipt, error) {
	var out []*entity.Receipt
	err := r.v.with(func(st *state) error {
		for _, rc := range st.receipts {
			if rc.PlaceID == placeID {
				out = append(out, rc.Clone())
			}
		}
		return nil
	})
	return out, err
}

func (r *ReceiptRepo) ListByPlace(_ context.Context, placeID string, limit, offset int) ([]*entity.Receipt, int, error) {
	list, err := r.byPlace(placeID)
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return paginate(list, limit, offset), len(list), nil
}

func (r *ReceiptRepo) ListByPlaceBetween(_ context.Context, placeID string, from, to time.Time) ([]*entity.Receipt, error) {
	list, err := r.byPlace(placeID)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Receipt, 0, len(list))
	for _, rc := range list {
		if !rc.CreatedAt.Before(from) && rc.CreatedAt.Before(to) {
			out = append(out, rc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ReceiptRepo) NetSoldQuantity(_ context.Context, placeID, itemID string) (int64, error) {
	var net int64
	err := r.v.with(func(st *state) error {
		for _, rc := range st.receipts {
			if rc.PlaceID != placeID {
				continue
			}
			for _, l := range rc.Lines {
				if l.ItemID != itemID {
					continue
				}
				if rc.PaymentMethod == entity.PaymentRefund {
					net -= l.Quantity
				} else {
					net += l.Quantity
				}
			}
		}
		return nil
	})
	return net, err
}

// IdempotencyRepo llaves de idempotencia en memoria.
type IdempotencyRepo struct {
	v *view
}

func idemKey(teamID, key string) string { return teamID + "|" + key }

func (r *IdempotencyRepo) Get(_ context.Context, teamID, key string) (*entity.IdempotencyRecord, error) {
	var out *entity.IdempotencyRecord
	err := r.v.with(func(st *state) error {
		if rec, ok := st.idempotency[idemKey(teamID, key)]; ok {
			cp := *rec
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *IdempotencyRepo) Create(_ context.Context, record *entity.IdempotencyRecord) error {
	return r.v.with(func(st *state) error {
		k := idemKey(record.TeamID, record.Key)
		if _, ok := st.idempotency[k]; ok {
			return domain.ErrDuplicate
		}
		cp := *record
		st.idempotency[k] = &cp
		return nil
	})
}

// StockMovementRepo libro de movimientos en memoria.
type StockMovementRepo struct {
	v *view
}

func (r *StockMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	return r.v.with(func(st *state) error {
		cp := *movement
		st.movements = append(st.movements, &cp)
		return nil
	})
}

func (r *StockMovementRepo) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.v.with(func(st *state) error {
		// más recientes primero: recorrer al revés conserva el orden de inserción como desempate
		for i := len(st.movements) - 1; i >= 0; i-- {
			if st.movements[i].ItemID == itemID {
				cp := *st.movements[i]
				out = append(out, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(out, limit, offset), nil
}
