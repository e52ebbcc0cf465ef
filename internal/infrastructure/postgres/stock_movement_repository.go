package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos. item_id sin FK: el rastro sobrevive al borrado del artículo.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del libro de movimientos.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, team_id, item_id, place_id, type, warehouse_delta, allocation_delta,
			reference_id, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query, m.ID, m.TeamID, m.ItemID, nullable(m.PlaceID), m.Type, m.WarehouseDelta,
		m.AllocationDelta, nullable(m.ReferenceID), m.Reason, m.CreatedBy, m.CreatedAt)
	if err != nil {
		return wrap("insert stock movement", err)
	}
	return nil
}

// ListByItem movimientos del artículo, más recientes primero.
func (r *StockMovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, team_id, item_id, place_id, type, warehouse_delta, allocation_delta, reference_id, reason, created_by, created_at
		FROM stock_movements WHERE item_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT NULLIF($2, 0) OFFSET $3`
	rows, err := r.q.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, wrap("list stock movements", err)
	}
	defer rows.Close()

	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		var (
			m           entity.StockMovement
			place, refe *string
		)
		if err := rows.Scan(&m.ID, &m.TeamID, &m.ItemID, &place, &m.Type, &m.WarehouseDelta, &m.AllocationDelta,
			&refe, &m.Reason, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, wrap("scan stock movement", err)
		}
		m.PlaceID = deref(place)
		m.ReferenceID = deref(refe)
		list = append(list, &m)
	}
	return list, rows.Err()
}
