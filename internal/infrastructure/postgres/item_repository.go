package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para artículos. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, team_id, name, sku, category_id, measurement_type, price, cost_price, tax_rate_bps,
	active, color, size, brand, tags, image_url, warehouse_stock, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*entity.Item, error) {
	var (
		it   entity.Item
		sku  *string
		mt   string
		cost decimal.NullDecimal
		tags []string
	)
	err := row.Scan(&it.ID, &it.TeamID, &it.Name, &sku, &it.CategoryID, &mt, &it.Price, &cost, &it.TaxRateBps,
		&it.Active, &it.Color, &it.Size, &it.Brand, &tags, &it.ImageURL, &it.WarehouseStock, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.SKU = deref(sku)
	it.MeasurementType = measure.Type(mt)
	if cost.Valid {
		c := cost.Decimal
		it.CostPrice = &c
	}
	if len(tags) > 0 {
		it.Tags = tags
	}
	return &it, nil
}

func costArg(c *decimal.Decimal) decimal.NullDecimal {
	if c == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *c, Valid: true}
}

func tagsArg(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// Create persiste un nuevo artículo. Un SKU vacío se guarda como NULL para no chocar con el índice único.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (id, team_id, name, sku, category_id, measurement_type, price, cost_price, tax_rate_bps,
			active, color, size, brand, tags, image_url, warehouse_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.TeamID, item.Name, nullable(item.SKU), item.CategoryID, string(item.MeasurementType),
		item.Price, costArg(item.CostPrice), item.TaxRateBps, item.Active, item.Color, item.Size, item.Brand,
		tagsArg(item.Tags), item.ImageURL, item.WarehouseStock, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert item", err)
	}
	return nil
}

// Update actualiza atributos de catálogo. warehouse_stock no se toca aquí.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, sku = $3, category_id = $4, price = $5, cost_price = $6, tax_rate_bps = $7,
			active = $8, color = $9, size = $10, brand = $11, tags = $12, image_url = $13, updated_at = $14
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		item.ID, item.Name, nullable(item.SKU), item.CategoryID, item.Price, costArg(item.CostPrice), item.TaxRateBps,
		item.Active, item.Color, item.Size, item.Brand, tagsArg(item.Tags), item.ImageURL, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("update item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	return it, nil
}

// GetByID obtiene un artículo por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, "get item", `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero con FOR UPDATE; solo tiene sentido dentro de una tx.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, "get item for update", `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
}

// itemNameLock serializa dentro de la transacción a quienes buscan o crean el mismo
// (equipo, nombre, color), exista o no la fila.
const itemNameLock = `SELECT pg_advisory_xact_lock(hashtext($1 || '|' || lower($2) || '|' || lower($3)))`

// FindByNameForUpdate busca por nombre y color sin distinguir mayúsculas. Si hay varias filas
// (distinto SKU) se toma la de menor id para que el resultado sea estable. Antes toma el
// candado consultivo del nombre: FOR UPDATE no bloquea nada cuando la fila aún no existe.
func (r *ItemRepo) FindByNameForUpdate(ctx context.Context, teamID, name, color string) (*entity.Item, error) {
	if _, err := r.q.Exec(ctx, itemNameLock, teamID, name, color); err != nil {
		return nil, wrap("lock item name", err)
	}
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE team_id = $1 AND lower(name) = lower($2) AND lower(color) = lower($3)
		ORDER BY id LIMIT 1 FOR UPDATE`
	return r.getOne(ctx, "find item by name", query, teamID, name, color)
}

func itemWhere(teamID string, f repository.ItemFilter) (string, []any) {
	where := `team_id = $1`
	args := []any{teamID}
	if f.ActiveOnly {
		where += ` AND active`
	}
	if f.Query != "" {
		args = append(args, likePattern(f.Query))
		n := len(args)
		where += fmt.Sprintf(` AND (name ILIKE $%d OR COALESCE(sku, '') ILIKE $%d)`, n, n)
	}
	return where, args
}

// List lista artículos del equipo, más recientes primero.
func (r *ItemRepo) List(ctx context.Context, teamID string, f repository.ItemFilter) ([]*entity.Item, error) {
	where, args := itemWhere(teamID, f)
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM items WHERE %s ORDER BY created_at DESC, id
		LIMIT NULLIF($%d, 0) OFFSET $%d`, itemColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list items", err)
	}
	defer rows.Close()

	list := make([]*entity.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, wrap("scan item", err)
		}
		list = append(list, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list items", err)
	}
	return list, nil
}

// Count total de artículos que cumplen el filtro (ignora Limit/Offset).
func (r *ItemRepo) Count(ctx context.Context, teamID string, f repository.ItemFilter) (int, error) {
	where, args := itemWhere(teamID, f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE `+where, args...).Scan(&n); err != nil {
		return 0, wrap("count items", err)
	}
	return n, nil
}

// SetWarehouseStock fija el stock de bodega. El CHECK (warehouse_stock >= 0) es la última barrera.
func (r *ItemRepo) SetWarehouseStock(ctx context.Context, id string, quantity int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE items SET warehouse_stock = $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	if err != nil {
		return wrap("update warehouse stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// HasReferences indica si alguna asignación o línea de recibo apunta al artículo.
func (r *ItemRepo) HasReferences(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM place_allocations WHERE item_id = $1)
		OR EXISTS (SELECT 1 FROM receipt_line_items WHERE item_id = $1)`
	var refs bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&refs); err != nil {
		return false, wrap("check item references", err)
	}
	return refs, nil
}

// Delete borra el artículo. Las llaves foráneas RESTRICT convierten una referencia en ErrConflict.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return wrap("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
