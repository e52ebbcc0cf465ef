// Package stock implementa el libro de stock: el traspaso bodega -> lugar, el retiro de un
// lugar, los ajustes manuales de bodega y el ingreso de cajas de tallas.
package stock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

// LedgerUseCase operaciones atómicas sobre el stock de bodega y las asignaciones por lugar.
// Toda lectura para escribir se hace con bloqueo de fila (SELECT FOR UPDATE) dentro de la tx.
type LedgerUseCase struct {
	txRunner TxRunner
	repos    repository.TxRepos
	log      *logger.Logger
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso. repos se usa para lecturas fuera de transacción.
func NewLedgerUseCase(txRunner TxRunner, repos repository.TxRepos, log *logger.Logger) *LedgerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{txRunner: txRunner, repos: repos, log: log, now: time.Now}
}

// ownedItem devuelve el artículo si pertenece al equipo; si no, ErrNotFound.
func ownedItem(ctx context.Context, items repository.ItemRepository, teamID, itemID string) (*entity.Item, error) {
	if itemID == "" {
		return nil, domain.NewValidationError("itemId", "es obligatorio")
	}
	it, err := items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil || it.TeamID != teamID {
		return nil, fmt.Errorf("artículo %s: %w", itemID, domain.ErrNotFound)
	}
	return it, nil
}

// ownedPlace devuelve el lugar si pertenece al equipo; si no, ErrNotFound.
func ownedPlace(ctx context.Context, places repository.PlaceRepository, teamID, placeID string) (*entity.Place, error) {
	if placeID == "" {
		return nil, domain.NewValidationError("placeId", "es obligatorio")
	}
	p, err := places.GetByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.TeamID != teamID {
		return nil, fmt.Errorf("lugar %s: %w", placeID, domain.ErrNotFound)
	}
	return p, nil
}

// canonicalQuantity convierte la cantidad pedida. Sin unidad el valor ya es canónico y debe ser entero.
func canonicalQuantity(t measure.Type, value decimal.Decimal, rawUnit, field string) (int64, error) {
	unit, err := measure.ParseUnit(rawUnit)
	if err != nil {
		return 0, err
	}
	if unit == "" && !value.IsInteger() {
		return 0, domain.NewValidationError(field, "sin unidad la cantidad debe ser un entero en unidad canónica")
	}
	q, err := measure.ToCanonical(t, value, unit)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) && ve.Field == "quantity" {
			return 0, domain.NewValidationError(field, ve.Reason)
		}
		return 0, err
	}
	return q, nil
}

func addChecked(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, domain.NewValidationError("quantity", "cantidad fuera de rango")
	}
	return a + b, nil
}

// Allocate traspasa stock de la bodega al lugar. Falla con ErrInsufficientWarehouseStock sin
// cambiar nada si la bodega no alcanza; crea la asignación si no existía.
func (uc *LedgerUseCase) Allocate(ctx context.Context, teamID, userID, placeID string, in dto.AllocateRequest) (*dto.AllocationResponse, error) {
	item, err := ownedItem(ctx, uc.repos.Items, teamID, in.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := ownedPlace(ctx, uc.repos.Places, teamID, placeID); err != nil {
		return nil, err
	}
	qty, err := canonicalQuantity(item.MeasurementType, in.Quantity, in.Unit, "quantity")
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor a cero")
	}

	var (
		alloc   *entity.PlaceAllocation
		updated *entity.Item
	)
	err = uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		locked, err := r.Items.GetForUpdate(ctx, item.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return fmt.Errorf("artículo %s: %w", item.ID, domain.ErrNotFound)
		}
		if locked.WarehouseStock < qty {
			return fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientWarehouseStock, locked.WarehouseStock, qty)
		}
		a, err := r.Allocations.EnsureForUpdate(ctx, placeID, item.ID)
		if err != nil {
			return err
		}
		next, err := addChecked(a.AllocatedQuantity, qty)
		if err != nil {
			return err
		}
		if err := r.Items.SetWarehouseStock(ctx, item.ID, locked.WarehouseStock-qty); err != nil {
			return err
		}
		if err := r.Allocations.SetQuantity(ctx, a.ID, next); err != nil {
			return err
		}
		if err := r.Movements.Create(ctx, &entity.StockMovement{
			TeamID:          teamID,
			ItemID:          item.ID,
			PlaceID:         placeID,
			Type:            entity.MovementAllocate,
			WarehouseDelta:  -qty,
			AllocationDelta: qty,
			CreatedBy:       userID,
			CreatedAt:       uc.now(),
		}); err != nil {
			return err
		}
		a.AllocatedQuantity = next
		locked.WarehouseStock -= qty
		alloc, updated = a, locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("team_id", teamID).Str("user_id", userID).Str("item_id", item.ID).
		Str("place_id", placeID).Int64("quantity", qty).Msg("stock asignado a lugar")
	out := dto.AllocationFromEntity(alloc, updated)
	return &out, nil
}

// Deallocate elimina la asignación del lugar. La cantidad asignada no vuelve a bodega.
func (uc *LedgerUseCase) Deallocate(ctx context.Context, teamID, userID, placeID, itemID string) error {
	if _, err := ownedPlace(ctx, uc.repos.Places, teamID, placeID); err != nil {
		return err
	}
	if _, err := ownedItem(ctx, uc.repos.Items, teamID, itemID); err != nil {
		return err
	}
	var removed int64
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		a, err := r.Allocations.GetForUpdate(ctx, placeID, itemID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("asignación %s/%s: %w", placeID, itemID, domain.ErrNotFound)
		}
		if _, err := r.Allocations.Delete(ctx, placeID, itemID); err != nil {
			return err
		}
		removed = a.AllocatedQuantity
		return r.Movements.Create(ctx, &entity.StockMovement{
			TeamID:          teamID,
			ItemID:          itemID,
			PlaceID:         placeID,
			Type:            entity.MovementDeallocate,
			AllocationDelta: -a.AllocatedQuantity,
			CreatedBy:       userID,
			CreatedAt:       uc.now(),
		})
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("team_id", teamID).Str("user_id", userID).Str("item_id", itemID).
		Str("place_id", placeID).Int64("quantity", removed).Msg("asignación retirada del lugar")
	return nil
}

// AdjustWarehouseStock corrige el stock de bodega con un delta con signo.
// Nunca deja la bodega en negativo.
func (uc *LedgerUseCase) AdjustWarehouseStock(ctx context.Context, teamID, userID, itemID string, in dto.AdjustStockRequest) (*dto.ItemResponse, error) {
	item, err := ownedItem(ctx, uc.repos.Items, teamID, itemID)
	if err != nil {
		return nil, err
	}
	magnitude, err := canonicalQuantity(item.MeasurementType, in.Delta.Abs(), in.Unit, "delta")
	if err != nil {
		return nil, err
	}
	if magnitude == 0 {
		return nil, domain.NewValidationError("delta", "no puede ser cero")
	}
	delta := magnitude
	if in.Delta.IsNegative() {
		delta = -magnitude
	}

	var updated *entity.Item
	err = uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		locked, err := r.Items.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if locked == nil {
			return fmt.Errorf("artículo %s: %w", itemID, domain.ErrNotFound)
		}
		next, err := addChecked(locked.WarehouseStock, delta)
		if err != nil {
			return err
		}
		if next < 0 {
			return fmt.Errorf("%w: disponible %d, ajuste %d", domain.ErrInsufficientWarehouseStock, locked.WarehouseStock, delta)
		}
		if err := r.Items.SetWarehouseStock(ctx, itemID, next); err != nil {
			return err
		}
		if err := r.Movements.Create(ctx, &entity.StockMovement{
			TeamID:         teamID,
			ItemID:         itemID,
			Type:           entity.MovementAdjust,
			WarehouseDelta: delta,
			Reason:         in.Reason,
			CreatedBy:      userID,
			CreatedAt:      uc.now(),
		}); err != nil {
			return err
		}
		locked.WarehouseStock = next
		updated = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("team_id", teamID).Str("user_id", userID).Str("item_id", itemID).
		Int64("delta", delta).Str("reason", in.Reason).Msg("ajuste de stock de bodega")
	out := dto.ItemFromEntity(updated)
	return &out, nil
}

// ListAllocations vista del lugar: asignaciones unidas con el artículo.
func (uc *LedgerUseCase) ListAllocations(ctx context.Context, teamID, placeID string) ([]dto.AllocationResponse, error) {
	if _, err := ownedPlace(ctx, uc.repos.Places, teamID, placeID); err != nil {
		return nil, err
	}
	list, err := uc.repos.Allocations.ListByPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AllocationResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.AllocationFromEntity(&a.Allocation, &a.Item))
	}
	return out, nil
}

// ListMovements entradas del libro de stock del artículo, más recientes primero.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, teamID, itemID string, limit, offset int) (*dto.MovementListResponse, error) {
	if _, err := ownedItem(ctx, uc.repos.Items, teamID, itemID); err != nil {
		return nil, err
	}
	list, err := uc.repos.Movements.ListByItem(ctx, itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.MovementFromEntity(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func newID() string { return uuid.New().String() }
