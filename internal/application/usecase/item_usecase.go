package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
	"github.com/jhoicas/puntoventa-api/internal/domain/pricing"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

// ItemUseCase casos de uso CRUD para artículos. El stock se maneja vía el libro de stock.
type ItemUseCase struct {
	txRunner TxRunner
	repos    repository.TxRepos
	log      *logger.Logger
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(txRunner TxRunner, repos repository.TxRepos, log *logger.Logger) *ItemUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ItemUseCase{txRunner: txRunner, repos: repos, log: log}
}

func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}

func validatePricing(it *entity.Item) error {
	if strings.TrimSpace(it.Name) == "" {
		return domain.NewValidationError("name", "es obligatorio")
	}
	if it.Price.IsNegative() {
		return domain.NewValidationError("price", "no puede ser negativo")
	}
	if !it.Price.Equal(it.Price.Round(2)) {
		return domain.NewValidationError("price", "máximo 2 decimales")
	}
	if it.CostPrice != nil && it.CostPrice.IsNegative() {
		return domain.NewValidationError("costPrice", "no puede ser negativo")
	}
	if !pricing.ValidTaxRate(it.TaxRateBps) {
		return domain.NewValidationError("taxRateBps", "debe estar entre 0 y 10000")
	}
	return nil
}

// Create crea un artículo activo con stock 0.
func (uc *ItemUseCase) Create(ctx context.Context, teamID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	mt, err := measure.ParseType(in.MeasurementType)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	item := &entity.Item{
		ID:              uuid.New().String(),
		TeamID:          teamID,
		Name:            strings.TrimSpace(in.Name),
		SKU:             strings.TrimSpace(in.SKU),
		CategoryID:      in.CategoryID,
		MeasurementType: mt,
		Price:           in.Price,
		CostPrice:       in.CostPrice,
		TaxRateBps:      in.TaxRateBps,
		Active:          true,
		Color:           strings.TrimSpace(in.Color),
		Size:            strings.TrimSpace(in.Size),
		Brand:           in.Brand,
		Tags:            cleanTags(in.Tags),
		ImageURL:        in.ImageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := validatePricing(item); err != nil {
		return nil, err
	}
	if err := uc.repos.Items.Create(ctx, item); err != nil {
		return nil, err
	}
	out := dto.ItemFromEntity(item)
	return &out, nil
}

func (uc *ItemUseCase) owned(ctx context.Context, teamID, id string) (*entity.Item, error) {
	item, err := uc.repos.Items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.TeamID != teamID {
		return nil, fmt.Errorf("artículo %s: %w", id, domain.ErrNotFound)
	}
	return item, nil
}

// GetByID obtiene un artículo del equipo.
func (uc *ItemUseCase) GetByID(ctx context.Context, teamID, id string) (*dto.ItemResponse, error) {
	item, err := uc.owned(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	out := dto.ItemFromEntity(item)
	return &out, nil
}

// Update actualiza atributos del artículo. No toca el stock ni el tipo de medida.
func (uc *ItemUseCase) Update(ctx context.Context, teamID, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.owned(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.SKU != nil {
		item.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.CategoryID != nil {
		item.CategoryID = *in.CategoryID
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.CostPrice != nil {
		item.CostPrice = in.CostPrice
	}
	if in.TaxRateBps != nil {
		item.TaxRateBps = *in.TaxRateBps
	}
	if in.Active != nil {
		item.Active = *in.Active
	}
	if in.Color != nil {
		item.Color = strings.TrimSpace(*in.Color)
	}
	if in.Size != nil {
		item.Size = strings.TrimSpace(*in.Size)
	}
	if in.Brand != nil {
		item.Brand = *in.Brand
	}
	if in.Tags != nil {
		item.Tags = cleanTags(in.Tags)
	}
	if in.ImageURL != nil {
		item.ImageURL = *in.ImageURL
	}
	if err := validatePricing(item); err != nil {
		return nil, err
	}
	item.UpdatedAt = time.Now()
	if err := uc.repos.Items.Update(ctx, item); err != nil {
		return nil, err
	}
	out := dto.ItemFromEntity(item)
	return &out, nil
}

// List lista artículos del equipo con búsqueda y paginación.
func (uc *ItemUseCase) List(ctx context.Context, teamID, query string, activeOnly bool, limit, offset int) (*dto.ItemListResponse, error) {
	filter := repository.ItemFilter{Query: query, ActiveOnly: activeOnly, Limit: limit, Offset: offset}
	list, err := uc.repos.Items.List(ctx, teamID, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.repos.Items.Count(ctx, teamID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, dto.ItemFromEntity(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Deactivate retira el artículo de la venta sin borrar su historial.
func (uc *ItemUseCase) Deactivate(ctx context.Context, teamID, userID, id string) (*dto.ItemResponse, error) {
	if _, err := uc.owned(ctx, teamID, id); err != nil {
		return nil, err
	}
	var updated *entity.Item
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		item, err := r.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("artículo %s: %w", id, domain.ErrNotFound)
		}
		item.Active = false
		item.UpdatedAt = time.Now()
		if err := r.Items.Update(ctx, item); err != nil {
			return err
		}
		updated = item
		return r.Movements.Create(ctx, &entity.StockMovement{
			TeamID:    teamID,
			ItemID:    id,
			Type:      entity.MovementDeactivate,
			CreatedBy: userID,
			CreatedAt: item.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("team_id", teamID).Str("user_id", userID).Str("item_id", id).Msg("artículo desactivado")
	out := dto.ItemFromEntity(updated)
	return &out, nil
}

// Delete borra el artículo. Si alguna asignación o recibo lo referencia devuelve ErrConflict:
// hay que retirarlo de los lugares o desactivarlo.
func (uc *ItemUseCase) Delete(ctx context.Context, teamID, userID, id string) error {
	if _, err := uc.owned(ctx, teamID, id); err != nil {
		return err
	}
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		item, err := r.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("artículo %s: %w", id, domain.ErrNotFound)
		}
		refs, err := r.Items.HasReferences(ctx, id)
		if err != nil {
			return err
		}
		if refs {
			return fmt.Errorf("%w: el artículo tiene asignaciones o recibos; retírelo de los lugares o desactívelo", domain.ErrConflict)
		}
		if err := r.Items.Delete(ctx, id); err != nil {
			return err
		}
		return r.Movements.Create(ctx, &entity.StockMovement{
			TeamID:         teamID,
			ItemID:         id,
			Type:           entity.MovementDelete,
			WarehouseDelta: -item.WarehouseStock,
			Reason:         item.Name,
			CreatedBy:      userID,
			CreatedAt:      time.Now(),
		})
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("team_id", teamID).Str("user_id", userID).Str("item_id", id).Msg("artículo eliminado")
	return nil
}
