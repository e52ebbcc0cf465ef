package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/grouping"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
	"github.com/jhoicas/puntoventa-api/internal/domain/pricing"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

type boxRow struct {
	size     string
	sku      string
	quantity int64
}

// validateBox normaliza la caja y convierte las cantidades antes de abrir la transacción.
func validateBox(in dto.BoxRequest) (measure.Type, []boxRow, error) {
	base := strings.TrimSpace(in.BaseName)
	if base == "" {
		return "", nil, domain.NewValidationError("baseName", "es obligatorio")
	}
	if strings.Contains(base, grouping.Separator) {
		return "", nil, domain.NewValidationError("baseName", fmt.Sprintf("no puede contener %q", grouping.Separator))
	}
	mt, err := measure.ParseType(in.MeasurementType)
	if err != nil {
		return "", nil, err
	}
	if in.Price.IsNegative() {
		return "", nil, domain.NewValidationError("price", "no puede ser negativo")
	}
	if !pricing.ValidTaxRate(in.TaxRateBps) {
		return "", nil, domain.NewValidationError("taxRateBps", "debe estar entre 0 y 10000")
	}
	if len(in.Sizes) == 0 {
		return "", nil, domain.NewValidationError("sizes", "debe incluir al menos una talla")
	}
	unit, err := measure.ParseUnit(in.Unit)
	if err != nil {
		return "", nil, err
	}

	seen := make(map[string]bool, len(in.Sizes))
	rows := make([]boxRow, 0, len(in.Sizes))
	for i, s := range in.Sizes {
		field := fmt.Sprintf("sizes[%d]", i)
		size := strings.TrimSpace(s.Size)
		if size == "" {
			return "", nil, domain.NewValidationError(field+".size", "es obligatorio")
		}
		if seen[strings.ToLower(size)] {
			return "", nil, domain.NewValidationError(field+".size", fmt.Sprintf("talla %q repetida", size))
		}
		seen[strings.ToLower(size)] = true

		if unit == "" && !s.Quantity.IsInteger() {
			return "", nil, domain.NewValidationError(field+".quantity", "sin unidad la cantidad debe ser un entero en unidad canónica")
		}
		q, err := measure.ToCanonical(mt, s.Quantity, unit)
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) && ve.Field == "quantity" {
				return "", nil, domain.NewValidationError(field+".quantity", ve.Reason)
			}
			return "", nil, err
		}
		sku := strings.TrimSpace(s.SKU)
		if sku == "" && in.SkuPrefix != "" {
			sku = strings.TrimSpace(in.SkuPrefix) + "-" + strings.ToUpper(size)
		}
		rows = append(rows, boxRow{size: size, sku: sku, quantity: q})
	}
	return mt, rows, nil
}

// SubmitBox da de alta o recarga una caja: por cada talla busca o crea el artículo
// "<base> - <talla>" del color indicado y le suma la cantidad a la bodega. Todas las tallas
// se procesan en una sola transacción; un error en cualquiera revierte la caja completa.
// Las filas con cantidad 0 crean el artículo si falta pero no mueven stock. En una recarga con
// costPrice el costo del artículo pasa a ser el promedio ponderado con la bodega existente.
func (uc *LedgerUseCase) SubmitBox(ctx context.Context, teamID, userID string, in dto.BoxRequest) (*dto.BoxResponse, error) {
	mt, rows, err := validateBox(in)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSpace(in.BaseName)
	color := strings.TrimSpace(in.Color)
	boxID := newID()
	now := uc.now()

	results := make([]dto.BoxItemResult, 0, len(rows))
	err = uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		results = results[:0]
		for i, row := range rows {
			name := base + grouping.Separator + row.size
			it, err := r.Items.FindByNameForUpdate(ctx, teamID, name, color)
			if err != nil {
				return err
			}
			created := false
			if it == nil {
				it = &entity.Item{
					ID:              newID(),
					TeamID:          teamID,
					Name:            name,
					SKU:             row.sku,
					CategoryID:      in.CategoryID,
					MeasurementType: mt,
					Price:           in.Price,
					CostPrice:       in.CostPrice,
					TaxRateBps:      in.TaxRateBps,
					Active:          true,
					Color:           color,
					Size:            row.size,
					Brand:           in.Brand,
					Tags:            in.Tags,
					ImageURL:        in.ImageURL,
					CreatedAt:       now,
					UpdatedAt:       now,
				}
				if err := r.Items.Create(ctx, it); err != nil {
					if errors.Is(err, domain.ErrDuplicate) {
						return fmt.Errorf("talla %s (sku %q): %w", row.size, row.sku, err)
					}
					return err
				}
				created = true
			} else if it.MeasurementType != mt {
				return domain.NewValidationError(fmt.Sprintf("sizes[%d]", i),
					fmt.Sprintf("el artículo %q ya existe con tipo de medida %s", name, it.MeasurementType))
			}

			if !created && in.CostPrice != nil && row.quantity > 0 {
				cost := pricing.AverageCost(it.CostPrice, it.WarehouseStock, *in.CostPrice, row.quantity)
				it.CostPrice = &cost
				it.UpdatedAt = now
				if err := r.Items.Update(ctx, it); err != nil {
					return err
				}
			}

			if row.quantity > 0 {
				next, err := addChecked(it.WarehouseStock, row.quantity)
				if err != nil {
					return err
				}
				if err := r.Items.SetWarehouseStock(ctx, it.ID, next); err != nil {
					return err
				}
				if err := r.Movements.Create(ctx, &entity.StockMovement{
					TeamID:         teamID,
					ItemID:         it.ID,
					Type:           entity.MovementBoxIn,
					WarehouseDelta: row.quantity,
					ReferenceID:    boxID,
					CreatedBy:      userID,
					CreatedAt:      now,
				}); err != nil {
					return err
				}
				it.WarehouseStock = next
			}
			results = append(results, dto.BoxItemResult{
				Item:    dto.ItemFromEntity(it),
				Created: created,
				Added:   row.quantity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("team_id", teamID).Str("user_id", userID).Str("box_id", boxID).
		Str("base_name", base).Int("sizes", len(rows)).Msg("caja registrada")
	return &dto.BoxResponse{BaseName: base, Color: color, Items: results}, nil
}
