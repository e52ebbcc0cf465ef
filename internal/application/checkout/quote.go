package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/cart"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// QuoteUseCase arma el carrito en el servidor contra las asignaciones actuales del lugar.
// No escribe nada ni reserva stock.
type QuoteUseCase struct {
	repos repository.TxRepos
}

// NewQuoteUseCase construye el caso de uso.
func NewQuoteUseCase(repos repository.TxRepos) *QuoteUseCase {
	return &QuoteUseCase{repos: repos}
}

// Quote recorta cada intención a lo que queda asignado y devuelve subtotales y totales.
func (uc *QuoteUseCase) Quote(ctx context.Context, teamID, placeID string, in dto.CartQuoteRequest) (*dto.CartQuoteResponse, error) {
	place, err := uc.repos.Places.GetByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if place == nil || place.TeamID != teamID {
		return nil, fmt.Errorf("lugar %s: %w", placeID, domain.ErrNotFound)
	}
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "debe incluir al menos una línea")
	}

	assigned, err := uc.repos.Allocations.ListByPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	byItem := make(map[string]*entity.AllocatedItem, len(assigned))
	for _, a := range assigned {
		byItem[a.Item.ID] = a
	}

	c := cart.New(placeID)
	requested := make(map[string]int64)
	order := make([]string, 0, len(in.Items))
	for i, intent := range in.Items {
		a, ok := byItem[intent.ItemID]
		if !ok || a.Item.TeamID != teamID {
			return nil, fmt.Errorf("artículo %s no asignado al lugar: %w", intent.ItemID, domain.ErrNotFound)
		}
		unit, err := measure.ParseUnit(intent.Unit)
		if err != nil {
			return nil, err
		}
		q, err := cart.CanonicalFor(a.Item.MeasurementType, intent.Quantity, unit)
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) && ve.Field == "quantity" {
				return nil, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), ve.Reason)
			}
			return nil, err
		}
		v := cart.Variant{
			ItemID:          a.Item.ID,
			Name:            a.Item.Name,
			Price:           a.Item.Price,
			TaxRateBps:      a.Item.TaxRateBps,
			MeasurementType: a.Item.MeasurementType,
		}
		if _, err := c.Add(v, a.Allocation.AllocatedQuantity, q); err != nil {
			return nil, err
		}
		if _, seen := requested[a.Item.ID]; !seen {
			order = append(order, a.Item.ID)
		}
		requested[a.Item.ID] += q
	}

	summary := c.Totals()
	priced := make(map[string]cart.PricedLine, len(summary.Lines))
	for _, l := range summary.Lines {
		priced[l.ItemID] = l
	}
	out := &dto.CartQuoteResponse{
		PlaceID:  placeID,
		Currency: place.Currency,
		Lines:    make([]dto.CartQuoteLine, 0, len(order)),
		Total:    summary.Total,
		Tax:      summary.Tax,
	}
	for _, id := range order {
		it := byItem[id].Item
		l, ok := priced[id]
		line := dto.CartQuoteLine{
			ItemID:     id,
			Name:       it.Name,
			Requested:  requested[id],
			UnitPrice:  it.Price,
			TaxRateBps: it.TaxRateBps,
		}
		if ok {
			line.Quantity = l.Quantity
			line.Subtotal = l.Subtotal
			line.Tax = l.Tax
		}
		line.QuantityLabel = measure.FormatQuantity(it.MeasurementType, line.Quantity, "")
		line.Clamped = line.Quantity < line.Requested
		out.Lines = append(out.Lines, line)
	}
	return out, nil
}
