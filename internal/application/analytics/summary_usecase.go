// Package analytics contiene los reportes de ventas por lugar, calculados sobre los recibos.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

const summaryTopItems = 5 // artículos en el ranking del resumen

// maxSummaryRange rango máximo de un resumen.
const maxSummaryRange = 366 * 24 * time.Hour

// SummaryUseCase resumen de ventas de un lugar en un rango de fechas.
//
// Fuente de datos: ReceiptRepository.ListByPlaceBetween (solo lectura).
type SummaryUseCase struct {
	repos repository.TxRepos
}

// NewSummaryUseCase construye el caso de uso.
func NewSummaryUseCase(repos repository.TxRepos) *SummaryUseCase {
	return &SummaryUseCase{repos: repos}
}

type itemAgg struct {
	name     string
	mt       measure.Type
	quantity int64
	revenue  decimal.Decimal
}

// GetSummary totaliza los recibos de [from, to). Las devoluciones restan cantidad e ingreso.
func (uc *SummaryUseCase) GetSummary(ctx context.Context, teamID, placeID string, from, to time.Time) (*dto.SalesSummaryResponse, error) {
	if !to.After(from) {
		return nil, domain.NewValidationError("to", "debe ser posterior a from")
	}
	if to.Sub(from) > maxSummaryRange {
		return nil, domain.NewValidationError("to", "el rango no puede superar un año")
	}
	place, err := uc.repos.Places.GetByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if place == nil || place.TeamID != teamID {
		return nil, fmt.Errorf("lugar %s: %w", placeID, domain.ErrNotFound)
	}
	receipts, err := uc.repos.Receipts.ListByPlaceBetween(ctx, placeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("resumen: recibos: %w", err)
	}

	methods := []entity.PaymentMethod{entity.PaymentCash, entity.PaymentCard, entity.PaymentRefund}
	byMethod := make(map[entity.PaymentMethod]*dto.PaymentTotal, len(methods))
	out := &dto.SalesSummaryResponse{
		PlaceID:      place.ID,
		Currency:     place.Currency,
		From:         from,
		To:           to,
		ReceiptCount: len(receipts),
		ByPayment:    make([]dto.PaymentTotal, 0, len(methods)),
	}
	for _, m := range methods {
		byMethod[m] = &dto.PaymentTotal{PaymentOption: string(m), Total: decimal.Zero}
	}

	items := make(map[string]*itemAgg)
	for _, rc := range receipts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pt, ok := byMethod[rc.PaymentMethod]; ok {
			pt.Count++
			pt.Total = pt.Total.Add(rc.TotalAmount)
		}
		if rc.PaymentMethod == entity.PaymentRefund {
			out.Refunds = out.Refunds.Add(rc.TotalAmount)
		} else {
			out.Sales = out.Sales.Add(rc.TotalAmount)
		}
		out.Tax = out.Tax.Add(rc.TaxAmount)

		for _, l := range rc.Lines {
			agg, ok := items[l.ItemID]
			if !ok {
				agg = &itemAgg{name: l.ItemName, mt: l.MeasurementType}
				items[l.ItemID] = agg
			}
			if rc.PaymentMethod == entity.PaymentRefund {
				agg.quantity -= l.Quantity
			} else {
				agg.quantity += l.Quantity
			}
			agg.revenue = agg.revenue.Add(l.LineTotal)
		}
	}
	out.Net = out.Sales.Add(out.Refunds)
	for _, m := range methods {
		out.ByPayment = append(out.ByPayment, *byMethod[m])
	}
	out.TopItems = topItems(items, summaryTopItems)
	return out, nil
}

// topItems ordena por ingreso, luego cantidad, luego id; descarta artículos sin venta neta.
func topItems(items map[string]*itemAgg, n int) []dto.TopItem {
	list := make([]dto.TopItem, 0, len(items))
	for id, agg := range items {
		if agg.quantity <= 0 {
			continue
		}
		list = append(list, dto.TopItem{
			ItemID:        id,
			Name:          agg.name,
			Quantity:      agg.quantity,
			QuantityLabel: measure.FormatQuantity(agg.mt, agg.quantity, ""),
			Revenue:       agg.revenue,
		})
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Revenue.Equal(list[j].Revenue) {
			return list[i].Revenue.GreaterThan(list[j].Revenue)
		}
		if list[i].Quantity != list[j].Quantity {
			return list[i].Quantity > list[j].Quantity
		}
		return list[i].ItemID < list[j].ItemID
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
