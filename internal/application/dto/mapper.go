package dto

import (
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/grouping"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
)

// unitLabel unidad en la que se cotiza el precio (kg, m, pcs...).
func unitLabel(t measure.Type) string {
	return measure.Symbol(measure.LargeUnit(t))
}

// ItemFromEntity mapea un artículo a su respuesta.
func ItemFromEntity(it *entity.Item) ItemResponse {
	return ItemResponse{
		ID:                  it.ID,
		TeamID:              it.TeamID,
		Name:                it.Name,
		SKU:                 it.SKU,
		CategoryID:          it.CategoryID,
		MeasurementType:     string(it.MeasurementType),
		Unit:                unitLabel(it.MeasurementType),
		Price:               it.Price,
		CostPrice:           it.CostPrice,
		TaxRateBps:          it.TaxRateBps,
		Active:              it.Active,
		Color:               it.Color,
		Size:                it.Size,
		Brand:               it.Brand,
		Tags:                it.Tags,
		ImageURL:            it.ImageURL,
		WarehouseStock:      it.WarehouseStock,
		WarehouseStockLabel: measure.FormatQuantity(it.MeasurementType, it.WarehouseStock, ""),
		CreatedAt:           it.CreatedAt,
		UpdatedAt:           it.UpdatedAt,
	}
}

// AllocationFromEntity mapea la asignación con los datos del artículo.
func AllocationFromEntity(a *entity.PlaceAllocation, it *entity.Item) AllocationResponse {
	return AllocationResponse{
		ID:            a.ID,
		PlaceID:       a.PlaceID,
		ItemID:        a.ItemID,
		Quantity:      a.AllocatedQuantity,
		QuantityLabel: measure.FormatQuantity(it.MeasurementType, a.AllocatedQuantity, ""),
		Item: AllocationItem{
			ID:              it.ID,
			Name:            it.Name,
			SKU:             it.SKU,
			Price:           it.Price,
			TaxRateBps:      it.TaxRateBps,
			MeasurementType: string(it.MeasurementType),
			Color:           it.Color,
			Size:            it.Size,
			Unit:            unitLabel(it.MeasurementType),
			Active:          it.Active,
			StockQuantity:   it.WarehouseStock,
		},
	}
}

// PlaceFromEntity mapea un lugar.
func PlaceFromEntity(p *entity.Place) PlaceResponse {
	return PlaceResponse{
		ID:        p.ID,
		TeamID:    p.TeamID,
		Name:      p.Name,
		Currency:  p.Currency,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ReceiptFromEntity mapea un recibo con sus líneas congeladas.
func ReceiptFromEntity(r *entity.Receipt) ReceiptResponse {
	lines := make([]ReceiptLineResponse, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, ReceiptLineResponse{
			ID:              l.ID,
			ItemID:          l.ItemID,
			Name:            l.ItemName,
			Quantity:        l.Quantity,
			QuantityLabel:   measure.FormatQuantity(l.MeasurementType, l.Quantity, ""),
			MeasurementType: string(l.MeasurementType),
			UnitPrice:       l.UnitPrice,
			TaxRateBps:      l.TaxRateBps,
			LineTotal:       l.LineTotal,
			LineTax:         l.LineTax,
		})
	}
	return ReceiptResponse{
		ID:            r.ID,
		PlaceID:       r.PlaceID,
		CashierID:     r.CashierID,
		PaymentOption: string(r.PaymentMethod),
		TotalAmount:   r.TotalAmount,
		TaxAmount:     r.TaxAmount,
		AmountGiven:   r.AmountGiven,
		ChangeAmount:  r.ChangeAmount,
		Currency:      r.Currency,
		CreatedAt:     r.CreatedAt,
		Items:         lines,
	}
}

// MovementFromEntity mapea una entrada del libro de stock.
func MovementFromEntity(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		ItemID:          m.ItemID,
		PlaceID:         m.PlaceID,
		Type:            m.Type,
		WarehouseDelta:  m.WarehouseDelta,
		AllocationDelta: m.AllocationDelta,
		ReferenceID:     m.ReferenceID,
		Reason:          m.Reason,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// GroupsFromDomain mapea los grupos calculados por el motor de agrupación.
func GroupsFromDomain(groups []grouping.Group) []GroupResponse {
	out := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		variants := make([]GroupVariantResponse, 0, len(g.Variants))
		for _, v := range g.Variants {
			variants = append(variants, GroupVariantResponse{
				ItemID:     v.ItemID,
				Name:       v.Name,
				SKU:        v.SKU,
				Size:       v.SizeToken,
				Stock:      v.Stock,
				StockLabel: measure.FormatQuantity(v.MeasurementType, v.Stock, ""),
			})
		}
		out = append(out, GroupResponse{
			Key:             g.Key,
			Label:           g.Label,
			Color:           g.Color,
			Price:           g.Price,
			TaxRateBps:      g.TaxRateBps,
			MeasurementType: string(g.MeasurementType),
			TotalStock:      g.TotalStock,
			TotalStockLabel: measure.FormatQuantity(g.MeasurementType, g.TotalStock, ""),
			IsBox:           g.IsBox(),
			VariantCount:    g.VariantCount(),
			Variants:        variants,
		})
	}
	return out
}

// UserFromEntity convierte un usuario; el hash nunca sale.
func UserFromEntity(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		TeamID:    u.TeamID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
