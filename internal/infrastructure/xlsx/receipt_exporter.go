// Package xlsx exporta recibos de un lugar a una hoja de cálculo.
package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
)

const (
	sheetReceipts = "Recibos"
	sheetLines    = "Lineas"
)

var (
	receiptHeadings = []interface{}{"Recibo", "Fecha", "Cajero", "Forma de pago", "Moneda", "Total", "Impuestos", "Recibido", "Cambio", "Líneas"}
	lineHeadings    = []interface{}{"Recibo", "Artículo", "Nombre", "Cantidad", "Cantidad canónica", "Precio unit.", "Imp. bps", "Subtotal", "Impuesto"}
)

// ReceiptExporter implementa checkout.ReceiptExporter con excelize.
type ReceiptExporter struct{}

// NewReceiptExporter construye el exportador.
func NewReceiptExporter() *ReceiptExporter { return &ReceiptExporter{} }

// ExportReceipts genera un libro con una hoja de recibos y otra de líneas.
func (e *ReceiptExporter) ExportReceipts(ctx context.Context, place *entity.Place, receipts []*entity.Receipt) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetReceipts); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	if _, err := f.NewSheet(sheetLines); err != nil {
		return nil, fmt.Errorf("xlsx: crear hoja: %w", err)
	}
	if err := f.SetSheetRow(sheetReceipts, "A1", &receiptHeadings); err != nil {
		return nil, fmt.Errorf("xlsx: encabezados: %w", err)
	}
	if err := f.SetSheetRow(sheetLines, "A1", &lineHeadings); err != nil {
		return nil, fmt.Errorf("xlsx: encabezados: %w", err)
	}

	lineRow := 2
	for i, rc := range receipts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values := []interface{}{
			rc.ID,
			rc.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			rc.CashierID,
			string(rc.PaymentMethod),
			rc.Currency,
			rc.TotalAmount.InexactFloat64(),
			rc.TaxAmount.InexactFloat64(),
			rc.AmountGiven.InexactFloat64(),
			rc.ChangeAmount.InexactFloat64(),
			len(rc.Lines),
		}
		if err := setRow(f, sheetReceipts, i+2, values); err != nil {
			return nil, err
		}
		for _, l := range rc.Lines {
			values := []interface{}{
				rc.ID,
				l.ItemID,
				l.ItemName,
				measure.FormatQuantity(l.MeasurementType, l.Quantity, "uds"),
				l.Quantity,
				l.UnitPrice.InexactFloat64(),
				l.TaxRateBps,
				l.LineTotal.InexactFloat64(),
				l.LineTax.InexactFloat64(),
			}
			if err := setRow(f, sheetLines, lineRow, values); err != nil {
				return nil, err
			}
			lineRow++
		}
	}

	if place != nil {
		_ = f.SetDocProps(&excelize.DocProperties{Title: "Recibos " + place.Name, Creator: place.Name})
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, rowNo int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return fmt.Errorf("xlsx: celda: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx: fila %d de %s: %w", rowNo, sheet, err)
	}
	return nil
}
