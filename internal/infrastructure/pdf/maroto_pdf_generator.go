// Package pdf genera el comprobante imprimible de un recibo de caja.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Lugar + moneda      │  N° Recibo + Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Artículo | P.Unit | Imp% | Subtotal           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total / Impuestos / Recibido / Cambio              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: forma de pago + QR con el id del recibo             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa checkout.ReceiptPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateReceiptPDF genera el PDF del recibo y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReceiptPDF(_ context.Context, receipt *entity.Receipt, place *entity.Place) ([]byte, error) {
	if receipt == nil || place == nil {
		return nil, fmt.Errorf("pdf: recibo y lugar son obligatorios")
	}
	money := newMoneyFormatter(receipt.Currency)

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Recibo "+receipt.ID, true).
		WithAuthor(place.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(receipt, place))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(receipt.Lines, money) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(receipt, money))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(receipt))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(receipt *entity.Receipt, place *entity.Place) core.Row {
	title := "RECIBO DE VENTA"
	if receipt.PaymentMethod == entity.PaymentRefund {
		title = "RECIBO DE DEVOLUCIÓN"
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(place.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Moneda: "+receipt.Currency, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(shortID(receipt.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+receipt.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Artículo", 4, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Imp.%", 1, align.Center),
		h("Subtotal", 3, align.Right),
	)
}

// tableDetailRows una fila por línea; la cantidad se muestra en su unidad de presentación.
func tableDetailRows(lines []entity.ReceiptLineItem, money moneyFormatter) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				measure.FormatQuantity(l.MeasurementType, l.Quantity, "uds"),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(4).Add(text.New(
				l.ItemName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				money.format(l.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				taxPercent(l.TaxRateBps),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				money.format(l.LineTotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func totalsRow(receipt *entity.Receipt, money moneyFormatter) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grand := func(s string, a align.Type) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 10, Align: a, Color: colorPrimary, Right: 1})
	}

	return row.New(26).Add(
		col.New(3),
		col.New(3).Add(
			grand("TOTAL:", align.Right),
			label("Impuestos incluidos:"),
			label("Recibido:"),
			label("Cambio:"),
		),
		col.New(3).Add(
			grand(money.format(receipt.TotalAmount), align.Right),
			value(money.format(receipt.TaxAmount)),
			value(money.format(receipt.AmountGiven)),
			value(money.format(receipt.ChangeAmount)),
		),
		col.New(3),
	)
}

func footerRow(receipt *entity.Receipt) core.Row {
	return row.New(45).Add(
		col.New(4).Add(code.NewQr(receipt.ID, props.Rect{
			Percent: 90,
			Center:  true,
		})),
		col.New(8).Add(
			text.New("Forma de pago: "+paymentLabel(receipt.PaymentMethod), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 4, Left: 3,
			}),
			text.New("Recibo N° "+receipt.ID, props.Text{
				Size: 7, Top: 12, Left: 3, Color: colorGray,
			}),
			text.New("Conserve este comprobante para cambios y devoluciones.", props.Text{
				Size: 7, Top: 20, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func paymentLabel(p entity.PaymentMethod) string {
	switch p {
	case entity.PaymentCash:
		return "Efectivo"
	case entity.PaymentCard:
		return "Tarjeta"
	case entity.PaymentRefund:
		return "Devolución"
	}
	return string(p)
}

// taxPercent 1900 bps -> "19%", 550 -> "5.5%".
func taxPercent(bps int) string {
	return decimal.New(int64(bps), -2).String() + "%"
}

// shortID primeros 8 caracteres del id para el encabezado.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
