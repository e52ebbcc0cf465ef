package pdf

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// moneyFormatter formatea montos con el símbolo de la moneda del lugar y separadores en español.
type moneyFormatter struct {
	unit    currency.Unit
	known   bool
	code    string
	printer *message.Printer
}

func newMoneyFormatter(code string) moneyFormatter {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	return moneyFormatter{unit: unit, known: err == nil, code: code, printer: message.NewPrinter(language.Spanish)}
}

func (f moneyFormatter) format(d decimal.Decimal) string {
	if !f.known {
		return f.printer.Sprintf("%s %.2f", f.code, d.InexactFloat64())
	}
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(d.InexactFloat64())))
}
