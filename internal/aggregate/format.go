package aggregate

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money formats amounts for the public display, e.g. "$1,234.50".
type Money struct {
	symbol  string
	printer *message.Printer
}

// NewMoney builds a formatter for the locale tag. Unknown tags fall back to English.
func NewMoney(symbol, locale string) Money {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return Money{symbol: symbol, printer: message.NewPrinter(tag)}
}

// Format renders d with two decimals and grouping separators.
func (m Money) Format(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return m.symbol + m.printer.Sprintf("%.2f", f)
}

// Percent renders a 0..1 fraction as a whole percentage, e.g. "75%".
func (m Money) Percent(fraction decimal.Decimal) string {
	f, _ := fraction.Mul(decimal.NewFromInt(100)).Round(0).Float64()
	return m.printer.Sprintf("%.0f%%", f)
}
