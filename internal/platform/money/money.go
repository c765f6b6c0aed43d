// Package money formats monetary amounts for display. Amounts are stored as
// plain numbers; formatting only happens at presentation time.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const FractionDigits = 2

type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a formatter for the given BCP 47 locale, falling back
// to English when the tag does not parse.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Amount renders value with locale grouping and exactly two fraction digits.
func (f *Formatter) Amount(value float64) string {
	rounded, _ := decimal.NewFromFloat(value).Round(FractionDigits).Float64()
	return f.printer.Sprint(number.Decimal(rounded, number.Scale(FractionDigits)))
}

// Format prefixes the amount with its ISO currency code. Unknown or empty
// codes render the bare amount.
func (f *Formatter) Format(value float64, code string) string {
	amount := f.Amount(value)
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return amount
	}
	return unit.String() + " " + amount
}

var defaultFormatter = NewFormatter("en")

func Format(value float64, code string) string {
	return defaultFormatter.Format(value, code)
}

// Fixed renders value with two fraction digits and no grouping, the form used
// for editable inputs.
func Fixed(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(FractionDigits)
}
