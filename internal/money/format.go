// Package money formats currency amounts for owner-facing output.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders amount as US dollars with two decimals and thousands
// grouping, e.g. 1234.5 -> "$1,234.50" and -20 -> "-$20.00". The amount is
// never converted to a float, so every digit is preserved.
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	whole, cents, _ := strings.Cut(rounded.StringFixed(2), ".")
	return sign + "$" + groupThousands(whole) + "." + cents
}

// groupThousands inserts locale grouping separators into a string of digits.
// Values that fit in an int64 are formatted by the locale printer.
func groupThousands(digits string) string {
	if v, err := decimal.NewFromString(digits); err == nil && v.BigInt().IsInt64() {
		return printer.Sprint(number.Decimal(v.IntPart()))
	}

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
