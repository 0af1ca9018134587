package core

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatBRL renders an amount as Brazilian reais.
//
// Examples:
//
//	FormatBRL(decimal.NewFromFloat(1234.56)) -> "R$ 1.234,56"
//	FormatBRL(decimal.NewFromInt(-1))        -> "-R$ 1,00"
func FormatBRL(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	out := "R$ " + groupThousands(intPart, '.') + "," + frac
	if d.Round(2).IsNegative() {
		return "-" + out
	}
	return out
}

func groupThousands(digits string, sep byte) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatCount renders an integer with Brazilian digit grouping, e.g. 1234 -> "1.234".
func FormatCount(n int) string {
	return message.NewPrinter(language.BrazilianPortuguese).Sprintf("%d", n)
}

// SignClass is the css class for a balance: "positive" for values >= 0, "negative" otherwise.
func SignClass(d decimal.Decimal) string {
	if d.IsNegative() {
		return "negative"
	}
	return "positive"
}
