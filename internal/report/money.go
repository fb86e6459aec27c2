package report

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// toDecimal converts a float amount, mapping NaN and infinities to zero
func toDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// roundCents rounds an amount to two decimal places
func roundCents(v float64) float64 {
	return toDecimal(v).Round(2).InexactFloat64()
}

// round1 rounds a percentage to one decimal place
func round1(v float64) float64 {
	return toDecimal(v).Round(1).InexactFloat64()
}

// FormatCurrency renders a USD amount without cents, e.g. "$1,235" or "-$40"
func FormatCurrency(v float64) string {
	whole := toDecimal(v).Round(0).IntPart()
	if whole < 0 {
		return "-$" + printer.Sprintf("%d", -whole)
	}
	return "$" + printer.Sprintf("%d", whole)
}

// FormatPercent renders a signed percentage with one decimal, e.g. "+12.5%"
func FormatPercent(v float64) string {
	return fmt.Sprintf("%+.1f%%", v)
}
