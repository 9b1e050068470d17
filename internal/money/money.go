// Package money holds currency rounding and display helpers.
// Rounding goes through shopspring/decimal so that values such as 1.005
// round on their decimal representation instead of their binary one.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// RoundWhole rounds to the nearest whole currency unit, halves away from zero.
func RoundWhole(v float64) float64 {
	return Round(v, 0)
}

// Round rounds v to the given number of decimal places, halves away from zero.
// NaN and ±Inf are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// FormatINR renders a whole-rupee amount with Indian digit grouping,
// e.g. 556512 -> "₹5,56,512".
func FormatINR(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "₹n/a"
	}
	d := decimal.NewFromFloat(amount).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "₹" + groupIndian(d.Abs().String())
}

// groupIndian inserts separators after the last three digits and then
// every two digits (lakh/crore grouping).
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}
