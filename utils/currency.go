package utils

import (
	"github.com/shopspring/decimal"
)

// FormatUSD formats an amount as dollars with two decimals, rounding half away from zero.
// Example: 27.125 -> "$27.13"
func FormatUSD(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}
