package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds a number to 2 decimal places for monetary calculations
func Round(num float64) float64 {
	if !IsFinite(num) {
		return num
	}
	return decimal.NewFromFloat(num).Round(MoneyDecimalPlaces).InexactFloat64()
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	return math.Min(a, b)
}

// IsFinite reports whether x is neither NaN nor infinite
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// IsSettled reports whether a balance is close enough to zero to ignore
func IsSettled(balance float64) bool {
	return math.Abs(balance) < SettleEpsilon
}

// FormatMoney renders an amount with exactly two decimals
func FormatMoney(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(MoneyDecimalPlaces)
}
