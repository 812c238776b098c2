package orders

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ValidAmount reports whether a is positive and within [min, max].
func ValidAmount(a, min, max decimal.Decimal) bool {
	if a.LessThanOrEqual(decimal.Zero) {
		return false
	}
	return a.GreaterThanOrEqual(min) && a.LessThanOrEqual(max)
}

// Payable returns amount minus discountPercent, rounded to 2 decimals.
// Discount 0 returns the amount unchanged.
func Payable(amount, discountPercent decimal.Decimal) decimal.Decimal {
	if discountPercent.IsZero() {
		return amount
	}
	cut := amount.Mul(discountPercent).Div(hundred)
	return amount.Sub(cut).Round(2)
}
