// Package money centralizes currency arithmetic so every calculator rounds the same way.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round rounds to whole currency units, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// Percent returns rate% of base, unrounded.
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred)
}

// ZeroFloor clamps negative amounts to zero.
func ZeroFloor(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func Min(first decimal.Decimal, rest ...decimal.Decimal) decimal.Decimal {
	return decimal.Min(first, rest...)
}

// Sum adds amounts; an empty call returns zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Annualize scales a monthly amount to a year.
func Annualize(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Mul(decimal.NewFromInt(12))
}

// Monthly divides an annual amount by twelve, unrounded.
func Monthly(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(decimal.NewFromInt(12))
}
