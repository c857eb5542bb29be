// Package calculator holds the pure derivations consumed by the allocation
// engine and the read-only views: line and debt totals, remaining amounts,
// and ledger running balances. Nothing here touches storage.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/samantr/randp-backend/internal/models"
)

// MoneyScale is the number of fractional digits carried by monetary amounts.
const MoneyScale = 0

// QuantityScale is the number of fractional digits carried by line quantities.
const QuantityScale = 3

// LineTotal computes quantity × unitPrice rounded to whole currency units.
// Rounding is half away from zero; quantities are positive and prices
// non-negative, so this is round-half-up. This is the single rounding
// boundary in the system: debt totals are sums of already-rounded line
// totals, never re-rounded.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(MoneyScale)
}

// DebtTotal sums the line totals of a debt. Zero if there are no lines.
func DebtTotal(lines []models.DebtLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	return total
}

// Remaining is total minus covered. It can be negative only if the caller
// violated the no-over-allocation invariant.
func Remaining(total, covered decimal.Decimal) decimal.Decimal {
	return total.Sub(covered)
}

// DisplayRemaining is Remaining floored at zero, for display purposes only.
func DisplayRemaining(total, covered decimal.Decimal) decimal.Decimal {
	r := Remaining(total, covered)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// IsWholeAmount reports whether d carries no fractional currency units.
func IsWholeAmount(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// IsValidQuantity reports whether d is positive with at most QuantityScale
// fractional digits.
func IsValidQuantity(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Truncate(QuantityScale))
}
