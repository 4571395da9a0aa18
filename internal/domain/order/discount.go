package order

import "github.com/shopspring/decimal"

// DiscountCalculator computes the discount to subtract from an order
// subtotal.
type DiscountCalculator interface {
	ComputeDiscount(subtotal decimal.Decimal) decimal.Decimal
}

// DiscountFunc adapts a plain function to DiscountCalculator.
type DiscountFunc func(subtotal decimal.Decimal) decimal.Decimal

// ComputeDiscount calls f(subtotal).
func (f DiscountFunc) ComputeDiscount(subtotal decimal.Decimal) decimal.Decimal {
	return f(subtotal)
}

// NoDiscount always returns a zero discount.
var NoDiscount DiscountCalculator = DiscountFunc(func(decimal.Decimal) decimal.Decimal {
	return decimal.Zero
})
