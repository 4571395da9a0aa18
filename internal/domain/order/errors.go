package order

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidArgument classifies every pricing failure of this package.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNilCalculator is returned by New when no discount calculator is given.
var ErrNilCalculator = fmt.Errorf("discount calculator required: %w", ErrInvalidArgument)

// DiscountExceedsSubtotalError indicates that subtracting the discount would
// produce a negative total.
type DiscountExceedsSubtotalError struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
}

func (e *DiscountExceedsSubtotalError) Error() string {
	return fmt.Sprintf("discount exceeds order subtotal: discount %s, subtotal %s", e.Discount, e.Subtotal)
}

func (e *DiscountExceedsSubtotalError) Is(target error) bool { return target == ErrInvalidArgument }

// NegativeDiscountError indicates the calculator returned a negative amount.
type NegativeDiscountError struct {
	Discount decimal.Decimal
}

func (e *NegativeDiscountError) Error() string {
	return fmt.Sprintf("discount must not be negative: %s", e.Discount)
}

func (e *NegativeDiscountError) Is(target error) bool { return target == ErrInvalidArgument }

// InvalidLineItemError indicates a line item failed construction checks.
type InvalidLineItemError struct {
	Name   string
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("line item %q: %s", e.Name, e.Reason)
}

func (e *InvalidLineItemError) Is(target error) bool { return target == ErrInvalidArgument }
