package order

import (
	"github.com/shopspring/decimal"
)

// LineItem is a priced, quantified product entry within an order.
// It is immutable once constructed.
type LineItem struct {
	name      string
	unitPrice decimal.Decimal
	quantity  int
}

// NewLineItem creates a LineItem. Negative prices and quantities are
// rejected with an error matching ErrInvalidArgument.
func NewLineItem(name string, unitPrice decimal.Decimal, quantity int) (LineItem, error) {
	if unitPrice.IsNegative() {
		return LineItem{}, &InvalidLineItemError{Name: name, Reason: "unit price must not be negative"}
	}
	if quantity < 0 {
		return LineItem{}, &InvalidLineItemError{Name: name, Reason: "quantity must not be negative"}
	}
	return LineItem{name: name, unitPrice: unitPrice, quantity: quantity}, nil
}

// MustLineItem is like NewLineItem but panics on invalid input.
func MustLineItem(name string, unitPrice decimal.Decimal, quantity int) LineItem {
	item, err := NewLineItem(name, unitPrice, quantity)
	if err != nil {
		panic(err)
	}
	return item
}

func (i LineItem) Name() string               { return i.name }
func (i LineItem) UnitPrice() decimal.Decimal { return i.unitPrice }
func (i LineItem) Quantity() int              { return i.quantity }

// Subtotal returns unit price multiplied by quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity)))
}

// Pricing is the breakdown of a single total computation.
type Pricing struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Order aggregates line items and the discount collaborator used to price
// them. The collaborator is shared, not owned.
//
// Order is not safe for concurrent use: every computation mutates the
// discount call counter.
type Order struct {
	items         []LineItem
	calculator    DiscountCalculator
	discountCalls int
}

// New creates an Order over a copy of items.
func New(items []LineItem, calculator DiscountCalculator) (*Order, error) {
	if calculator == nil {
		return nil, ErrNilCalculator
	}
	return &Order{
		items:      append([]LineItem(nil), items...),
		calculator: calculator,
	}, nil
}

// Items returns a copy of the order's line items.
func (o *Order) Items() []LineItem {
	return append([]LineItem(nil), o.items...)
}

// Subtotal returns the sum of all line subtotals, zero for an empty order.
// It does not consult the discount calculator.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

// Price computes subtotal, discount and total. The calculator is called
// exactly once per invocation, even for an empty order.
//
// A discount greater than the subtotal fails with
// *DiscountExceedsSubtotalError; a negative discount fails with
// *NegativeDiscountError. Both match ErrInvalidArgument.
func (o *Order) Price() (Pricing, error) {
	subtotal := o.Subtotal()

	discount := o.calculator.ComputeDiscount(subtotal)
	o.discountCalls++

	if discount.IsNegative() {
		return Pricing{}, &NegativeDiscountError{Discount: discount}
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return Pricing{}, &DiscountExceedsSubtotalError{
			Subtotal: subtotal,
			Discount: discount,
		}
	}

	return Pricing{
		Subtotal: subtotal,
		Discount: discount,
		Total:    total,
	}, nil
}

// ComputeTotal returns subtotal minus discount. See Price for the failure
// rules; on failure the returned total is zero and must not be used.
func (o *Order) ComputeTotal() (decimal.Decimal, error) {
	p, err := o.Price()
	if err != nil {
		return decimal.Zero, err
	}
	return p.Total, nil
}

// DiscountCallCount reports how many times the discount calculator has been
// invoked since the order was constructed.
func (o *Order) DiscountCallCount() int {
	return o.discountCalls
}
