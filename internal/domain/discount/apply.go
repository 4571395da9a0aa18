package discount

import (
	"sort"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-pricing/internal/domain/order"
)

var _ order.DiscountCalculator = (*Rule)(nil)

var hundred = decimal.NewFromInt(100)

// ComputeDiscount returns the discount this rule grants on subtotal.
// Unknown rule types grant nothing; use Validate to reject them up front.
func (r *Rule) ComputeDiscount(subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch r.Type {
	case TypePercentage:
		amount = percentOf(subtotal, r.Value)
	case TypeFixed:
		amount = decimal.Min(r.Value, subtotal)
	case TypeTiered:
		if tier, ok := r.tierFor(subtotal); ok {
			amount = percentOf(subtotal, tier.Percent)
		}
	default:
		return decimal.Zero
	}

	if r.MaxDiscount.IsPositive() && amount.GreaterThan(r.MaxDiscount) {
		amount = r.MaxDiscount
	}
	// Rounding must not push the discount past the subtotal.
	return decimal.Min(floorAtZero(amount).Round(2), floorAtZero(subtotal))
}

// Validate checks that the rule is well formed.
func (r *Rule) Validate() error {
	if NormalizeCode(r.Code) == "" {
		return errors.Wrap(ErrInvalidRule, "empty code")
	}
	if r.MaxUses < 0 {
		return errors.Wrapf(ErrInvalidRule, "coupon %s: negative max uses", r.Code)
	}
	if r.Uses < 0 {
		return errors.Wrapf(ErrInvalidRule, "coupon %s: negative uses", r.Code)
	}
	if r.MaxDiscount.IsNegative() {
		return errors.Wrapf(ErrInvalidRule, "coupon %s: negative max discount", r.Code)
	}
	if r.ValidFrom != nil && r.ValidUntil != nil && r.ValidUntil.Before(*r.ValidFrom) {
		return errors.Wrapf(ErrInvalidRule, "coupon %s: valid_until before valid_from", r.Code)
	}

	switch r.Type {
	case TypePercentage:
		if r.Value.IsNegative() || r.Value.GreaterThan(hundred) {
			return errors.Wrapf(ErrInvalidRule, "coupon %s: percentage %s out of range", r.Code, r.Value)
		}
	case TypeFixed:
		if r.Value.IsNegative() {
			return errors.Wrapf(ErrInvalidRule, "coupon %s: negative fixed value", r.Code)
		}
	case TypeTiered:
		if len(r.Tiers) == 0 {
			return errors.Wrapf(ErrInvalidRule, "coupon %s: tiered rule without tiers", r.Code)
		}
		for _, t := range r.Tiers {
			if t.MinSubtotal.IsNegative() || t.Percent.IsNegative() || t.Percent.GreaterThan(hundred) {
				return errors.Wrapf(ErrInvalidRule, "coupon %s: bad tier %s/%s", r.Code, t.MinSubtotal, t.Percent)
			}
		}
	case TypeNone:
	default:
		return errors.Wrapf(ErrInvalidRule, "coupon %s: unsupported discount type %q", r.Code, r.Type)
	}
	return nil
}

// tierFor returns the highest tier whose MinSubtotal does not exceed subtotal.
func (r *Rule) tierFor(subtotal decimal.Decimal) (Tier, bool) {
	tiers := make([]Tier, len(r.Tiers))
	copy(tiers, r.Tiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinSubtotal.LessThan(tiers[j].MinSubtotal)
	})

	for i := len(tiers) - 1; i >= 0; i-- {
		if subtotal.GreaterThanOrEqual(tiers[i].MinSubtotal) {
			return tiers[i], true
		}
	}
	return Tier{}, false
}

func percentOf(subtotal, percent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percent).Div(hundred)
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
