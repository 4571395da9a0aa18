package discount

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage takes a percentage of the subtotal.
	TypePercentage Type = "percentage"
	// TypeFixed takes a fixed amount, capped at the subtotal.
	TypeFixed Type = "fixed"
	// TypeTiered takes the percentage of the highest tier reached by the subtotal.
	TypeTiered Type = "tiered"
	// TypeNone never discounts.
	TypeNone Type = "none"
)

var (
	// ErrInvalidCoupon is returned when a coupon code is not found.
	ErrInvalidCoupon = errors.New("invalid coupon code")
	// ErrCouponExpired is returned when a coupon is outside its valid time window.
	ErrCouponExpired = errors.New("coupon expired")
	// ErrCouponUsageLimitReached is returned when a coupon has exhausted its allowed uses.
	ErrCouponUsageLimitReached = errors.New("coupon usage limit reached")
	// ErrInvalidRule is returned by Rule.Validate for malformed rules.
	ErrInvalidRule = errors.New("invalid discount rule")
)

// Tier is a single step of a tiered rule.
type Tier struct {
	MinSubtotal decimal.Decimal
	Percent     decimal.Decimal
}

// Rule defines a coupon's discount behaviour and eligibility constraints.
//
// A Rule is an order.DiscountCalculator.
type Rule struct {
	Code        string
	Type        Type
	Value       decimal.Decimal
	Tiers       []Tier
	MaxDiscount decimal.Decimal
	Description string
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	MaxUses     int
	Uses        int
}

// Repository provides lookup and mutation of coupon rules.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	IncrementUses(ctx context.Context, code string) error
}

// NormalizeCode returns the lookup key for a coupon code. Codes differing only
// in case or surrounding space are the same coupon.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
