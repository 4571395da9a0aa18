package discount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/order-pricing/internal/domain/order"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestRule_ComputeDiscount(t *testing.T) {
	tiers := []Tier{
		{MinSubtotal: d("500"), Percent: d("15")},
		{MinSubtotal: d("100"), Percent: d("5")},
		{MinSubtotal: d("250"), Percent: d("10")},
	}

	tests := []struct {
		name       string
		rule       Rule
		subtotal   string
		wantAmount string
	}{
		{
			name:       "percentage 18% off $100 subtotal",
			rule:       Rule{Code: "PCT18", Type: TypePercentage, Value: d("18")},
			subtotal:   "100",
			wantAmount: "18",
		},
		{
			name:       "percentage 100% off equals subtotal",
			rule:       Rule{Code: "FREE", Type: TypePercentage, Value: d("100")},
			subtotal:   "100",
			wantAmount: "100",
		},
		{
			name:       "percentage capped by max discount",
			rule:       Rule{Code: "CAP", Type: TypePercentage, Value: d("50"), MaxDiscount: d("25")},
			subtotal:   "200",
			wantAmount: "25",
		},
		{
			name:       "decimal precision rounds to 2 dp",
			rule:       Rule{Code: "PCT33", Type: TypePercentage, Value: d("33.33")},
			subtotal:   "10.01",
			wantAmount: "3.34", // 10.01 * 33.33 / 100 = 3.336333
		},
		{
			name:       "percentage with cents precision",
			rule:       Rule{Code: "PCT15", Type: TypePercentage, Value: d("15")},
			subtotal:   "29.97",
			wantAmount: "4.50", // 4.4955
		},
		{
			name:       "rounding never exceeds subtotal",
			rule:       Rule{Code: "FREE", Type: TypePercentage, Value: d("100")},
			subtotal:   "0.005",
			wantAmount: "0.005",
		},
		{
			name:       "fixed $9 off $100 subtotal",
			rule:       Rule{Code: "FLAT9", Type: TypeFixed, Value: d("9")},
			subtotal:   "100",
			wantAmount: "9",
		},
		{
			name:       "fixed $200 off capped at $100 subtotal",
			rule:       Rule{Code: "BIG", Type: TypeFixed, Value: d("200")},
			subtotal:   "100",
			wantAmount: "100",
		},
		{
			name:       "fixed on empty order",
			rule:       Rule{Code: "FLAT9", Type: TypeFixed, Value: d("9")},
			subtotal:   "0",
			wantAmount: "0",
		},
		{
			name:       "tiered below first tier",
			rule:       Rule{Code: "TIER", Type: TypeTiered, Tiers: tiers},
			subtotal:   "99.99",
			wantAmount: "0",
		},
		{
			name:       "tiered exact threshold",
			rule:       Rule{Code: "TIER", Type: TypeTiered, Tiers: tiers},
			subtotal:   "250",
			wantAmount: "25",
		},
		{
			name:       "tiered highest tier",
			rule:       Rule{Code: "TIER", Type: TypeTiered, Tiers: tiers},
			subtotal:   "1000",
			wantAmount: "150",
		},
		{
			name:       "none",
			rule:       Rule{Code: "NONE", Type: TypeNone},
			subtotal:   "1000",
			wantAmount: "0",
		},
		{
			name:       "unknown type grants nothing",
			rule:       Rule{Code: "BAD", Type: Type("bogus"), Value: d("10")},
			subtotal:   "1000",
			wantAmount: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.ComputeDiscount(d(tt.subtotal))
			assert.True(t, d(tt.wantAmount).Equal(got),
				"expected amount %s, got %s", tt.wantAmount, got)
		})
	}
}

func TestRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{name: "valid percentage", rule: Rule{Code: "A", Type: TypePercentage, Value: d("10")}},
		{name: "valid fixed", rule: Rule{Code: "A", Type: TypeFixed, Value: d("10")}},
		{name: "valid tiered", rule: Rule{Code: "A", Type: TypeTiered, Tiers: []Tier{{MinSubtotal: d("1"), Percent: d("1")}}}},
		{name: "valid none", rule: Rule{Code: "A", Type: TypeNone}},
		{name: "empty code", rule: Rule{Type: TypeNone}, wantErr: true},
		{name: "percentage over 100", rule: Rule{Code: "A", Type: TypePercentage, Value: d("101")}, wantErr: true},
		{name: "negative fixed", rule: Rule{Code: "A", Type: TypeFixed, Value: d("-1")}, wantErr: true},
		{name: "tiered without tiers", rule: Rule{Code: "A", Type: TypeTiered}, wantErr: true},
		{name: "tier percent out of range", rule: Rule{Code: "A", Type: TypeTiered, Tiers: []Tier{{MinSubtotal: d("1"), Percent: d("120")}}}, wantErr: true},
		{name: "negative max uses", rule: Rule{Code: "A", Type: TypeNone, MaxUses: -1}, wantErr: true},
		{name: "negative uses", rule: Rule{Code: "A", Type: TypeNone, MaxUses: 1, Uses: -5}, wantErr: true},
		{name: "blank code", rule: Rule{Code: "  ", Type: TypeNone}, wantErr: true},
		{name: "negative max discount", rule: Rule{Code: "A", Type: TypeNone, MaxDiscount: d("-5")}, wantErr: true},
		{name: "unsupported type", rule: Rule{Code: "A", Type: Type("bogus")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRule)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRule_PricesOrder(t *testing.T) {
	items := []order.LineItem{
		order.MustLineItem("Product 1", d("100"), 2),
		order.MustLineItem("Product 2", d("50"), 3),
	}

	tests := []struct {
		name      string
		rule      *Rule
		wantTotal string
	}{
		{name: "10% off", rule: &Rule{Code: "TEN", Type: TypePercentage, Value: d("10")}, wantTotal: "315"},
		{name: "fixed 15", rule: &Rule{Code: "F15", Type: TypeFixed, Value: d("15")}, wantTotal: "335"},
		{name: "fixed over subtotal is capped", rule: &Rule{Code: "F999", Type: TypeFixed, Value: d("999")}, wantTotal: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := order.New(items, tt.rule)
			require.NoError(t, err)

			total, err := o.ComputeTotal()
			require.NoError(t, err)
			assert.True(t, d(tt.wantTotal).Equal(total), "expected total %s, got %s", tt.wantTotal, total)
			assert.Equal(t, 1, o.DiscountCallCount())
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE", NormalizeCode("save"))
	assert.Equal(t, "SAVE", NormalizeCode("  SaVe\t"))
	assert.Equal(t, NormalizeCode("save"), NormalizeCode(" SAVE"))
	assert.Empty(t, NormalizeCode("   "))
}
