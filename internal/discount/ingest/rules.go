package ingest

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/order-pricing/internal/domain/discount"
)

// knownRules holds the discount applied to specific promotional codes.
var knownRules = map[string]discount.Rule{
	"FIFTYOFF": {Type: discount.TypePercentage, Value: decimal.NewFromInt(50), Description: "50% off entire order"},
	"SIXTYOFF": {Type: discount.TypePercentage, Value: decimal.NewFromInt(60), Description: "60% off entire order"},
	"FREEZAAA": {Type: discount.TypePercentage, Value: decimal.NewFromInt(100), Description: "Everything free!"},
	"GNULINUX": {Type: discount.TypePercentage, Value: decimal.NewFromInt(15), Description: "Open source discount: 15% off"},
	"OVER9000": {Type: discount.TypeFixed, Value: decimal.NewFromInt(9), Description: "$9 off your order"},
	"HAPPYHRS": {Type: discount.TypePercentage, Value: decimal.NewFromInt(18), Description: "Happy Hours: 18% off"},
	"BULKBUYS": {
		Type: discount.TypeTiered,
		Tiers: []discount.Tier{
			{MinSubtotal: decimal.NewFromInt(100), Percent: decimal.NewFromInt(5)},
			{MinSubtotal: decimal.NewFromInt(500), Percent: decimal.NewFromInt(10)},
		},
		Description: "Volume discount: up to 10% off",
	},
}

var defaultRule = discount.Rule{
	Type:        discount.TypePercentage,
	Value:       decimal.NewFromInt(10),
	Description: "Valid promo code: 10% off",
}

// Rules maps discovered codes to discount rules. Codes without a dedicated
// rule get a 10% discount.
func Rules(codes []string) []discount.Rule {
	out := make([]discount.Rule, 0, len(codes))
	for _, code := range codes {
		rule, ok := knownRules[code]
		if !ok {
			rule = defaultRule
		}
		rule.Code = code
		out = append(out, rule)
	}
	return out
}
