// Package catalog reads and writes coupon rule catalogs as JSON.
//
//	{"coupons": [{"code": "HAPPYHOURS", "type": "percentage", "value": "18"}]}
//
// Decimal fields accept JSON numbers or strings. Times are RFC 3339, with
// optional fractional seconds.
package catalog

import (
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-pricing/internal/domain/discount"
)

// Decode reads a catalog document and validates every rule in it.
func Decode(r io.Reader) ([]discount.Rule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) ([]discount.Rule, error) {
	var rules []discount.Rule
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "coupons":
			return d.Arr(func(d *jx.Decoder) error {
				rule, err := decodeRule(d)
				if err != nil {
					return errors.Wrapf(err, "coupon #%d", len(rules))
				}
				rules = append(rules, rule)
				return nil
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}

	seen := make(map[string]struct{}, len(rules))
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return nil, err
		}
		key := discount.NormalizeCode(rules[i].Code)
		if _, dup := seen[key]; dup {
			return nil, errors.Errorf("duplicate coupon code %q", rules[i].Code)
		}
		seen[key] = struct{}{}
	}
	return rules, nil
}

func decodeRule(d *jx.Decoder) (discount.Rule, error) {
	var rule discount.Rule
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			rule.Code, err = d.Str()
		case "type":
			var s string
			s, err = d.Str()
			rule.Type = discount.Type(s)
		case "value":
			rule.Value, err = decodeDecimal(d)
		case "max_discount":
			rule.MaxDiscount, err = decodeDecimal(d)
		case "description":
			rule.Description, err = d.Str()
		case "valid_from":
			rule.ValidFrom, err = decodeTime(d)
		case "valid_until":
			rule.ValidUntil, err = decodeTime(d)
		case "max_uses":
			rule.MaxUses, err = d.Int()
		case "uses":
			rule.Uses, err = d.Int()
		case "tiers":
			err = d.Arr(func(d *jx.Decoder) error {
				tier, err := decodeTier(d)
				if err != nil {
					return err
				}
				rule.Tiers = append(rule.Tiers, tier)
				return nil
			})
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return rule, err
}

func decodeTier(d *jx.Decoder) (discount.Tier, error) {
	var tier discount.Tier
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "min_subtotal":
			tier.MinSubtotal, err = decodeDecimal(d)
		case "percent":
			tier.Percent, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return tier, err
}

// decodeDecimal accepts 12.5, "12.5" and null.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	case jx.Null:
		return decimal.Zero, d.Null()
	default:
		return decimal.Zero, errors.Errorf("unexpected %s, want decimal", d.Next())
	}
}

func decodeTime(d *jx.Decoder) (*time.Time, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Encode writes rules as a catalog document.
func Encode(w io.Writer, rules []discount.Rule) error {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.SetIdent(2)

	e.Obj(func(e *jx.Encoder) {
		e.Field("coupons", func(e *jx.Encoder) {
			e.ArrStart()
			for i := range rules {
				encodeRule(e, &rules[i])
			}
			e.ArrEnd()
		})
	})

	if _, err := e.WriteTo(w); err != nil {
		return errors.Wrap(err, "write catalog")
	}
	return nil
}

func encodeRule(e *jx.Encoder, r *discount.Rule) {
	e.ObjStart()
	e.Field("code", func(e *jx.Encoder) { e.Str(r.Code) })
	e.Field("type", func(e *jx.Encoder) { e.Str(string(r.Type)) })
	e.Field("value", func(e *jx.Encoder) { e.Str(r.Value.String()) })
	if len(r.Tiers) > 0 {
		e.Field("tiers", func(e *jx.Encoder) {
			e.ArrStart()
			for _, t := range r.Tiers {
				e.ObjStart()
				e.Field("min_subtotal", func(e *jx.Encoder) { e.Str(t.MinSubtotal.String()) })
				e.Field("percent", func(e *jx.Encoder) { e.Str(t.Percent.String()) })
				e.ObjEnd()
			}
			e.ArrEnd()
		})
	}
	if !r.MaxDiscount.IsZero() {
		e.Field("max_discount", func(e *jx.Encoder) { e.Str(r.MaxDiscount.String()) })
	}
	if r.Description != "" {
		e.Field("description", func(e *jx.Encoder) { e.Str(r.Description) })
	}
	if r.ValidFrom != nil {
		e.Field("valid_from", func(e *jx.Encoder) { e.Str(r.ValidFrom.Format(time.RFC3339Nano)) })
	}
	if r.ValidUntil != nil {
		e.Field("valid_until", func(e *jx.Encoder) { e.Str(r.ValidUntil.Format(time.RFC3339Nano)) })
	}
	if r.MaxUses > 0 {
		e.Field("max_uses", func(e *jx.Encoder) { e.Int(r.MaxUses) })
	}
	if r.Uses > 0 {
		e.Field("uses", func(e *jx.Encoder) { e.Int(r.Uses) })
	}
	e.ObjEnd()
}
