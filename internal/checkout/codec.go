package checkout

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// DecodeRequest reads an order document:
//
//	{"items": [{"name": "pen", "unit_price": "1.50", "quantity": 2}], "coupon_code": "FIFTYOFF"}
//
// Prices accept JSON numbers or strings.
func DecodeRequest(r io.Reader) (Request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Request{}, errors.Wrap(err, "read order")
	}

	req := Request{Items: []Item{}}
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeItem(d)
				if err != nil {
					return errors.Wrapf(err, "item #%d", len(req.Items))
				}
				req.Items = append(req.Items, item)
				return nil
			})
		case "coupon_code":
			if d.Next() == jx.Null {
				return d.Null()
			}
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, key)
			}
			req.CouponCode = s
			return nil
		default:
			return d.Skip()
		}
	}); err != nil {
		return Request{}, errors.Wrap(err, "decode order")
	}
	return req, nil
}

func decodeItem(d *jx.Decoder) (Item, error) {
	var item Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			item.Name, err = d.Str()
		case "unit_price":
			item.UnitPrice, err = decodeDecimal(d)
		case "quantity":
			item.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return item, err
}

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
	default:
		return decimal.Zero, errors.Errorf("unexpected %s, want decimal", d.Next())
	}
}

// EncodeReceipt writes r as an indented JSON document. Money is encoded as
// strings with at least two decimal places; sub-cent amounts keep every digit.
func EncodeReceipt(w io.Writer, r *Receipt) error {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.SetIdent(2)

	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(r.ID) })
		e.Field("items", func(e *jx.Encoder) {
			e.ArrStart()
			for _, it := range r.Items {
				e.ObjStart()
				e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
				e.Field("unit_price", func(e *jx.Encoder) { e.Str(money(it.UnitPrice)) })
				e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
				e.ObjEnd()
			}
			e.ArrEnd()
		})
		e.Field("subtotal", func(e *jx.Encoder) { e.Str(money(r.Subtotal)) })
		e.Field("discount", func(e *jx.Encoder) { e.Str(money(r.Discount)) })
		e.Field("total", func(e *jx.Encoder) { e.Str(money(r.Total)) })
		if r.CouponCode != "" {
			e.Field("coupon_code", func(e *jx.Encoder) { e.Str(r.CouponCode) })
		}
		if r.Description != "" {
			e.Field("description", func(e *jx.Encoder) { e.Str(r.Description) })
		}
		e.Field("discount_calls", func(e *jx.Encoder) { e.Int(r.DiscountCalls) })
	})

	if _, err := e.WriteTo(w); err != nil {
		return errors.Wrap(err, "write receipt")
	}
	return nil
}

func money(d decimal.Decimal) string {
	if d.Round(2).Equal(d) {
		return d.StringFixed(2)
	}
	return d.String()
}
