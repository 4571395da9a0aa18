// Package checkout prices customer orders.
package checkout

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/order-pricing/internal/domain/discount"
	"github.com/xenking/order-pricing/internal/domain/order"
)

const instrumentationName = "github.com/xenking/order-pricing/internal/checkout"

// Item is a requested line item.
type Item struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Request holds the input for pricing an order.
type Request struct {
	Items      []Item
	CouponCode string
}

// Receipt holds the output of a successfully priced order.
type Receipt struct {
	ID            string
	Items         []Item
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	CouponCode    string
	Description   string
	DiscountCalls int
}

// Service prices orders, resolving coupon codes into discount calculators.
type Service struct {
	coupons discount.Validator
	tracer  trace.Tracer

	priced   metric.Int64Counter
	rejected metric.Int64Counter
	totals   metric.Float64Histogram
}

// NewService creates a checkout Service.
func NewService(
	coupons discount.Validator,
	tracerProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
) (*Service, error) {
	meter := meterProvider.Meter(instrumentationName)

	priced, err := meter.Int64Counter("checkout.orders.priced",
		metric.WithDescription("Orders priced successfully"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create priced counter")
	}
	rejected, err := meter.Int64Counter("checkout.orders.rejected",
		metric.WithDescription("Orders rejected during pricing"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create rejected counter")
	}
	totals, err := meter.Float64Histogram("checkout.order.total",
		metric.WithDescription("Payable order totals"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create totals histogram")
	}

	return &Service{
		coupons:  coupons,
		tracer:   tracerProvider.Tracer(instrumentationName),
		priced:   priced,
		rejected: rejected,
		totals:   totals,
	}, nil
}

// Checkout validates items, resolves the coupon (if any) into a discount
// calculator, and prices the order. The calculator is consulted exactly
// once.
func (s *Service) Checkout(ctx context.Context, req Request) (_ *Receipt, rerr error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Checkout",
		trace.WithAttributes(
			attribute.Int("order.items", len(req.Items)),
			attribute.Bool("order.coupon", req.CouponCode != ""),
		),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
			s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectReason(rerr))))
		}
		span.End()
	}()

	lg := zctx.From(ctx)

	items := make([]order.LineItem, len(req.Items))
	for i, it := range req.Items {
		li, err := order.NewLineItem(it.Name, it.UnitPrice, it.Quantity)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		items[i] = li
	}

	code := strings.TrimSpace(req.CouponCode)
	calculator := order.NoDiscount
	var description string
	if code != "" {
		// Resolve consumes a use before pricing. A validated rule never
		// discounts past the subtotal, so Price below cannot reject it.
		rule, err := s.coupons.Resolve(ctx, code)
		if err != nil {
			return nil, errors.Wrap(err, "resolve coupon")
		}
		calculator = rule
		description = rule.Description
		lg.Debug("Coupon resolved",
			zap.String("code", rule.Code),
			zap.String("type", string(rule.Type)),
		)
	}

	o, err := order.New(items, calculator)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	p, err := o.Price()
	if err != nil {
		lg.Warn("Order rejected",
			zap.Stringer("subtotal", o.Subtotal()),
			zap.String("coupon", code),
			zap.Error(err),
		)
		return nil, errors.Wrap(err, "price order")
	}

	receipt := &Receipt{
		ID:            uuid.New().String(),
		Items:         req.Items,
		Subtotal:      p.Subtotal,
		Discount:      p.Discount,
		Total:         p.Total,
		CouponCode:    code,
		Description:   description,
		DiscountCalls: o.DiscountCallCount(),
	}

	span.SetAttributes(
		attribute.String("order.id", receipt.ID),
		attribute.String("order.total", receipt.Total.String()),
	)
	s.priced.Add(ctx, 1)
	s.totals.Record(ctx, receipt.Total.InexactFloat64())

	lg.Info("Order priced",
		zap.String("id", receipt.ID),
		zap.Stringer("subtotal", receipt.Subtotal),
		zap.Stringer("discount", receipt.Discount),
		zap.Stringer("total", receipt.Total),
	)
	return receipt, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, discount.ErrInvalidCoupon):
		return "invalid_coupon"
	case errors.Is(err, discount.ErrCouponExpired):
		return "coupon_expired"
	case errors.Is(err, discount.ErrCouponUsageLimitReached):
		return "coupon_exhausted"
	case errors.Is(err, order.ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "internal"
	}
}
