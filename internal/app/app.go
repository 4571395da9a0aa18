// Package app wires the order-total and coupon-ingest commands.
package app

import (
	"context"
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/order-pricing/internal/checkout"
	"github.com/xenking/order-pricing/internal/discount/catalog"
	"github.com/xenking/order-pricing/internal/discount/memory"
	"github.com/xenking/order-pricing/internal/domain/discount"
)

const stdio = "-"

// Run prices the configured order and writes its receipt. It is the single
// wiring point for order-total.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	ctx = zctx.Base(ctx, lg)
	return runOrderTotal(ctx, cfg, m.TracerProvider(), m.MeterProvider(), os.Stdin, os.Stdout)
}

func runOrderTotal(
	ctx context.Context,
	cfg *Config,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	stdin io.Reader,
	stdout io.Writer,
) error {
	lg := zctx.From(ctx)

	store, err := openStore(cfg.CatalogFile)
	if err != nil {
		return err
	}
	lg.Info("Coupon catalog loaded",
		zap.String("file", cfg.CatalogFile),
		zap.Int("coupons", store.Len()),
	)

	svc, err := checkout.NewService(discount.NewRepoValidator(store), tp, mp)
	if err != nil {
		return errors.Wrap(err, "create checkout service")
	}

	req, err := readRequest(cfg.OrderFile, stdin)
	if err != nil {
		return err
	}
	if cfg.CouponCode != "" {
		req.CouponCode = cfg.CouponCode
	}

	receipt, err := svc.Checkout(ctx, req)
	if err != nil {
		return errors.Wrap(err, "checkout")
	}

	return writeOutput(cfg.Output, stdout, func(w io.Writer) error {
		return checkout.EncodeReceipt(w, receipt)
	})
}

func openStore(path string) (*memory.Store, error) {
	if path == "" {
		return memory.New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer func() { _ = f.Close() }()

	rules, err := catalog.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load catalog %s", path)
	}
	return memory.New(rules...), nil
}

func readRequest(path string, stdin io.Reader) (checkout.Request, error) {
	if path == stdio {
		return checkout.DecodeRequest(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return checkout.Request{}, errors.Wrap(err, "open order")
	}
	defer func() { _ = f.Close() }()

	req, err := checkout.DecodeRequest(f)
	if err != nil {
		return checkout.Request{}, errors.Wrapf(err, "read order %s", path)
	}
	return req, nil
}

// writeOutput writes to path, or to stdout when path is "-" or empty.
func writeOutput(path string, stdout io.Writer, write func(w io.Writer) error) error {
	if path == "" || path == stdio {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}
	return nil
}
