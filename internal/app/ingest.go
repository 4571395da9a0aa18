package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/order-pricing/internal/discount/catalog"
	"github.com/xenking/order-pricing/internal/discount/ingest"
)

// RunIngest discovers valid coupon codes in the configured coupon base files
// and writes them as a catalog.
func RunIngest(ctx context.Context, lg *zap.Logger, cfg *IngestConfig) error {
	return runIngest(zctx.Base(ctx, lg), cfg, os.Stdout)
}

func runIngest(ctx context.Context, cfg *IngestConfig, stdout io.Writer) error {
	lg := zctx.From(ctx)

	files := make([]string, cfg.Files)
	for i := range files {
		files[i] = filepath.Join(cfg.DataDir, fmt.Sprintf("couponbase%d.gz", i+1))
	}

	opts := ingest.DefaultOptions()
	opts.MinFiles = cfg.MinFiles
	opts.BloomCapacity = cfg.Bloom.Capacity
	opts.BloomFPR = cfg.Bloom.FPR

	codes, err := ingest.FindValidCodes(ctx, files, opts)
	if err != nil {
		return errors.Wrap(err, "find valid codes")
	}
	rules := ingest.Rules(codes)

	if err := writeOutput(cfg.Output, stdout, func(w io.Writer) error {
		return catalog.Encode(w, rules)
	}); err != nil {
		return err
	}

	lg.Info("Coupon ingest completed",
		zap.Int("codes", len(codes)),
		zap.String("output", cfg.Output),
	)
	return nil
}
