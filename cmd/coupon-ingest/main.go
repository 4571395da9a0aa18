// Command coupon-ingest finds the coupon codes shared by the couponbaseN.gz
// files and writes them as a coupon catalog.
package main

import (
	"context"
	"os"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/xenking/order-pricing/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		cfg, err := appkg.LoadIngestConfig(os.Args[1:])
		if err != nil {
			return err
		}
		return appkg.RunIngest(ctx, lg, cfg)
	})
}
