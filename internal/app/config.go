package app

import (
	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the order-total configuration, loadable from environment
// variables (PRICING_ prefix), flags, or YAML config files.
type Config struct {
	OrderFile   string `default:"-" usage:"Order JSON file, - for stdin" flag:"order-file"`
	CatalogFile string `default:"" usage:"Coupon catalog JSON file (optional)" flag:"catalog-file"`
	CouponCode  string `default:"" usage:"Coupon code, overrides the one in the order file" flag:"coupon"`
	Output      string `default:"-" usage:"Receipt output file, - for stdout" flag:"output"`
}

// IngestConfig holds the coupon-ingest configuration.
type IngestConfig struct {
	DataDir  string `default:"data" usage:"Directory containing couponbaseN.gz files" flag:"data-dir"`
	Files    int    `default:"3" usage:"Number of couponbaseN.gz files to read" flag:"files"`
	MinFiles int    `default:"2" usage:"Number of files a code must appear in" flag:"min-files"`
	Output   string `default:"coupons.json" usage:"Catalog output file, - for stdout" flag:"output"`
	Bloom    BloomConfig
}

// BloomConfig sizes the per-file bloom filters.
type BloomConfig struct {
	Capacity uint    `default:"120000000" usage:"Expected codes per file" flag:"capacity"`
	FPR      float64 `default:"0.001" usage:"Target false positive rate" flag:"fpr"`
}

// LoadConfig loads the order-total configuration. args are the command-line
// arguments without the program name.
func LoadConfig(args []string) (*Config, error) {
	var cfg Config
	if err := load(&cfg, args); err != nil {
		return nil, err
	}
	if cfg.OrderFile == "" {
		return nil, errors.New("order file is required: set --order-file or PRICING_ORDER_FILE")
	}
	return &cfg, nil
}

// LoadIngestConfig loads the coupon-ingest configuration.
func LoadIngestConfig(args []string) (*IngestConfig, error) {
	var cfg IngestConfig
	if err := load(&cfg, args); err != nil {
		return nil, err
	}
	switch {
	case cfg.Files < 1:
		return nil, errors.Errorf("files must be positive, got %d", cfg.Files)
	case cfg.MinFiles < 1 || cfg.MinFiles > cfg.Files:
		return nil, errors.Errorf("min files must be in [1, %d], got %d", cfg.Files, cfg.MinFiles)
	case cfg.Bloom.FPR <= 0 || cfg.Bloom.FPR >= 1:
		return nil, errors.Errorf("bloom fpr must be in (0, 1), got %v", cfg.Bloom.FPR)
	}
	return &cfg, nil
}

func load(dst any, args []string) error {
	if args == nil {
		args = []string{}
	}
	loader := aconfig.LoaderFor(dst, aconfig.Config{
		EnvPrefix: "PRICING",
		Files:     []string{"config.yaml", "/etc/order-pricing/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
		Args: args,

		// order-total and coupon-ingest share the config files and env prefix.
		AllowUnknownFields: true,
		AllowUnknownEnvs:   true,
	})
	if err := loader.Load(); err != nil {
		return errors.Wrap(err, "load config")
	}
	return nil
}
