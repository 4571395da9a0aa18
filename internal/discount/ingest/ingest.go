// Package ingest discovers valid coupon codes from gzip-compressed code
// lists. A code is valid when it appears in at least two lists.
//
// Lists are large, so the search runs in two streaming passes: pass 1 builds
// one bloom filter per file; pass 2 re-reads each file and records, per code,
// a bitmask of the files that contain it and also hit another file's filter.
package ingest

import (
	"bufio"
	"context"
	"math/bits"
	"os"
	"sort"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxFiles bounds the per-code bitmask width.
const maxFiles = bits.UintSize

// Options tune the ingester.
type Options struct {
	// BloomCapacity is the expected number of codes per file.
	BloomCapacity uint
	// BloomFPR is the target false positive rate of each filter.
	BloomFPR float64
	// MinCodeLen and MaxCodeLen bound accepted code lengths, inclusive.
	MinCodeLen int
	MaxCodeLen int
	// MinFiles is the number of files a code must appear in.
	MinFiles int
	// ProgressEvery logs progress after this many codes per file; 0 disables.
	ProgressEvery uint64
}

// DefaultOptions match the production coupon base files.
func DefaultOptions() Options {
	return Options{
		BloomCapacity: 120_000_000,
		BloomFPR:      0.001,
		MinCodeLen:    8,
		MaxCodeLen:    10,
		MinFiles:      2,
		ProgressEvery: 10_000_000,
	}
}

func (o Options) accepts(code string) bool {
	return len(code) >= o.MinCodeLen && len(code) <= o.MaxCodeLen
}

// FindValidCodes returns, sorted, the codes present in at least
// opts.MinFiles of the given files.
func FindValidCodes(ctx context.Context, files []string, opts Options) ([]string, error) {
	if len(files) > maxFiles {
		return nil, errors.Errorf("too many files: %d > %d", len(files), maxFiles)
	}
	if opts.MinFiles < 1 {
		opts.MinFiles = 1
	}
	if len(files) < opts.MinFiles {
		return nil, errors.Errorf("need at least %d files, got %d", opts.MinFiles, len(files))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return nil, errors.Wrapf(err, "check file %s", f)
		}
	}

	lg := zctx.From(ctx)

	lg.Info("Pass 1: building bloom filters", zap.Int("files", len(files)))
	filters, err := buildBloomFilters(ctx, files, opts)
	if err != nil {
		return nil, errors.Wrap(err, "build bloom filters")
	}

	lg.Info("Pass 2: finding candidate codes")
	valid, err := findValidCodes(ctx, files, filters, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find valid codes")
	}

	lg.Info("Valid codes found", zap.Int("count", len(valid)))
	return valid, nil
}

// buildBloomFilters creates one bloom filter per file, concurrently.
func buildBloomFilters(ctx context.Context, files []string, opts Options) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(opts.BloomCapacity, opts.BloomFPR)
			var count uint64

			if err := streamGzFile(ctx, f, func(code string) {
				if !opts.accepts(code) {
					return
				}
				filter.AddString(code)
				count++
				logProgress(ctx, opts, "Pass 1 progress", i, count)
			}); err != nil {
				return errors.Wrapf(err, "build filter for file %d", i+1)
			}

			zctx.From(ctx).Info("Pass 1 complete",
				zap.Int("file", i+1),
				zap.Uint64("total_codes", count),
			)
			filters[i] = filter
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// findValidCodes re-streams each file and checks codes against the other
// files' filters, then keeps codes seen in enough files.
func findValidCodes(ctx context.Context, files []string, filters []*bloom.BloomFilter, opts Options) ([]string, error) {
	results := make([]map[string]uint, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			candidates := make(map[string]uint)
			fileBit := uint(1) << uint(i)
			var count uint64

			if err := streamGzFile(ctx, f, func(code string) {
				if !opts.accepts(code) {
					return
				}
				count++
				logProgress(ctx, opts, "Pass 2 progress", i, count)

				if opts.MinFiles == 1 {
					candidates[code] |= fileBit
					return
				}
				for j, other := range filters {
					if j == i {
						continue
					}
					if other.TestString(code) {
						candidates[code] |= fileBit
						break
					}
				}
			}); err != nil {
				return errors.Wrapf(err, "scan file %d for candidates", i+1)
			}

			zctx.From(ctx).Info("Pass 2 complete",
				zap.Int("file", i+1),
				zap.Uint64("total_codes", count),
				zap.Int("candidates", len(candidates)),
			)
			results[i] = candidates
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, r := range results {
		for code, mask := range r {
			merged[code] |= mask
		}
	}

	var valid []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= opts.MinFiles {
			valid = append(valid, code)
		}
	}
	sort.Strings(valid)
	return valid, nil
}

func logProgress(ctx context.Context, opts Options, msg string, idx int, count uint64) {
	if opts.ProgressEvery == 0 || count%opts.ProgressEvery != 0 {
		return
	}
	zctx.From(ctx).Info(msg, zap.Int("file", idx+1), zap.Uint64("codes", count))
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}
