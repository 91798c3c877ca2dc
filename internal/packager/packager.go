// Package packager copies the files named in a manifest out of the data root
// into a destination, skipping files already present in an ignore root.
package packager

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/assetfs"
	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/encoding"
	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/formats"
)

var (
	// ErrSourceMissing is reported for manifest entries not found under the data root.
	ErrSourceMissing = errors.New("source file not found")
	// ErrUnsafePath is reported for manifest entries that would resolve
	// outside the data root or the destination.
	ErrUnsafePath = errors.New("path leaves its root")
	// ErrNoSink is returned when Options has no Sink.
	ErrNoSink = errors.New("no destination configured")
)

// Package results, used as log fields and metric labels.
const (
	ResultCopied  = "copied"
	ResultSkipped = "skipped"
	ResultMissing = "missing"
	ResultFailed  = "failed"
)

// Recorder observes packaged files.
type Recorder interface {
	FilePackaged(result string)
}

type nopRecorder struct{}

func (nopRecorder) FilePackaged(string) {}

// Options configures a packaging run.
type Options struct {
	// DataRoot is where manifest paths are read from.
	DataRoot string
	// IgnoreRoot, when set, names a tree of files the destination already has.
	// Entries found there are not copied.
	IgnoreRoot string
	Sink       Sink
	// Workers is the number of concurrent copies. Defaults to GOMAXPROCS.
	Workers int

	Fs       afero.Fs
	Logger   *zap.Logger
	Recorder Recorder
}

// Stats counts the outcome of each manifest entry.
type Stats struct {
	Copied  int
	Skipped int
	Missing int
	Failed  int
}

// Total returns the number of entries handled.
func (s Stats) Total() int {
	return s.Copied + s.Skipped + s.Missing + s.Failed
}

type counters struct {
	copied, skipped, missing, failed atomic.Int64
}

func (c *counters) stats() Stats {
	return Stats{
		Copied:  int(c.copied.Load()),
		Skipped: int(c.skipped.Load()),
		Missing: int(c.missing.Load()),
		Failed:  int(c.failed.Load()),
	}
}

// Package copies every manifest line to opts.Sink. Per-file failures are
// logged and counted; the returned error is non-nil only when the run could
// not start or ctx was cancelled.
func Package(ctx context.Context, lines []string, opts Options) (Stats, error) {
	if opts.Sink == nil {
		return Stats{}, ErrNoSink
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	log := opts.Logger
	rec := opts.Recorder
	data := assetfs.New(opts.Fs, opts.DataRoot)
	var ignore *assetfs.Store
	if opts.IgnoreRoot != "" {
		ignore = assetfs.New(opts.Fs, opts.IgnoreRoot)
	}

	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	start := time.Now()
	log.Info("packaging assets",
		zap.Int("entries", len(lines)),
		zap.String("destination", opts.Sink.String()),
		zap.Int("workers", opts.Workers))

	var c counters
	var wg sync.WaitGroup
	for _, line := range lines {
		if ctx.Err() != nil {
			break
		}

		rel, err := locate(data, line)
		if errors.Is(err, ErrUnsafePath) {
			log.Warn("rejecting manifest entry", zap.String("path", line), zap.Error(err))
			c.failed.Add(1)
			rec.FilePackaged(ResultFailed)
			continue
		}
		if err != nil {
			log.Warn("skipping manifest entry", zap.String("path", line), zap.Error(err))
			c.missing.Add(1)
			rec.FilePackaged(ResultMissing)
			continue
		}
		if ignore != nil {
			if _, ok := ignore.Locate(rel); ok {
				log.Debug("already present in ignore root", zap.String("path", rel))
				c.skipped.Add(1)
				rec.FilePackaged(ResultSkipped)
				continue
			}
		}

		wg.Add(1)
		err = pool.Submit(func() {
			defer wg.Done()
			if err := copyFile(ctx, data, opts.Sink, rel); err != nil {
				log.Warn("failed to copy asset", zap.String("path", rel), zap.Error(err))
				c.failed.Add(1)
				rec.FilePackaged(ResultFailed)
				return
			}
			c.copied.Add(1)
			rec.FilePackaged(ResultCopied)
		})
		if err != nil {
			wg.Done()
			log.Warn("failed to schedule copy", zap.String("path", rel), zap.Error(err))
			c.failed.Add(1)
			rec.FilePackaged(ResultFailed)
		}
	}
	wg.Wait()

	stats := c.stats()
	log.Info("packaging finished",
		zap.Int("copied", stats.Copied),
		zap.Int("skipped", stats.Skipped),
		zap.Int("missing", stats.Missing),
		zap.Int("failed", stats.Failed),
		zap.Duration("elapsed", time.Since(start)))

	return stats, ctx.Err()
}

// locate maps a manifest line to the file on disk, applying the model
// extension alias.
func locate(data *assetfs.Store, line string) (string, error) {
	if !encoding.IsLocal(line) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, line)
	}
	rel := formats.CanonicalModelPath(encoding.NormalizePath(line))
	located, ok := data.Locate(rel)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSourceMissing, data.Abs(rel))
	}
	return located, nil
}

func copyFile(ctx context.Context, data *assetfs.Store, sink Sink, rel string) error {
	f, err := data.Open(rel)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return sink.Put(ctx, rel, f, info.Size())
}
