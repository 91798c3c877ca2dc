package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/config"
	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/logger"
	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/manifest"
	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/metrics"
	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/packager"
	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/resolver"
	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/encoding"
	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/formats"
)

// session carries what every command needs once flags are parsed.
type session struct {
	cfg     *config.Config
	fs      afero.Fs
	log     *zap.Logger
	metrics *metrics.Collector
}

func newSession(name string, args []string) (*session, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.FileConfig())
	log := logger.Log.With(zap.String("run", uuid.NewString()), zap.String("command", name))

	return &session{
		cfg:     cfg,
		fs:      afero.NewOsFs(),
		log:     log,
		metrics: metrics.New(),
	}, nil
}

func (s *session) close() {
	if path := s.cfg.Metrics.Textfile; path != "" {
		if err := s.metrics.WriteTextfile(path); err != nil {
			s.log.Warn("failed to export metrics", zap.String("path", path), zap.Error(err))
		}
	}
	logger.Sync()
}

func cmdResolve(args []string) error {
	s, err := newSession("resolve", args)
	if err != nil {
		return err
	}
	defer s.close()

	_, err = s.resolve()
	return err
}

func cmdPackage(args []string) error {
	s, err := newSession("package", args)
	if err != nil {
		return err
	}
	defer s.close()

	lines, err := manifest.ReadFile(s.fs, s.cfg.Paths.Output)
	if err != nil {
		return err
	}
	return s.pack(lines)
}

func cmdRun(args []string) error {
	s, err := newSession("run", args)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.resolve()
	if err != nil {
		return err
	}
	return s.pack(res.Lines())
}

// resolve computes the closure and writes the manifest.
func (s *session) resolve() (*resolver.Result, error) {
	p := s.cfg.Paths
	start := time.Now()

	res, err := resolver.New(resolver.Options{
		TerrainDir:    p.TerrainDir,
		DataRoot:      p.DataRoot,
		AuxObjectRoot: p.AuxObjectRoot,
		AuxModelRoot:  p.AuxModelRoot,
		FullClosure:   s.cfg.Resolve.FullClosure,
		Fs:            s.fs,
		Logger:        s.log,
		Recorder:      s.metrics,
	}).Run()
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveResult(res)
	s.metrics.ObserveStage("resolve", time.Since(start))

	if err := manifest.WriteFile(s.fs, p.Output, res.Lines()); err != nil {
		return nil, err
	}
	fmt.Printf("Saved results to: %s\n", absPath(p.Output))
	return res, nil
}

// pack copies the manifest entries to the configured destination.
func (s *session) pack(lines []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := s.sink(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	stats, err := packager.Package(ctx, lines, packager.Options{
		DataRoot:   s.cfg.Paths.DataRoot,
		IgnoreRoot: s.cfg.Paths.IgnoreRoot,
		Sink:       sink,
		Workers:    s.cfg.Package.Workers,
		Fs:         s.fs,
		Logger:     s.log,
		Recorder:   s.metrics,
	})
	s.metrics.ObserveStage("package", time.Since(start))
	if err != nil {
		return err
	}

	fmt.Printf("Packaged to %s: %d copied, %d skipped, %d missing, %d failed\n",
		sink, stats.Copied, stats.Skipped, stats.Missing, stats.Failed)
	return nil
}

func (s *session) sink(ctx context.Context) (packager.Sink, error) {
	if s3cfg := s.cfg.Package.S3; s3cfg.Enabled() {
		return packager.NewS3Sink(ctx, packager.S3Config{
			Bucket:          s3cfg.Bucket,
			Prefix:          s3cfg.Prefix,
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
			UsePathStyle:    s3cfg.UsePathStyle,
		})
	}
	if s.cfg.Paths.Destination == "" {
		return nil, errors.New("no destination: set -dest or package.s3.bucket")
	}
	return packager.NewDirSink(s.fs, s.cfg.Paths.Destination), nil
}

func cmdInspect(args []string) error {
	if len(args) < 1 {
		return errors.New("inspect needs at least one file")
	}

	fsys := afero.NewOsFs()
	for _, name := range args {
		if err := inspect(fsys, name); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func inspect(fsys afero.Fs, name string) error {
	fmt.Printf("%s\n", name)
	switch strings.ToLower(filepath.Ext(name)) {
	case formats.ExtADT:
		refs, err := formats.ExtractADT(fsys, name)
		if err != nil {
			return err
		}
		printRefs("Models", refs.Models)
		printRefs("Objects", refs.Objects)
		printRefs("Textures", refs.Textures)
	case formats.ExtWMO:
		refs, err := formats.ExtractWMO(fsys, name)
		if err != nil {
			return err
		}
		printRefs("Models", refs.Models)
		printRefs("Textures", refs.Textures)
		printRefs("Rejected", refs.Rejected)
	case formats.ExtM2, formats.ExtMDX:
		refs, err := formats.ExtractM2(fsys, name)
		if err != nil {
			return err
		}
		printRefs("Textures", refs.Textures)
	default:
		return fmt.Errorf("unsupported file type %q", filepath.Ext(name))
	}
	return nil
}

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	save := fs.Bool("save", false, "Write the effective config to the user config directory")
	saveTo := fs.String("save-to", "", "Write the effective config to this file")
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	return showConfig(os.Stdout, cfg, *save, *saveTo)
}

// showConfig prints cfg as YAML, or saves it when save or saveTo is set.
func showConfig(w io.Writer, cfg *config.Config, save bool, saveTo string) error {
	var path string
	var err error
	switch {
	case saveTo != "":
		path, err = saveTo, cfg.SaveTo(saveTo)
	case save:
		path, err = cfg.Save()
	default:
		data, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(w, "Saved config to: %s\n", path)
	return nil
}

func printRefs(label string, refs []string) {
	fmt.Printf("  %s: %d\n", label, len(refs))
	for _, r := range refs {
		fmt.Printf("    %s\n", encoding.NormalizePath(r))
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
