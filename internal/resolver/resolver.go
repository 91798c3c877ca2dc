// Package resolver computes the closure of asset files referenced by a set of
// terrain tiles: terrain -> object -> sub-object -> model -> texture.
package resolver

import (
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/assetfs"
	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/encoding"
)

// Asset kinds, used as log fields and metric labels.
const (
	KindTerrain = "terrain"
	KindObject  = "object"
	KindModel   = "model"
	KindTexture = "texture"
)

// Recorder observes a run. Implementations must tolerate any call order.
type Recorder interface {
	FileParsed(kind string)
	FileMissing(kind string)
	ReferenceRejected(reason string)
}

type nopRecorder struct{}

func (nopRecorder) FileParsed(string)        {}
func (nopRecorder) FileMissing(string)       {}
func (nopRecorder) ReferenceRejected(string) {}

// Options configures a Resolver.
type Options struct {
	// TerrainDir holds the .adt files to start from. It is not searched recursively.
	TerrainDir string
	// DataRoot is the directory every relative asset path resolves against.
	DataRoot string
	// AuxObjectRoot and AuxModelRoot, when set, are searched recursively for
	// extra object and model files outside the data root.
	AuxObjectRoot string
	AuxModelRoot  string

	// FullClosure repeats the object and model passes over newly registered
	// objects and models until nothing new is found. By default each pass
	// runs once, expanding sub-objects and side-files one level deep.
	FullClosure bool

	// Fs is the filesystem to read from. Defaults to the host filesystem.
	Fs afero.Fs
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
	// Recorder receives per-file counts. Optional.
	Recorder Recorder
}

// Result is the closure computed by a run.
type Result struct {
	Objects  []string
	Models   []string
	Textures []string
}

// Lines returns every path grouped as objects, then models, then textures.
func (r *Result) Lines() []string {
	return lo.Flatten([][]string{r.Objects, r.Models, r.Textures})
}

// Resolver owns the three asset sets for the duration of a run.
// A Resolver is not safe for concurrent use.
type Resolver struct {
	opts Options
	log  *zap.Logger
	rec  Recorder

	fs         afero.Fs
	data       *assetfs.Store
	terrain    *assetfs.Store
	auxObjects *assetfs.Store
	auxModels  *assetfs.Store

	objects  *AssetSet
	models   *AssetSet
	textures *AssetSet

	visitedObjects map[string]struct{}
	parsedObjects  map[string]struct{}
	directObjects  map[string]struct{}
	visitedModels  map[string]struct{}

	// origins maps the key of an object or model found outside the data
	// root to the store it was found in.
	origins map[string]*assetfs.Store
}

// storedPath is a path relative to the store holding it.
type storedPath struct {
	store *assetfs.Store
	rel   string
}

// New creates a resolver.
func New(opts Options) *Resolver {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}

	r := &Resolver{
		opts:           opts,
		log:            opts.Logger,
		rec:            opts.Recorder,
		fs:             opts.Fs,
		data:           assetfs.New(opts.Fs, opts.DataRoot),
		terrain:        assetfs.New(opts.Fs, opts.TerrainDir),
		objects:        NewAssetSet(),
		models:         NewAssetSet(),
		textures:       NewAssetSet(),
		visitedObjects: make(map[string]struct{}),
		parsedObjects:  make(map[string]struct{}),
		directObjects:  make(map[string]struct{}),
		visitedModels:  make(map[string]struct{}),
		origins:        make(map[string]*assetfs.Store),
	}
	if opts.AuxObjectRoot != "" {
		r.auxObjects = assetfs.New(opts.Fs, opts.AuxObjectRoot)
	}
	if opts.AuxModelRoot != "" {
		r.auxModels = assetfs.New(opts.Fs, opts.AuxModelRoot)
	}
	return r
}

// Run computes the closure. The sets only grow; a missing or unreadable file
// is logged and skipped. A missing terrain directory yields an empty result.
func (r *Resolver) Run() (*Result, error) {
	start := time.Now()
	r.log.Info("resolving assets",
		zap.String("terrain_dir", r.opts.TerrainDir),
		zap.String("data_root", r.opts.DataRoot),
		zap.Bool("full_closure", r.opts.FullClosure))

	r.log.Info("parsing terrain files")
	if !r.terrainPass() {
		return r.result(), nil
	}

	objectsDone, modelsDone := 0, 0
	for round := 0; ; round++ {
		pending := r.objects.Since(objectsDone)
		objectsDone = r.objects.Len()
		r.log.Info("parsing object files", zap.Int("round", round), zap.Int("count", len(pending)))
		r.objectPass(pending, round == 0)

		pendingModels := r.models.Since(modelsDone)
		modelsDone = r.models.Len()
		r.log.Info("parsing model files", zap.Int("round", round), zap.Int("count", len(pendingModels)))
		r.modelPass(pendingModels, round == 0)

		if !r.opts.FullClosure {
			break
		}
		if r.objects.Len() == objectsDone && r.models.Len() == modelsDone {
			break
		}
	}

	res := r.result()
	hits, misses := r.data.CacheStats()
	r.log.Info("totals parsed",
		zap.Int("objects", len(res.Objects)),
		zap.Int("models", len(res.Models)),
		zap.Int("textures", len(res.Textures)),
		zap.Int64("listing_cache_hits", hits),
		zap.Int64("listing_cache_misses", misses),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (r *Resolver) result() *Result {
	return &Result{
		Objects:  r.objects.Paths(),
		Models:   r.models.Paths(),
		Textures: r.textures.Paths(),
	}
}

// register adds rel to set and remembers the store it came from when that
// is not the data root. A path already in the set keeps its first store.
func (r *Resolver) register(set *AssetSet, store *assetfs.Store, rel string) {
	if set.Add(rel) && store != r.data {
		r.origins[encoding.PathKey(rel)] = store
	}
}

// storeOf returns the store a registered object or model path resolves in.
func (r *Resolver) storeOf(rel string) *assetfs.Store {
	if store, ok := r.origins[encoding.PathKey(rel)]; ok {
		return store
	}
	return r.data
}

// abs returns the absolute path of rel inside store, for log fields.
func abs(store *assetfs.Store, rel string) string {
	return filepath.ToSlash(store.Abs(rel))
}
