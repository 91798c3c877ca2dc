package resolver

import (
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/assetfs"
	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/encoding"
	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/formats"
)

// sideFileExtensions are the files stored beside a model that the client
// loads without the model naming them.
var sideFileExtensions = []string{formats.ExtSkin, formats.ExtBLP, formats.ExtAnim}

// modelPass parses each model's texture table and registers its side-files.
func (r *Resolver) modelPass(models []string, withAux bool) {
	for _, rel := range models {
		r.processModel(r.storeOf(rel), rel)
	}

	if withAux && r.auxModels != nil {
		files, err := r.auxModels.Walk(formats.ModelExtensions...)
		if err != nil {
			r.log.Warn("auxiliary model root not readable",
				zap.String("dir", r.opts.AuxModelRoot), zap.Error(err))
		}
		for _, rel := range files {
			r.register(r.models, r.auxModels, rel)
			r.processModel(r.auxModels, rel)
		}
	}
}

func (r *Resolver) processModel(store *assetfs.Store, rel string) {
	canonical := formats.CanonicalModelPath(rel)
	key := store.Root() + "|" + encoding.PathKey(canonical)
	if _, ok := r.visitedModels[key]; ok {
		return
	}
	r.visitedModels[key] = struct{}{}

	located, ok := store.Locate(canonical)
	if !ok {
		r.log.Warn("unable to find model file", zap.String("path", abs(store, canonical)))
		r.rec.FileMissing(KindModel)
		return
	}

	refs, err := formats.ExtractM2(r.fs, store.Abs(located))
	if err != nil {
		r.log.Warn("failed to parse model file", zap.String("path", abs(store, located)), zap.Error(err))
	} else {
		r.rec.FileParsed(KindModel)
		for _, t := range refs.Textures {
			r.addTexture(t)
		}
	}

	r.addSideFiles(store, located)
}

// addSideFiles registers skins, textures and animation files in the model's
// directory whose names contain the model name. They are not parsed.
func (r *Resolver) addSideFiles(store *assetfs.Store, rel string) {
	dir, _, stem := encoding.Split(rel)
	if stem == "" {
		return
	}
	base := strings.ToUpper(stem)

	files, err := store.Files(dir)
	if err != nil {
		r.log.Warn("unable to list model directory", zap.String("dir", abs(store, dir)), zap.Error(err))
		return
	}

	for _, f := range files {
		if strings.Contains(strings.ToUpper(f), base) && encoding.HasExtension(f, sideFileExtensions...) {
			r.addTexture(path.Join(dir, f))
		}
	}
}
