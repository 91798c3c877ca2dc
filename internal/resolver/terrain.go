package resolver

import (
	"go.uber.org/zap"

	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/encoding"
	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/formats"
)

// terrainPass reads every terrain file in the terrain directory. It returns
// false when the directory cannot be listed.
func (r *Resolver) terrainPass() bool {
	names, err := r.terrain.Files("")
	if err != nil {
		r.log.Warn("terrain directory not found",
			zap.String("dir", r.opts.TerrainDir), zap.Error(err))
		r.rec.FileMissing(KindTerrain)
		return false
	}

	for _, name := range names {
		if !encoding.HasExtension(name, formats.ExtADT) {
			continue
		}

		path := r.terrain.Abs(name)
		refs, err := formats.ExtractADT(r.fs, path)
		if err != nil {
			r.log.Warn("failed to parse terrain file", zap.String("path", path), zap.Error(err))
			continue
		}
		r.rec.FileParsed(KindTerrain)

		for _, m := range refs.Models {
			r.models.Add(m)
		}
		for _, o := range refs.Objects {
			r.objects.Add(o)
			r.directObjects[objectKey(r.data, o)] = struct{}{}
		}
		for _, t := range refs.Textures {
			r.addTexture(t)
		}

		r.log.Info("parsed terrain file",
			zap.String("path", path),
			zap.Int("models", len(refs.Models)),
			zap.Int("objects", len(refs.Objects)),
			zap.Int("textures", len(refs.Textures)))
	}
	return true
}
