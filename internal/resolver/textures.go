package resolver

import (
	"path"
	"strings"

	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/encoding"
	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/formats"
)

// SpecularSuffix marks the specular map variant of a texture.
const SpecularSuffix = "_S"

// addTexture inserts p into the texture set. When p is not itself a specular
// map and a specular sibling exists under the data root, that sibling is
// added too.
func (r *Resolver) addTexture(p string) {
	p = encoding.NormalizePath(p)
	if !r.textures.Add(p) {
		return
	}

	dir, name, stem := encoding.Split(p)
	if strings.HasSuffix(strings.ToUpper(stem), SpecularSuffix) {
		return
	}

	ext := formats.ExtBLP
	if encoding.HasExtension(name, formats.ExtBLP) {
		ext = path.Ext(name)
	}
	candidate := path.Join(dir, stem+SpecularSuffix+ext)
	if located, ok := r.data.Locate(candidate); ok {
		r.addTexture(located)
	}
}
