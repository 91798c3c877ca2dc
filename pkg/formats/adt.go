package formats

import "github.com/spf13/afero"

// Allow-lists for chunk string runs.
var (
	ModelExtensions   = []string{ExtM2, ExtMDX}
	ObjectExtensions  = []string{ExtWMO}
	TextureExtensions = []string{ExtBLP}
)

// File extensions, lowercase with the leading dot.
const (
	ExtADT  = ".adt"
	ExtWMO  = ".wmo"
	ExtM2   = ".m2"
	ExtMDX  = ".mdx"
	ExtBLP  = ".blp"
	ExtSkin = ".skin"
	ExtAnim = ".anim"
)

// ADTRefs holds the asset paths referenced by one terrain tile.
type ADTRefs struct {
	Models   []string // MMDX
	Objects  []string // MWMO
	Textures []string // MTEX
}

// ExtractADT reads the model, object and texture name chunks of a terrain file.
// A chunk that is absent contributes nothing.
func ExtractADT(fsys afero.Fs, name string) (*ADTRefs, error) {
	models, err := ExtractStrings(fsys, name, TagMMDX, ModelExtensions)
	if err != nil {
		return nil, err
	}
	objects, err := ExtractStrings(fsys, name, TagMWMO, ObjectExtensions)
	if err != nil {
		return nil, err
	}
	textures, err := ExtractStrings(fsys, name, TagMTEX, TextureExtensions)
	if err != nil {
		return nil, err
	}

	return &ADTRefs{
		Models:   models,
		Objects:  objects,
		Textures: textures,
	}, nil
}
