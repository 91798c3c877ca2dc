package formats

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/spf13/afero"

	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/encoding"
)

// WMO layout constants.
const (
	wmoMaterialCountOffset = 20 // first MOHD field: material count
	wmoMaterialSize        = 64
	wmoTexture1Offset      = 12 // within a MOMT record
	wmoTexture2Offset      = 24 // 8 bytes after texture1 ends
)

// WMORefs holds the asset paths referenced by one object file.
type WMORefs struct {
	Models   []string // MODN
	Textures []string // MOMT -> MOTX

	// Rejected holds strings that an MOTX offset resolved to but that do not
	// name a texture.
	Rejected []string
}

// ExtractWMO reads the model names and material textures of an object file.
func ExtractWMO(fsys afero.Fs, name string) (*WMORefs, error) {
	models, err := ExtractStrings(fsys, name, TagMODN, ModelExtensions)
	if err != nil {
		return nil, err
	}

	offsets, err := WMOTextureOffsets(fsys, name)
	if err != nil {
		return nil, err
	}

	textures, rejected, err := resolveMOTX(fsys, name, offsets)
	if err != nil {
		return nil, err
	}

	return &WMORefs{
		Models:   models,
		Textures: textures,
		Rejected: rejected,
	}, nil
}

// WMOTextureOffsets returns the nonzero MOTX offsets of every material record.
// The record loop stops early, without error, once fewer than a full record
// remains in the file. A file too short to hold the material count has no
// records.
func WMOTextureOffsets(fsys afero.Fs, name string) ([]uint32, error) {
	start, err := FindChunkOffset(fsys, name, TagMOMT)
	if errors.Is(err, ErrChunkNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()

	var countBuf [4]byte
	if _, err := f.ReadAt(countBuf[:], wmoMaterialCountOffset); err != nil {
		return nil, nil
	}
	count := binary.LittleEndian.Uint32(countBuf[:])

	var offsets []uint32
	var rec [wmoMaterialSize]byte
	pos := start + chunkSizeLen
	for i := uint32(0); i < count; i++ {
		if size-pos < wmoMaterialSize {
			break
		}
		if _, err := f.ReadAt(rec[:], pos); err != nil {
			break
		}
		if tex := binary.LittleEndian.Uint32(rec[wmoTexture1Offset:]); tex > 0 {
			offsets = append(offsets, tex)
		}
		if tex := binary.LittleEndian.Uint32(rec[wmoTexture2Offset:]); tex > 0 {
			offsets = append(offsets, tex)
		}
		pos += wmoMaterialSize
	}
	return offsets, nil
}

// resolveMOTX reads the string at each offset into the MOTX pool.
// Offsets past the end of the file are ignored.
func resolveMOTX(fsys afero.Fs, name string, offsets []uint32) (textures, rejected []string, err error) {
	if len(offsets) == 0 {
		return nil, nil, nil
	}

	start, err := FindChunkOffset(fsys, name, TagMOTX)
	if errors.Is(err, ErrChunkNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	f, err := fsys.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()

	pool := start + chunkSizeLen
	for _, off := range offsets {
		pos := pool + int64(off)
		if pos >= size {
			continue
		}
		s, _, err := ReadCString(bufio.NewReader(io.NewSectionReader(f, pos, size-pos)))
		if err != nil && err != io.EOF {
			return textures, rejected, err
		}
		if encoding.HasExtension(s, ExtBLP) {
			textures = append(textures, s)
		} else {
			rejected = append(rejected, s)
		}
	}
	return textures, rejected, nil
}
