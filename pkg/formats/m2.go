package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/encoding"
)

// M2 layout constants.
const (
	m2TextureHeaderOffset = 80 // {numTextures, ofsTextures}
	m2TextureRecordSize   = 16 // type, flags, nameLength, nameOffset
)

// M2TextureRecord is one entry of the model texture table.
type M2TextureRecord struct {
	Type       uint32
	Flags      uint32
	NameLength uint32
	NameOffset uint32
}

// M2Refs holds the asset paths referenced by one model file.
type M2Refs struct {
	Textures []string
}

// CanonicalModelPath rewrites the legacy .mdx extension to .m2.
// Other paths are returned unchanged.
func CanonicalModelPath(p string) string {
	if strings.HasSuffix(strings.ToLower(p), ExtMDX) {
		return encoding.ReplaceExtension(p, ExtM2)
	}
	return p
}

// ExtractM2 reads the texture table of a model file.
// Records that point outside the file are skipped; a table that would run past
// the end of the file is read up to the last complete record.
func ExtractM2(fsys afero.Fs, name string) (*M2Refs, error) {
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

	var header [8]byte
	if _, err := f.ReadAt(header[:], m2TextureHeaderOffset); err != nil {
		return nil, fmt.Errorf("%w: reading M2 texture header", ErrTruncated)
	}
	count := binary.LittleEndian.Uint32(header[0:])
	tableOffset := int64(binary.LittleEndian.Uint32(header[4:]))

	refs := &M2Refs{}
	records := readM2TextureRecords(f, tableOffset, count, size)
	for _, rec := range records {
		end := int64(rec.NameOffset) + int64(rec.NameLength)
		if rec.NameLength == 0 || end > size {
			continue
		}

		raw := make([]byte, rec.NameLength)
		if _, err := f.ReadAt(raw, int64(rec.NameOffset)); err != nil && !errors.Is(err, io.EOF) {
			continue
		}

		tex := encoding.BestEffortString(raw)
		if len(tex) > 1 {
			tex = strings.TrimSuffix(tex, "\x00")
			refs.Textures = append(refs.Textures, tex)
		}
	}

	return refs, nil
}

// readM2TextureRecords reads up to count records starting at offset,
// stopping at the first record that does not fit in the file.
func readM2TextureRecords(r io.ReaderAt, offset int64, count uint32, size int64) []M2TextureRecord {
	var records []M2TextureRecord
	var buf [m2TextureRecordSize]byte
	for i := uint32(0); i < count; i++ {
		pos := offset + int64(i)*m2TextureRecordSize
		if pos+m2TextureRecordSize > size {
			break
		}
		if _, err := r.ReadAt(buf[:], pos); err != nil {
			break
		}
		records = append(records, M2TextureRecord{
			Type:       binary.LittleEndian.Uint32(buf[0:]),
			Flags:      binary.LittleEndian.Uint32(buf[4:]),
			NameLength: binary.LittleEndian.Uint32(buf[8:]),
			NameOffset: binary.LittleEndian.Uint32(buf[12:]),
		})
	}
	return records
}
