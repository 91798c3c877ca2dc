// Package formatstest builds minimal ADT, WMO and M2 files for tests.
//
// The builders lay out only what the extractors read: chunk tags with size
// fields, string lists, material records and the model texture table.
package formatstest

import (
	"bytes"
	"encoding/binary"
)

// Chunk returns a chunk with its tag stored reversed, as on disk.
func Chunk(mnemonic string, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{mnemonic[3], mnemonic[2], mnemonic[1], mnemonic[0]})
	binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

// CStrings joins names as consecutive null-terminated strings.
func CStrings(names ...string) []byte {
	var buf bytes.Buffer
	for _, n := range names {
		buf.WriteString(n)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// ADT describes a terrain tile.
type ADT struct {
	Models   []string
	Objects  []string
	Textures []string
}

// Bytes encodes the tile.
func (a ADT) Bytes() []byte {
	var buf bytes.Buffer
	buf.Write(Chunk("MVER", u32(18)))
	buf.Write(Chunk("MHDR", make([]byte, 64)))
	buf.Write(Chunk("MCIN", make([]byte, 16)))
	buf.Write(Chunk("MTEX", CStrings(a.Textures...)))
	buf.Write(Chunk("MMDX", CStrings(a.Models...)))
	buf.Write(Chunk("MMID", make([]byte, 4*len(a.Models))))
	buf.Write(Chunk("MWMO", CStrings(a.Objects...)))
	buf.Write(Chunk("MWID", make([]byte, 4*len(a.Objects))))
	buf.Write(Chunk("MDDF", make([]byte, 36)))
	return buf.Bytes()
}

// Material is one WMO material. A texture name left empty is stored as
// offset zero. Offset1 and Offset2, when set, are written verbatim instead.
type Material struct {
	Texture1 string
	Texture2 string
	Offset1  uint32
	Offset2  uint32
}

// WMO describes a root object file. MOMT is written last so a test can cut
// material records off the end of the file.
type WMO struct {
	Materials []Material
	Models    []string

	// DeclaredMaterials overrides the material count in the header when nonzero.
	DeclaredMaterials uint32
}

// Bytes encodes the object file.
func (w WMO) Bytes() []byte {
	// Offset zero means "no texture", so the pool starts with padding.
	pool := bytes.NewBuffer(make([]byte, 4))
	offsets := make(map[string]uint32)
	addTexture := func(name string) uint32 {
		if name == "" {
			return 0
		}
		if off, ok := offsets[name]; ok {
			return off
		}
		off := uint32(pool.Len())
		pool.WriteString(name)
		pool.WriteByte(0)
		for pool.Len()%4 != 0 {
			pool.WriteByte(0)
		}
		offsets[name] = off
		return off
	}

	var momt bytes.Buffer
	for _, m := range w.Materials {
		rec := make([]byte, 64)
		off1, off2 := addTexture(m.Texture1), addTexture(m.Texture2)
		if m.Offset1 != 0 {
			off1 = m.Offset1
		}
		if m.Offset2 != 0 {
			off2 = m.Offset2
		}
		binary.LittleEndian.PutUint32(rec[12:], off1)
		binary.LittleEndian.PutUint32(rec[24:], off2)
		momt.Write(rec)
	}

	count := uint32(len(w.Materials))
	if w.DeclaredMaterials != 0 {
		count = w.DeclaredMaterials
	}
	mohd := make([]byte, 64)
	binary.LittleEndian.PutUint32(mohd[0:], count)

	var modn bytes.Buffer
	for _, m := range w.Models {
		modn.WriteString(m)
		modn.WriteByte(0)
		for modn.Len()%4 != 0 {
			modn.WriteByte(0)
		}
	}

	var buf bytes.Buffer
	buf.Write(Chunk("MVER", u32(17)))
	buf.Write(Chunk("MOHD", mohd))
	buf.Write(Chunk("MOTX", pool.Bytes()))
	buf.Write(Chunk("MOGN", CStrings("", "group")))
	buf.Write(Chunk("MODN", modn.Bytes()))
	buf.Write(Chunk("MODD", make([]byte, 40)))
	buf.Write(Chunk("MOMT", momt.Bytes()))
	return buf.Bytes()
}

// M2TextureTableOffset is where M2.Bytes places the texture table.
const M2TextureTableOffset = 96

// M2 describes a model file. An empty texture name is written as a
// runtime texture with no file name.
type M2 struct {
	Textures []string

	// DeclaredTextures overrides the texture count in the header when nonzero.
	DeclaredTextures uint32
}

// Bytes encodes the model file.
func (m M2) Bytes() []byte {
	header := make([]byte, M2TextureTableOffset)
	copy(header, "MD20")
	binary.LittleEndian.PutUint32(header[4:], 264)

	count := uint32(len(m.Textures))
	if m.DeclaredTextures != 0 {
		count = m.DeclaredTextures
	}
	binary.LittleEndian.PutUint32(header[80:], count)
	binary.LittleEndian.PutUint32(header[84:], M2TextureTableOffset)

	nameBase := uint32(M2TextureTableOffset + 16*len(m.Textures))
	var table, names bytes.Buffer
	for _, tex := range m.Textures {
		var length, offset uint32
		if tex != "" {
			length = uint32(len(tex) + 1)
			offset = nameBase + uint32(names.Len())
			names.WriteString(tex)
			names.WriteByte(0)
		}
		table.Write(u32(0)) // type
		table.Write(u32(0)) // flags
		table.Write(u32(length))
		table.Write(u32(offset))
	}

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(table.Bytes())
	buf.Write(names.Bytes())
	return buf.Bytes()
}
