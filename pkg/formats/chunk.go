package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/encoding"
)

// Chunk errors.
var (
	ErrChunkNotFound = errors.New("chunk not found")
	ErrTruncated     = errors.New("truncated data")
)

// chunkSizeLen is the length of the size field that follows every chunk tag.
const chunkSizeLen = 4

// Tag is a chunk tag as stored on disk. Files store the four characters of a
// chunk mnemonic in reverse order, so "MMDX" is found as the bytes "XDMM".
type Tag [4]byte

// Mnemonic returns the on-disk tag for a four character chunk mnemonic.
func Mnemonic(name string) Tag {
	if len(name) != 4 {
		panic(fmt.Sprintf("formats: chunk mnemonic %q must be 4 bytes", name))
	}
	return Tag{name[3], name[2], name[1], name[0]}
}

// String returns the human-readable mnemonic.
func (t Tag) String() string {
	return string([]byte{t[3], t[2], t[1], t[0]})
}

// Chunk tags used by the extractors.
var (
	TagMMDX = Mnemonic("MMDX") // ADT model file names
	TagMWMO = Mnemonic("MWMO") // ADT object file names
	TagMTEX = Mnemonic("MTEX") // ADT texture file names
	TagMODN = Mnemonic("MODN") // WMO doodad (model) file names
	TagMOMT = Mnemonic("MOMT") // WMO materials
	TagMOTX = Mnemonic("MOTX") // WMO texture string pool
)

// Tags lists every tag the extractors search for.
var Tags = []Tag{TagMMDX, TagMWMO, TagMTEX, TagMODN, TagMOMT, TagMOTX}

// Scanner locates a tag in a byte stream.
// Find returns the offset of the byte following the first match.
type Scanner interface {
	Find(r io.Reader, tag Tag) (int64, error)
}

// NaiveScanner matches byte by byte. A byte that breaks a partial match
// resets the match to zero and is not itself tested as the start of a new
// match, so "XXDMM" does not contain XDMM for this scanner.
type NaiveScanner struct{}

// Find implements Scanner.
func (NaiveScanner) Find(r io.Reader, tag Tag) (int64, error) {
	br := bufio.NewReader(r)
	var pos int64
	matched := 0
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return 0, ErrChunkNotFound
		}
		if err != nil {
			return 0, err
		}
		pos++

		if b != tag[matched] {
			matched = 0
			continue
		}
		matched++
		if matched == len(tag) {
			return pos, nil
		}
	}
}

// RestartScanner is NaiveScanner with one change: the byte that breaks a
// partial match is re-tested against the first tag byte. For tags whose
// proper prefixes are never suffixes, which holds for every tag in Tags,
// it finds the same first match as a substring search.
type RestartScanner struct{}

// Find implements Scanner.
func (RestartScanner) Find(r io.Reader, tag Tag) (int64, error) {
	br := bufio.NewReader(r)
	var pos int64
	matched := 0
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return 0, ErrChunkNotFound
		}
		if err != nil {
			return 0, err
		}
		pos++

		if b != tag[matched] {
			matched = 0
			if b != tag[0] {
				continue
			}
		}
		matched++
		if matched == len(tag) {
			return pos, nil
		}
	}
}

// IndexScanner reads the whole stream and uses a proper substring search.
type IndexScanner struct{}

// Find implements Scanner.
func (IndexScanner) Find(r io.Reader, tag Tag) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	idx := bytes.Index(data, tag[:])
	if idx < 0 {
		return 0, ErrChunkNotFound
	}
	return int64(idx + len(tag)), nil
}

// DefaultScanner is used by FindChunkOffset.
var DefaultScanner Scanner = NaiveScanner{}

// FindChunkOffset opens name and returns the absolute offset just past the
// first occurrence of tag, or ErrChunkNotFound.
func FindChunkOffset(fsys afero.Fs, name string, tag Tag) (int64, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return DefaultScanner.Find(f, tag)
}

// ReadCString reads bytes up to and including a zero terminator.
// It returns the decoded string without the terminator and the number of
// bytes consumed. A decode fault yields the valid prefix and no error.
// If the stream ends before a terminator, the partial string is returned with io.EOF.
func ReadCString(r io.ByteReader) (string, int, error) {
	var raw []byte
	n := 0
	for {
		b, err := r.ReadByte()
		if err != nil {
			return encoding.BestEffortString(raw), n, err
		}
		n++
		if b == 0 {
			return encoding.BestEffortString(raw), n, nil
		}
		raw = append(raw, b)
	}
}

// ExtractStrings reads the run of null-terminated strings that follows the
// size field of the first chunk tagged tag.
//
// Empty strings are skipped. Reading stops, without keeping the string just
// read, once the stream reaches end of file or a non-empty string lacks one
// of the allowed extensions. A missing chunk yields no strings.
func ExtractStrings(fsys afero.Fs, name string, tag Tag, allowed []string) ([]string, error) {
	offset, err := FindChunkOffset(fsys, name, tag)
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

	pos := offset + chunkSizeLen
	if _, err := f.Seek(pos, io.SeekStart); err != nil {
		return nil, err
	}

	br := bufio.NewReader(f)
	var list []string
	for {
		s, n, err := ReadCString(br)
		pos += int64(n)
		if err != nil && err != io.EOF {
			return list, err
		}
		if pos >= size || (s != "" && !encoding.HasExtension(s, allowed...)) {
			break
		}
		if s != "" {
			list = append(list, s)
		}
	}
	return list, nil
}
