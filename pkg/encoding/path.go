package encoding

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// Separator is the canonical directory separator used for asset paths.
const Separator = "/"

// NormalizePath converts backslashes to the canonical separator and drops
// leading separators. Case is preserved.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", Separator)
	return strings.TrimLeft(p, Separator)
}

// IsLocal reports whether p, once normalized, stays inside the root it is
// joined to. Empty paths and paths with a ".." component are not local.
func IsLocal(p string) bool {
	p = NormalizePath(p)
	if p == "" {
		return false
	}
	for _, part := range strings.Split(p, Separator) {
		if part == ".." {
			return false
		}
	}
	return filepath.IsLocal(filepath.FromSlash(p))
}

// PathKey returns the case-insensitive identity of an asset path.
// Two spellings of the same file map to the same key.
func PathKey(p string) string {
	return strings.ToLower(NormalizePath(p))
}

// HasExtension reports whether p ends in any of exts, ignoring case.
// Extensions are given with their leading dot.
func HasExtension(p string, exts ...string) bool {
	lower := strings.ToLower(p)
	return lo.SomeBy(exts, func(ext string) bool {
		return strings.HasSuffix(lower, strings.ToLower(ext))
	})
}

// Split returns the directory, the file name, and the file name without extension.
func Split(p string) (dir, name, stem string) {
	p = NormalizePath(p)
	dir, name = path.Split(p)
	dir = strings.TrimSuffix(dir, Separator)
	stem = strings.TrimSuffix(name, path.Ext(name))
	return dir, name, stem
}

// ReplaceExtension swaps the extension of p, keeping everything before it.
func ReplaceExtension(p, ext string) string {
	return strings.TrimSuffix(p, path.Ext(p)) + ext
}
