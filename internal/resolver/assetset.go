package resolver

import "github.com/stoneharry/WoW-Map-Asset-Parser/pkg/encoding"

// AssetSet is an insertion-ordered set of asset paths.
// Paths are stored with canonical separators and deduplicated without
// regard to case; the first spelling added is kept.
type AssetSet struct {
	paths []string
	keys  map[string]struct{}
}

// NewAssetSet creates an empty set.
func NewAssetSet() *AssetSet {
	return &AssetSet{keys: make(map[string]struct{})}
}

// Add inserts p and reports whether it was new.
func (s *AssetSet) Add(p string) bool {
	p = encoding.NormalizePath(p)
	if p == "" {
		return false
	}
	key := encoding.PathKey(p)
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	s.paths = append(s.paths, p)
	return true
}

// Contains reports whether p, in any spelling, is in the set.
func (s *AssetSet) Contains(p string) bool {
	_, ok := s.keys[encoding.PathKey(p)]
	return ok
}

// Len returns the number of paths.
func (s *AssetSet) Len() int {
	return len(s.paths)
}

// Paths returns a copy of the paths in insertion order.
func (s *AssetSet) Paths() []string {
	return s.Since(0)
}

// Since returns a copy of the paths added after the first n.
func (s *AssetSet) Since(n int) []string {
	if n >= len(s.paths) {
		return nil
	}
	out := make([]string, len(s.paths)-n)
	copy(out, s.paths[n:])
	return out
}
