// Package assetfs resolves relative asset paths against a data root.
package assetfs

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/stoneharry/WoW-Map-Asset-Parser/pkg/encoding"
)

// Store is a data root on a filesystem.
// Asset paths handed to a Store may use either separator and any case.
type Store struct {
	fs    afero.Fs
	root  string
	cache *Cache
}

// New creates a store rooted at root on fsys.
func New(fsys afero.Fs, root string) *Store {
	return &Store{
		fs:    fsys,
		root:  filepath.Clean(root),
		cache: NewCache(DefaultCacheSize),
	}
}

// Root returns the data root.
func (s *Store) Root() string {
	return s.root
}

// CacheStats returns directory listing cache statistics.
func (s *Store) CacheStats() (hits, misses int64) {
	return s.cache.Stats()
}

// Abs joins rel onto the data root without checking that it exists.
func (s *Store) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(encoding.NormalizePath(rel)))
}

// Rel returns abs relative to the data root with canonical separators.
func (s *Store) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside %s", abs, s.root)
	}
	return filepath.ToSlash(rel), nil
}

// Exists reports whether rel names a regular file, spelled exactly.
func (s *Store) Exists(rel string) bool {
	info, err := s.fs.Stat(s.Abs(rel))
	return err == nil && !info.IsDir()
}

// Locate finds the file rel names, matching each path component without
// regard to case when the exact spelling does not exist. It returns the
// path as spelled on disk. Paths that would leave the root are never found.
func (s *Store) Locate(rel string) (string, bool) {
	if !encoding.IsLocal(rel) {
		return "", false
	}
	rel = encoding.NormalizePath(rel)
	if s.Exists(rel) {
		return rel, true
	}

	parts := strings.Split(rel, encoding.Separator)
	found := make([]string, 0, len(parts))
	for i, part := range parts {
		entries, err := s.List(path.Join(found...))
		if err != nil {
			return "", false
		}
		last := i == len(parts)-1
		match := ""
		for _, e := range entries {
			if e.Dir != last && strings.EqualFold(e.Name, part) {
				match = e.Name
				break
			}
		}
		if match == "" {
			return "", false
		}
		found = append(found, match)
	}
	return path.Join(found...), true
}

// List returns the entries of the directory rel, sorted by name.
// Listings are cached for the life of the store.
func (s *Store) List(rel string) ([]Entry, error) {
	dir := s.Abs(rel)
	if entries, ok := s.cache.Get(dir); ok {
		return entries, nil
	}

	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{Name: info.Name(), Dir: info.IsDir()})
	}
	s.cache.Set(dir, entries)
	return entries, nil
}

// Files returns the names of the regular files in the directory rel.
func (s *Store) Files(rel string) ([]string, error) {
	entries, err := s.List(rel)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.Dir {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

// Walk returns every file below the root whose name ends in one of exts,
// relative to the root, in lexical order.
func (s *Store) Walk(exts ...string) ([]string, error) {
	var files []string
	err := afero.Walk(s.fs, s.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !encoding.HasExtension(info.Name(), exts...) {
			return nil
		}
		rel, err := s.Rel(p)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Open opens rel for reading.
func (s *Store) Open(rel string) (afero.File, error) {
	if !encoding.IsLocal(rel) {
		return nil, fmt.Errorf("%s is outside %s", rel, s.root)
	}
	return s.fs.Open(s.Abs(rel))
}
