// Package storage is the file-backed local library storage. Every installed
// library lives in <root>/<uberName>/ next to its library.json; the directory
// doubles as the npm package directory when the library is published.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/h5p-mirror/h5pmirror/internal/manifest"
)

// excludedNames are files/directories skipped when copying a library in.
var excludedNames = map[string]bool{
	"node_modules": true,
	".git":         true,
	".DS_Store":    true,
}

// Store manages the libraries directory.
type Store struct {
	root string
}

// New returns a store rooted at root. The directory is created lazily.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// LibraryDir returns the directory of the library with the given identity.
func (s *Store) LibraryDir(name manifest.LibraryName) string {
	return filepath.Join(s.root, name.UberName())
}

// LoadManifest reads the library.json of an installed library.
func (s *Store) LoadManifest(name manifest.LibraryName) (*manifest.Library, error) {
	lib, err := manifest.ParseDir(s.LibraryDir(name))
	if err != nil {
		return nil, fmt.Errorf("loading library %s: %w", name.UberName(), err)
	}
	return lib, nil
}

// List returns the identities of all installed libraries, sorted by uber
// name. Directories without a readable library.json are ignored. A missing
// root yields an empty list.
func (s *Store) List() ([]manifest.LibraryName, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading library storage %s: %w", s.root, err)
	}

	var names []manifest.LibraryName
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		lib, err := manifest.ParseDir(filepath.Join(s.root, entry.Name()))
		if err != nil {
			continue
		}
		names = append(names, lib.LibraryName)
	}

	sort.Slice(names, func(i, j int) bool {
		return names[i].UberName() < names[j].UberName()
	})
	return names, nil
}

// Installed returns the installed versions of machineName.
func (s *Store) Installed(machineName string) ([]manifest.LibraryName, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var matches []manifest.LibraryName
	for _, name := range all {
		if name.MachineName == machineName {
			matches = append(matches, name)
		}
	}
	return matches, nil
}

// Install copies an extracted library directory into storage, replacing any
// previous installation of the same major.minor.
func (s *Store) Install(srcDir string, name manifest.LibraryName) error {
	dst := s.LibraryDir(name)

	if _, err := os.Stat(dst); err == nil {
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("removing existing installation at %s: %w", dst, err)
		}
	}

	if err := copyDir(srcDir, dst); err != nil {
		return fmt.Errorf("copying %s to %s: %w", srcDir, dst, err)
	}
	return nil
}

// RemoveAll deletes the whole storage directory.
func (s *Store) RemoveAll() error {
	if err := os.RemoveAll(s.root); err != nil {
		return fmt.Errorf("removing library storage %s: %w", s.root, err)
	}
	return nil
}

// copyDir recursively copies src to dst, excluding entries in excludedNames.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if excludedNames[entry.Name()] {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else if entry.Type().IsRegular() {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
		// Symlinks and other special files are skipped.
	}

	return nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, srcInfo.Mode())
}
