package mirror

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/h5p-mirror/h5pmirror/internal/manifest"
)

// fakeSession serves a catalog computed from what has been installed so far.
type fakeSession struct {
	t       *testing.T
	storage *fakeStorage

	// entries lists the catalog in hub order.
	entries []string
	// cascades maps a machine name to the libraries its install yields.
	cascades map[string][]InstalledLibrary
	// neverInstalled keeps an entry installable forever.
	neverInstalled map[string]bool
	// installErr fails the install of the named entry.
	installErr map[string]error
	refreshErr error

	installed map[string]bool
	manifests map[string]*manifest.Library

	refreshCalls int
	catalogCalls int
	installCalls []string
}

func newFakeSession(t *testing.T, storage *fakeStorage) *fakeSession {
	return &fakeSession{
		t:              t,
		storage:        storage,
		cascades:       map[string][]InstalledLibrary{},
		neverInstalled: map[string]bool{},
		installErr:     map[string]error{},
		installed:      map[string]bool{},
		manifests:      map[string]*manifest.Library{},
	}
}

func (s *fakeSession) RefreshCatalog(context.Context) error {
	s.refreshCalls++
	return s.refreshErr
}

func (s *fakeSession) Catalog(context.Context) ([]CatalogEntry, error) {
	s.catalogCalls++
	out := make([]CatalogEntry, 0, len(s.entries))
	for _, name := range s.entries {
		out = append(out, CatalogEntry{
			MachineName: name,
			Installed:   s.installed[name] && !s.neverInstalled[name],
			CanInstall:  true,
		})
	}
	return out, nil
}

func (s *fakeSession) Install(_ context.Context, machineName string) ([]InstalledLibrary, error) {
	s.installCalls = append(s.installCalls, machineName)
	if err := s.installErr[machineName]; err != nil {
		return nil, err
	}
	s.installed[machineName] = true

	libs := s.cascades[machineName]
	for _, lib := range libs {
		dir := s.storage.LibraryDir(lib.NewVersion)
		if err := os.MkdirAll(dir, 0755); err != nil {
			s.t.Fatal(err)
		}
		s.manifests[lib.NewVersion.UberName()] = &manifest.Library{
			LibraryName: lib.NewVersion,
			License:     "MIT",
			Author:      "Joubel",
		}
	}
	return libs, nil
}

func (s *fakeSession) LoadManifest(_ context.Context, name manifest.LibraryName) (*manifest.Library, error) {
	m, ok := s.manifests[name.UberName()]
	if !ok {
		return nil, errors.New("library not installed: " + name.UberName())
	}
	return m, nil
}

type fakeStorage struct {
	root       string
	removeAlls int
}

func newFakeStorage(t *testing.T) *fakeStorage {
	return &fakeStorage{root: filepath.Join(t.TempDir(), "libraries")}
}

func (s *fakeStorage) LibraryDir(name manifest.LibraryName) string {
	return filepath.Join(s.root, name.UberName())
}

func (s *fakeStorage) RemoveAll() error {
	s.removeAlls++
	return os.RemoveAll(s.root)
}

// fakePublisher records publish calls and fails for directories listed in
// fail.
type fakePublisher struct {
	fail   map[string]bool
	dirs   []string
	dryRun []bool
}

func (p *fakePublisher) Publish(_ context.Context, dir string, dryRun bool) error {
	p.dirs = append(p.dirs, dir)
	p.dryRun = append(p.dryRun, dryRun)
	if p.fail[filepath.Base(dir)] {
		return errors.New("npm ERR! 403 Forbidden")
	}
	return nil
}

type fakeCredentials struct {
	tokens []string
	err    error
}

func (c *fakeCredentials) WriteCredentials(token string) error {
	c.tokens = append(c.tokens, token)
	return c.err
}

func lib(machineName string, major, minor, patch int, typ InstallType) InstalledLibrary {
	return InstalledLibrary{
		NewVersion: manifest.LibraryName{
			MachineName:  machineName,
			MajorVersion: major,
			MinorVersion: minor,
			PatchVersion: patch,
		},
		Type: typ,
	}
}

func testReporter() (*Reporter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewReporter(&out, &errOut, true), &out, &errOut
}
