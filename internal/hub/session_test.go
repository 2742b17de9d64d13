package hub

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/h5p-mirror/h5pmirror/internal/mirror"
	"github.com/h5p-mirror/h5pmirror/internal/storage"
	"github.com/rs/zerolog"
)

func newTestSession(t *testing.T, srvURL string) (*Session, *storage.Store, string) {
	t.Helper()
	work := t.TempDir()
	store := storage.New(filepath.Join(work, "libraries"))
	cfg := SessionConfig{
		CacheFile:      filepath.Join(work, "hub-cache.json"),
		TempDir:        filepath.Join(work, "temp"),
		CoreAPIVersion: "1.24",
		PlatformName:   "h5pmirror",
		User:           MirrorUser(),
	}
	s, err := NewSession(NewClient(srvURL+"/v1/content-types/"), store, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s, store, cfg.CacheFile
}

func entryFor(entries []mirror.CatalogEntry, name string) (mirror.CatalogEntry, bool) {
	for _, e := range entries {
		if e.MachineName == name {
			return e, true
		}
	}
	return mirror.CatalogEntry{}, false
}

func TestSessionCatalogInstallCycle(t *testing.T) {
	future := contentType("H5P.Future", 1, 0, 0)
	future.CoreAPIVersionNeeded = APIVersion{Major: 1, Minor: 99}

	pkg := buildArchive(t, []archiveEntry{
		{"h5p.json", "{}"},
		{"content/content.json", "{}"},
		{"H5P.Foo-1.2/library.json", libraryJSON("H5P.Foo", 1, 2, 3)},
		{"H5P.Foo-1.2/js/foo.js", "var foo;"},
		{"H5P.Dep-1.0/library.json", libraryJSON("H5P.Dep", 1, 0, 0)},
	})
	h, srv := newFakeHub(t,
		[]ContentType{contentType("H5P.Foo", 1, 2, 3), future},
		map[string][]byte{"H5P.Foo": pkg},
	)
	s, store, cacheFile := newTestSession(t, srv.URL)
	ctx := context.Background()

	if err := s.RefreshCatalog(ctx); err != nil {
		t.Fatalf("RefreshCatalog: %v", err)
	}
	cache, err := LoadCache(cacheFile)
	if err != nil || cache == nil {
		t.Fatalf("cache not written: %v", err)
	}
	if cache.SiteUUID == "" || h.lastForm["uuid"] != cache.SiteUUID {
		t.Errorf("site uuid not generated and sent: cache=%q form=%q", cache.SiteUUID, h.lastForm["uuid"])
	}

	entries, err := s.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(entries) != 2 || entries[0].MachineName != "H5P.Foo" {
		t.Fatalf("entries = %+v, want hub order", entries)
	}
	if foo, _ := entryFor(entries, "H5P.Foo"); !foo.Installable() {
		t.Errorf("H5P.Foo should be installable before install: %+v", foo)
	}
	if fut, _ := entryFor(entries, "H5P.Future"); fut.CanInstall {
		t.Errorf("H5P.Future needs a newer core API and must not be installable: %+v", fut)
	}

	installed, err := s.Install(ctx, "H5P.Foo")
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(installed) != 2 {
		t.Fatalf("Install returned %d libraries, want 2: %+v", len(installed), installed)
	}
	if installed[0].NewVersion.UberName() != "H5P.Foo-1.2" || installed[0].Type != mirror.InstallNew {
		t.Errorf("installed[0] = %+v", installed[0])
	}
	if installed[1].NewVersion.UberName() != "H5P.Dep-1.0" {
		t.Errorf("installed[1] = %+v", installed[1])
	}

	lib, err := s.LoadManifest(ctx, installed[0].NewVersion)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if lib.PatchVersion != 3 {
		t.Errorf("PatchVersion = %d, want 3", lib.PatchVersion)
	}

	entries, err = s.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog after install: %v", err)
	}
	if foo, _ := entryFor(entries, "H5P.Foo"); !foo.Installed || foo.Installable() {
		t.Errorf("H5P.Foo should be installed after install: %+v", foo)
	}

	// A second install of the same package finds nothing new.
	again, err := s.Install(ctx, "H5P.Foo")
	if err != nil {
		t.Fatalf("second Install: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second Install returned %+v, want none", again)
	}

	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Errorf("storage holds %d libraries, want 2", len(names))
	}
}

func TestSessionCatalogFetchesWhenUncached(t *testing.T) {
	h, srv := newFakeHub(t, []ContentType{contentType("H5P.Foo", 1, 0, 0)}, nil)
	s, _, _ := newTestSession(t, srv.URL)

	entries, err := s.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %+v", entries)
	}
	if h.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1", h.listCalls)
	}
}

func TestSessionInstallRejectsInvalidManifest(t *testing.T) {
	pkg := buildArchive(t, []archiveEntry{
		{"H5P.Bad-1.0/library.json", `{"machineName":"H5P.Bad","majorVersion":1}`},
	})
	_, srv := newFakeHub(t, []ContentType{contentType("H5P.Bad", 1, 0, 0)}, map[string][]byte{"H5P.Bad": pkg})
	s, store, _ := newTestSession(t, srv.URL)

	if _, err := s.Install(context.Background(), "H5P.Bad"); err == nil {
		t.Fatal("expected error for invalid library manifest")
	}
	names, _ := store.List()
	if len(names) != 0 {
		t.Errorf("nothing should be installed, got %+v", names)
	}
}

func TestNewSessionInvalidCoreAPI(t *testing.T) {
	_, err := NewSession(NewClient("http://example.invalid/"), storage.New(t.TempDir()), SessionConfig{CoreAPIVersion: "x"}, zerolog.Nop())
	if err == nil {
		t.Error("expected error for invalid core API version")
	}
}

func TestSessionInstallSettlesWhenHubListsNewerPatch(t *testing.T) {
	pkg := buildArchive(t, []archiveEntry{
		{"H5P.Foo-1.2/library.json", libraryJSON("H5P.Foo", 1, 2, 3)},
	})
	_, srv := newFakeHub(t, []ContentType{contentType("H5P.Foo", 1, 2, 4)}, map[string][]byte{"H5P.Foo": pkg})
	s, store, _ := newTestSession(t, srv.URL)
	ctx := context.Background()

	installed, err := s.Install(ctx, "H5P.Foo")
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(installed) != 1 || installed[0].NewVersion.PatchVersion != 3 {
		t.Fatalf("Install = %+v, want H5P.Foo 1.2.3", installed)
	}

	entries, err := s.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if foo, _ := entryFor(entries, "H5P.Foo"); !foo.Installed {
		t.Errorf("H5P.Foo should count as installed once its package is stored: %+v", foo)
	}

	// A later session starts from storage that already holds 1.2.3.
	next, err := NewSession(s.client, store, s.cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	entries, err = next.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if foo, _ := entryFor(entries, "H5P.Foo"); !foo.Installable() {
		t.Fatalf("H5P.Foo should be installable in a new session: %+v", foo)
	}
	again, err := next.Install(ctx, "H5P.Foo")
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("Install = %+v, want nothing new", again)
	}
	entries, err = next.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if foo, _ := entryFor(entries, "H5P.Foo"); !foo.Installed {
		t.Errorf("H5P.Foo should be installed after an install that added nothing: %+v", foo)
	}
}

type recordingPublisher struct {
	dirs []string
}

func (p *recordingPublisher) Publish(_ context.Context, dir string, _ bool) error {
	p.dirs = append(p.dirs, filepath.Base(dir))
	return nil
}

func TestControllerConvergesWhenHubListsNewerPatch(t *testing.T) {
	pkg := buildArchive(t, []archiveEntry{
		{"H5P.Foo-1.2/library.json", libraryJSON("H5P.Foo", 1, 2, 3)},
	})
	_, srv := newFakeHub(t, []ContentType{contentType("H5P.Foo", 1, 2, 4)}, map[string][]byte{"H5P.Foo": pkg})
	s, store, _ := newTestSession(t, srv.URL)

	reporter := mirror.NewReporter(io.Discard, io.Discard, true)
	publisher := &recordingPublisher{}
	c := &mirror.Controller{
		Session:       s,
		Storage:       store,
		Dispatcher:    &mirror.Dispatcher{Publisher: publisher, Reporter: reporter, Logger: zerolog.Nop()},
		Reporter:      reporter,
		Operator:      "acme",
		MaxIterations: 5,
		Logger:        zerolog.Nop(),
	}

	out, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Published != 1 || out.Errors != 0 {
		t.Errorf("outcome = %+v, want one publish", out)
	}
	if len(publisher.dirs) != 1 || publisher.dirs[0] != "H5P.Foo-1.2" {
		t.Errorf("published %v, want [H5P.Foo-1.2]", publisher.dirs)
	}
}
