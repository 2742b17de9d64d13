//go:build integration

package integration_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/h5p-mirror/h5pmirror/internal/hub"
)

// testEnv holds the isolated directories of one mirror run.
type testEnv struct {
	WorkDir  string // libraries/, temp/ and hub-cache.json
	NPMRC    string // registry credentials file
	NPM      string // fake npm executable
	NPMCalls string // log of fake npm invocations, one "<dir>|<args>" per line
}

// setupTestEnv creates temp directories and a fake npm that logs each call
// and fails inside any directory listed in failDirs.
func setupTestEnv(t *testing.T, failDirs ...string) *testEnv {
	t.Helper()

	bin := t.TempDir()
	env := &testEnv{
		WorkDir:  t.TempDir(),
		NPMRC:    filepath.Join(t.TempDir(), ".npmrc"),
		NPM:      filepath.Join(bin, "npm"),
		NPMCalls: filepath.Join(bin, "calls.log"),
	}

	var script strings.Builder
	script.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&script, "echo \"$(basename \"$PWD\")|$*\" >> %s\n", env.NPMCalls)
	for _, d := range failDirs {
		fmt.Fprintf(&script, "if [ \"$(basename \"$PWD\")\" = %q ]; then echo 'npm ERR! code E403' >&2; exit 1; fi\n", d)
	}
	script.WriteString("test -f package.json || exit 2\n")
	if err := os.WriteFile(env.NPM, []byte(script.String()), 0755); err != nil {
		t.Fatalf("writing fake npm: %v", err)
	}
	return env
}

// npmCalls returns the logged fake npm invocations.
func (e *testEnv) npmCalls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.NPMCalls)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// dependency is a preloaded dependency of a test library.
type dependency struct {
	MachineName  string `json:"machineName"`
	MajorVersion int    `json:"majorVersion"`
	MinorVersion int    `json:"minorVersion"`
}

func libraryJSON(machineName string, major, minor, patch int, deps ...dependency) string {
	lib := map[string]any{
		"title":        machineName,
		"machineName":  machineName,
		"majorVersion": major,
		"minorVersion": minor,
		"patchVersion": patch,
		"runnable":     1,
		"license":      "MIT",
		"author":       "Joubel",
	}
	if len(deps) > 0 {
		lib["preloadedDependencies"] = deps
	}
	data, _ := json.Marshal(lib)
	return string(data)
}

// h5pPackage builds a .h5p archive holding the given library.json bodies,
// keyed by directory name.
func h5pPackage(t *testing.T, libs [][2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	write("h5p.json", `{"title":"package"}`)
	write("content/content.json", `{}`)
	for _, l := range libs {
		write(l[0]+"/library.json", l[1])
		write(l[0]+"/dist/main.js", "console.log('"+l[0]+"');")
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// fakeHub serves a content-type list and one package per machine name.
type fakeHub struct {
	mu        sync.Mutex
	types     []hub.ContentType
	packages  map[string][]byte
	downloads []string
}

func newFakeHub(t *testing.T, types []hub.ContentType, packages map[string][]byte) (*fakeHub, string) {
	t.Helper()
	h := &fakeHub{types: types, packages: packages}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()

		name := strings.TrimPrefix(r.URL.Path, "/v1/content-types/")
		switch {
		case r.Method == http.MethodPost && name == "":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"contentTypes": h.types})
		case r.Method == http.MethodGet:
			h.downloads = append(h.downloads, name)
			data, ok := h.packages[name]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(data)
		default:
			http.Error(w, "unexpected request", http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return h, srv.URL + "/v1/content-types/"
}

func contentType(id string, major, minor, patch int) hub.ContentType {
	return hub.ContentType{
		ID:                   id,
		Title:                id,
		Version:              hub.Version{Major: major, Minor: minor, Patch: patch},
		CoreAPIVersionNeeded: hub.APIVersion{Major: 1, Minor: 19},
	}
}
